// Package session persists the age gate flags in signed cookies.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"ladrillocristalpuro.ca/web/internal/gate"
)

// Cookie names match the storage keys the browser build used.
const (
	AgeVerifiedCookie  = "ageVerified"
	HasSeenIntroCookie = "hasSeenIntro"

	// DefaultAgeMaxAge is the longest lifetime browsers honour for a cookie.
	DefaultAgeMaxAge = 400 * 24 * time.Hour

	flagValue = "true"
)

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Config controls cookie encoding and attributes.
type Config struct {
	HashKey  []byte
	BlockKey []byte
	Domain   string
	Path     string
	Secure   bool
	// AgeMaxAge is the lifetime of the durable ageVerified cookie.
	AgeMaxAge time.Duration
	Now       func() time.Time
}

// Manager reads and writes the gate cookies.
type Manager struct {
	cfg Config
	// ageCodec expires signatures with the cookie; introCodec never does,
	// since hasSeenIntro lives exactly as long as the browser session.
	ageCodec   *securecookie.SecureCookie
	introCodec *securecookie.SecureCookie
	now        func() time.Time
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.AgeMaxAge <= 0 {
		cfg.AgeMaxAge = DefaultAgeMaxAge
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	ageCodec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	ageCodec.SetSerializer(securecookie.JSONEncoder{})
	ageCodec.MaxAge(int(cfg.AgeMaxAge.Seconds()))

	introCodec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	introCodec.SetSerializer(securecookie.JSONEncoder{})
	introCodec.MaxAge(0)

	return &Manager{cfg: cfg, ageCodec: ageCodec, introCodec: introCodec, now: nowFn}, nil
}

// Flags is the per-request view of the gate cookies. It implements gate.Store.
type Flags struct {
	state      gate.Flags
	dirtyAge   bool
	dirtyIntro bool
}

var _ gate.Store = (*Flags)(nil)

// Flags returns the decoded flag values.
func (f *Flags) Flags() gate.Flags { return f.state }

// SetAgeVerified records the durable verification flag.
func (f *Flags) SetAgeVerified() {
	if f.state.AgeVerified {
		return
	}
	f.state.AgeVerified = true
	f.dirtyAge = true
}

// SetHasSeenIntro records the session-scoped intro flag.
func (f *Flags) SetHasSeenIntro() {
	if f.state.HasSeenIntro {
		return
	}
	f.state.HasSeenIntro = true
	f.dirtyIntro = true
}

// Dirty reports whether any cookie must be written.
func (f *Flags) Dirty() bool { return f.dirtyAge || f.dirtyIntro }

// Load decodes the gate cookies from the request. Missing, tampered or
// unexpected values read as false.
func (m *Manager) Load(r *http.Request) *Flags {
	return &Flags{
		state: gate.Flags{
			AgeVerified:  m.readFlag(r, AgeVerifiedCookie),
			HasSeenIntro: m.readFlag(r, HasSeenIntroCookie),
		},
	}
}

func (m *Manager) readFlag(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return false
	}
	var v string
	if err := m.codecFor(name).Decode(name, c.Value, &v); err != nil {
		return false
	}
	return v == flagValue
}

// Save writes the cookies whose flags changed during the request.
func (m *Manager) Save(w http.ResponseWriter, f *Flags) error {
	if f == nil {
		return errors.New("session: nil flags")
	}
	if f.dirtyAge {
		c, err := m.flagCookie(AgeVerifiedCookie, true)
		if err != nil {
			return err
		}
		http.SetCookie(w, c)
		f.dirtyAge = false
	}
	if f.dirtyIntro {
		c, err := m.flagCookie(HasSeenIntroCookie, false)
		if err != nil {
			return err
		}
		http.SetCookie(w, c)
		f.dirtyIntro = false
	}
	return nil
}

// Clear expires both gate cookies.
func (m *Manager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AgeVerifiedCookie, HasSeenIntroCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     m.cfg.Path,
			Domain:   m.cfg.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   m.cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (m *Manager) codecFor(name string) *securecookie.SecureCookie {
	if name == HasSeenIntroCookie {
		return m.introCodec
	}
	return m.ageCodec
}

func (m *Manager) flagCookie(name string, durable bool) (*http.Cookie, error) {
	encoded, err := m.codecFor(name).Encode(name, flagValue)
	if err != nil {
		return nil, fmt.Errorf("encode %s cookie: %w", name, err)
	}
	c := &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     m.cfg.Path,
		Domain:   m.cfg.Domain,
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if durable {
		c.MaxAge = int(m.cfg.AgeMaxAge.Round(time.Second).Seconds())
		c.Expires = m.now().Add(m.cfg.AgeMaxAge).UTC()
	}
	return c, nil
}
