// Package cms loads localized content pages (terms of use, privacy policy)
// from an optional remote CMS with local markdown as the fallback.
package cms

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a CMS resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

const (
	defaultContentDir   = "content"
	defaultFallbackLang = "en"
	defaultCacheTTL     = 5 * time.Minute
)

// Client provides read-only access to content pages.
type Client struct {
	baseURL      string
	http         *http.Client
	contentDir   string
	fallbackLang string
	ttl          time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    ContentPage
	expires time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithContentDir sets the root of the local markdown tree.
func WithContentDir(dir string) Option {
	return func(c *Client) {
		if dir = strings.TrimSpace(dir); dir != "" {
			c.contentDir = dir
		}
	}
}

// WithCacheTTL overrides the in-memory cache duration.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithFallbackLang sets the language tried when the requested one has no page.
func WithFallbackLang(lang string) Option {
	return func(c *Client) {
		if lang = normalizeLang(lang, ""); lang != "" {
			c.fallbackLang = lang
		}
	}
}

// WithHTTPClient replaces the client used for remote fetches.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger reports remote failures that fall back to local content.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Client. An empty baseURL disables remote fetches.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:         &http.Client{Timeout: 5 * time.Second},
		contentDir:   defaultContentDir,
		fallbackLang: defaultFallbackLang,
		ttl:          defaultCacheTTL,
		logger:       zap.NewNop(),
		now:          time.Now,
		cache:        map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) cached(key string) (ContentPage, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return ContentPage{}, false
	}
	return entry.page, true
}

func (c *Client) store(key string, page ContentPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{page: page, expires: c.now().Add(c.ttl)}
}

// Purge drops every cached page.
func (c *Client) Purge() {
	c.mu.Lock()
	c.cache = map[string]cacheEntry{}
	c.mu.Unlock()
}

func normalizeLang(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return fallback
	}
	return lang
}
