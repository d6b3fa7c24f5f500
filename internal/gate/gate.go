// Package gate decides which full-screen view a visitor sees: the age
// verification form, the one-time intro animation, or the site itself.
package gate

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// MinimumAge is the legal drinking age enforced by the age gate.
const MinimumAge = 21

// View identifies one of the mutually exclusive full-screen views.
type View int

const (
	ViewAgeGate View = iota
	ViewIntro
	ViewMain
)

func (v View) String() string {
	switch v {
	case ViewAgeGate:
		return "age-gate"
	case ViewIntro:
		return "intro"
	case ViewMain:
		return "main"
	default:
		return "unknown"
	}
}

// Flags is the persisted part of the gate state.
type Flags struct {
	AgeVerified  bool
	HasSeenIntro bool
}

// Store persists the two gate flags. AgeVerified outlives the browsing
// session; HasSeenIntro lasts only for it. Reads and writes never fail.
type Store interface {
	Flags() Flags
	SetAgeVerified()
	SetHasSeenIntro()
}

// Gate is built once per page load and is the single source of truth for the
// current view. It is not safe for concurrent use.
type Gate struct {
	store     Store
	flags     Flags
	showIntro bool
	now       func() time.Time
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock overrides the clock used for age computation.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

var tracer = otel.Tracer("ladrillocristalpuro.ca/web/internal/gate")

// New reads the persisted flags and derives whether the intro should play.
func New(store Store, opts ...Option) *Gate {
	g := &Gate{store: store, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if store != nil {
		g.flags = store.Flags()
	}
	g.showIntro = g.flags.AgeVerified && !g.flags.HasSeenIntro
	return g
}

// CurrentView reports which view should be mounted.
func (g *Gate) CurrentView() View {
	if !g.flags.AgeVerified {
		return ViewAgeGate
	}
	if g.showIntro {
		return ViewIntro
	}
	return ViewMain
}

// Flags returns the persisted flags as the gate currently sees them.
func (g *Gate) Flags() Flags { return g.flags }

// ShowIntro reports the transient intro flag.
func (g *Gate) ShowIntro() bool { return g.showIntro }

// ConfirmAge validates an age form submission and, when the visitor is old
// enough, records the verification and queues the intro. On any error the
// state is left untouched.
func (g *Gate) ConfirmAge(ctx context.Context, sub Submission) error {
	_, span := tracer.Start(ctx, "gate.confirm_age")
	defer span.End()

	today := g.now()
	birth, err := sub.validate(today)
	if err != nil {
		span.SetAttributes(attribute.String("gate.outcome", "invalid"))
		return err
	}
	if Age(birth, today) < MinimumAge {
		span.SetAttributes(attribute.String("gate.outcome", "rejected"))
		return ErrAgeRejected
	}

	if g.store != nil {
		g.store.SetAgeVerified()
	}
	g.flags.AgeVerified = true
	g.showIntro = true
	span.SetAttributes(
		attribute.String("gate.outcome", "verified"),
		attribute.String("gate.view", g.CurrentView().String()),
	)
	return nil
}

// CompleteIntro is the intro player's completion signal. Calling it more than
// once is harmless.
func (g *Gate) CompleteIntro(ctx context.Context) {
	_, span := tracer.Start(ctx, "gate.complete_intro")
	defer span.End()

	g.showIntro = false
	if !g.flags.HasSeenIntro && g.store != nil {
		g.store.SetHasSeenIntro()
	}
	g.flags.HasSeenIntro = true
	span.SetAttributes(attribute.String("gate.view", g.CurrentView().String()))
}

// Age returns the age in whole years on the given day. A birthday that falls
// on today counts as already reached.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
