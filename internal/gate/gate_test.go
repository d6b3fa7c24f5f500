package gate

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"
	_ "time/tzdata"
)

// memStore mimics the browser: ageVerified survives reloads and sessions,
// hasSeenIntro survives reloads only until endSession is called.
type memStore struct {
	flags       Flags
	ageWrites   int
	introWrites int
}

func (s *memStore) Flags() Flags     { return s.flags }
func (s *memStore) SetAgeVerified()  { s.flags.AgeVerified = true; s.ageWrites++ }
func (s *memStore) SetHasSeenIntro() { s.flags.HasSeenIntro = true; s.introWrites++ }
func (s *memStore) endSession()      { s.flags.HasSeenIntro = false }

var today = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func birthYearsAgo(years int) string {
	return today.AddDate(-years, 0, 0).Format(BirthDateLayout)
}

func TestCurrentViewForEveryFlagPair(t *testing.T) {
	cases := []struct {
		flags Flags
		want  View
	}{
		{Flags{AgeVerified: false, HasSeenIntro: false}, ViewAgeGate},
		{Flags{AgeVerified: false, HasSeenIntro: true}, ViewAgeGate},
		{Flags{AgeVerified: true, HasSeenIntro: false}, ViewIntro},
		{Flags{AgeVerified: true, HasSeenIntro: true}, ViewMain},
	}
	for _, tc := range cases {
		g := New(&memStore{flags: tc.flags})
		if got := g.CurrentView(); got != tc.want {
			t.Fatalf("flags %+v: expected %s, got %s", tc.flags, tc.want, got)
		}
	}
}

func TestNewWithNilStoreDefaultsToAgeGate(t *testing.T) {
	g := New(nil)
	if g.CurrentView() != ViewAgeGate {
		t.Fatalf("expected age gate, got %s", g.CurrentView())
	}
	if g.ShowIntro() {
		t.Fatalf("showIntro must start false without a verified age")
	}
}

func TestConfirmAgeAcceptedMovesToIntro(t *testing.T) {
	store := &memStore{}
	g := New(store, WithClock(fixedClock))

	err := g.ConfirmAge(context.Background(), Submission{BirthDate: birthYearsAgo(25), TermsAccepted: true})
	if err != nil {
		t.Fatalf("ConfirmAge: %v", err)
	}
	if !store.flags.AgeVerified || store.ageWrites != 1 {
		t.Fatalf("expected ageVerified persisted once, got %+v writes=%d", store.flags, store.ageWrites)
	}
	if !g.ShowIntro() {
		t.Fatalf("showIntro must be true after a successful confirmation")
	}
	if g.CurrentView() != ViewIntro {
		t.Fatalf("expected intro, got %s", g.CurrentView())
	}
}

func TestConfirmAgeAcceptedReplaysIntroEvenIfSeen(t *testing.T) {
	store := &memStore{flags: Flags{HasSeenIntro: true}}
	g := New(store, WithClock(fixedClock))
	if err := g.ConfirmAge(context.Background(), Submission{BirthDate: birthYearsAgo(40), TermsAccepted: true}); err != nil {
		t.Fatalf("ConfirmAge: %v", err)
	}
	if g.CurrentView() != ViewIntro {
		t.Fatalf("expected intro, got %s", g.CurrentView())
	}
}

func TestConfirmAgeUnderageNeverMutates(t *testing.T) {
	for _, terms := range []bool{true, false} {
		store := &memStore{}
		g := New(store, WithClock(fixedClock))
		err := g.ConfirmAge(context.Background(), Submission{BirthDate: birthYearsAgo(17), TermsAccepted: terms})
		if err == nil {
			t.Fatalf("terms=%v: expected an error for an underage visitor", terms)
		}
		if store.ageWrites != 0 || store.flags.AgeVerified {
			t.Fatalf("terms=%v: ageVerified must not change, got %+v", terms, store.flags)
		}
		if g.CurrentView() != ViewAgeGate {
			t.Fatalf("terms=%v: expected to stay on age gate, got %s", terms, g.CurrentView())
		}
	}
}

func TestConfirmAgeUnderageWithTermsIsRejected(t *testing.T) {
	g := New(&memStore{}, WithClock(fixedClock))
	err := g.ConfirmAge(context.Background(), Submission{BirthDate: birthYearsAgo(20), TermsAccepted: true})
	if !errors.Is(err, ErrAgeRejected) {
		t.Fatalf("expected ErrAgeRejected, got %v", err)
	}
}

func TestConfirmAgeValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		sub    Submission
		fields []string
	}{
		{"missing birth date", Submission{TermsAccepted: true}, []string{FieldBirthDate}},
		{"terms not accepted", Submission{BirthDate: birthYearsAgo(30)}, []string{FieldTerms}},
		{"both missing", Submission{}, []string{FieldBirthDate, FieldTerms}},
		{"malformed date", Submission{BirthDate: "19/10/1990", TermsAccepted: true}, []string{FieldBirthDate}},
		{"blank date", Submission{BirthDate: "   ", TermsAccepted: true}, []string{FieldBirthDate}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			g := New(store, WithClock(fixedClock))
			err := g.ConfirmAge(context.Background(), tc.sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tc.fields) {
				t.Fatalf("expected fields %v, got %v", tc.fields, verr.Fields)
			}
			for i, f := range tc.fields {
				if verr.Fields[i] != f {
					t.Fatalf("expected fields %v, got %v", tc.fields, verr.Fields)
				}
			}
			if store.ageWrites != 0 || g.CurrentView() != ViewAgeGate {
				t.Fatalf("validation failure must not mutate state")
			}
		})
	}
}

func TestConfirmAgeBoundary(t *testing.T) {
	exactly21 := today.AddDate(-MinimumAge, 0, 0).Format(BirthDateLayout)
	g := New(&memStore{}, WithClock(fixedClock))
	if err := g.ConfirmAge(context.Background(), Submission{BirthDate: exactly21, TermsAccepted: true}); err != nil {
		t.Fatalf("born exactly 21 years ago must pass, got %v", err)
	}

	oneDayShort := today.AddDate(-MinimumAge, 0, 1).Format(BirthDateLayout)
	g = New(&memStore{}, WithClock(fixedClock))
	if err := g.ConfirmAge(context.Background(), Submission{BirthDate: oneDayShort, TermsAccepted: true}); !errors.Is(err, ErrAgeRejected) {
		t.Fatalf("born 21 years minus a day ago must be rejected, got %v", err)
	}
}

func TestCompleteIntroIsIdempotent(t *testing.T) {
	store := &memStore{flags: Flags{AgeVerified: true}}
	g := New(store)
	for i := 0; i < 2; i++ {
		g.CompleteIntro(context.Background())
		if g.CurrentView() != ViewMain {
			t.Fatalf("call %d: expected main, got %s", i+1, g.CurrentView())
		}
		if !store.flags.HasSeenIntro {
			t.Fatalf("call %d: hasSeenIntro must be persisted", i+1)
		}
	}
	if store.introWrites != 1 {
		t.Fatalf("expected a single persisted write, got %d", store.introWrites)
	}
}

func TestFreshSessionScenario(t *testing.T) {
	store := &memStore{}
	g := New(store, WithClock(fixedClock))
	if g.CurrentView() != ViewAgeGate {
		t.Fatalf("fresh load: expected age gate, got %s", g.CurrentView())
	}
	if err := g.ConfirmAge(context.Background(), Submission{BirthDate: birthYearsAgo(25), TermsAccepted: true}); err != nil {
		t.Fatalf("ConfirmAge: %v", err)
	}
	if g.CurrentView() != ViewIntro {
		t.Fatalf("after confirm: expected intro, got %s", g.CurrentView())
	}
	g.CompleteIntro(context.Background())
	if g.CurrentView() != ViewMain {
		t.Fatalf("after intro: expected main, got %s", g.CurrentView())
	}

	// reload within the same session
	g = New(store, WithClock(fixedClock))
	if !store.flags.AgeVerified || !store.flags.HasSeenIntro {
		t.Fatalf("flags must survive reload, got %+v", store.flags)
	}
	if g.CurrentView() != ViewMain {
		t.Fatalf("reload: expected main, got %s", g.CurrentView())
	}
}

func TestNewSessionReplaysIntro(t *testing.T) {
	store := &memStore{flags: Flags{AgeVerified: true, HasSeenIntro: true}}
	store.endSession()

	g := New(store)
	if g.CurrentView() != ViewIntro {
		t.Fatalf("new session: expected intro, got %s", g.CurrentView())
	}
	g.CompleteIntro(context.Background())
	if g.CurrentView() != ViewMain {
		t.Fatalf("after intro: expected main, got %s", g.CurrentView())
	}
}

func TestAge(t *testing.T) {
	cases := []struct {
		birth, on string
		want      int
	}{
		{"2000-10-19", "2026-10-19", 26},
		{"2000-10-20", "2026-10-19", 25},
		{"2000-11-01", "2026-10-19", 25},
		{"2000-01-31", "2026-10-19", 26},
		{"2004-02-29", "2025-02-28", 20},
		{"2004-02-29", "2025-03-01", 21},
	}
	for _, tc := range cases {
		birth, _ := time.Parse(BirthDateLayout, tc.birth)
		on, _ := time.Parse(BirthDateLayout, tc.on)
		if got := Age(birth, on); got != tc.want {
			t.Fatalf("Age(%s, %s) = %d, want %d", tc.birth, tc.on, got, tc.want)
		}
	}
}

func TestSubmissionFromForm(t *testing.T) {
	v := url.Values{}
	v.Set(FieldBirthDate, "1990-04-12")
	v.Set(FieldTerms, "on")
	sub := SubmissionFromForm(v)
	if sub.BirthDate != "1990-04-12" || !sub.TermsAccepted {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if SubmissionFromForm(url.Values{}).TermsAccepted {
		t.Fatalf("absent checkbox must read as not accepted")
	}
}

func TestViewString(t *testing.T) {
	if ViewAgeGate.String() != "age-gate" || ViewIntro.String() != "intro" || ViewMain.String() != "main" {
		t.Fatalf("unexpected view names")
	}
}

func TestConfirmAgeFutureDateIsRejected(t *testing.T) {
	store := &memStore{}
	g := New(store, WithClock(fixedClock))
	err := g.ConfirmAge(context.Background(), Submission{BirthDate: today.AddDate(0, 0, 1).Format(BirthDateLayout), TermsAccepted: true})
	if !errors.Is(err, ErrAgeRejected) {
		t.Fatalf("expected ErrAgeRejected, got %v", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("future date must not be a validation error: %v", verr)
	}
	if store.ageWrites != 0 || g.CurrentView() != ViewAgeGate {
		t.Fatalf("rejection must not mutate state")
	}
}

func TestConfirmAgeUsesClockTimeZone(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 02:00 UTC on Oct 19 is still the evening of Oct 18 in Toronto.
	lateEvening := func() time.Time { return time.Date(2026, time.October, 19, 2, 0, 0, 0, time.UTC).In(toronto) }

	g := New(&memStore{}, WithClock(lateEvening))
	err = g.ConfirmAge(context.Background(), Submission{BirthDate: "2005-10-19", TermsAccepted: true})
	if !errors.Is(err, ErrAgeRejected) {
		t.Fatalf("visitor turns 21 tomorrow on the local calendar, got %v", err)
	}

	g = New(&memStore{}, WithClock(lateEvening))
	if err := g.ConfirmAge(context.Background(), Submission{BirthDate: "2005-10-18", TermsAccepted: true}); err != nil {
		t.Fatalf("visitor turned 21 today on the local calendar, got %v", err)
	}
}
