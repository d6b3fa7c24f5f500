// Package intro describes the one-time intro animation as a timeline the
// browser player runs. The server only needs its shape and total length.
package intro

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Step is one tween on the timeline.
type Step struct {
	Target   string
	From     map[string]any
	To       map[string]any
	Duration time.Duration
	// Repeat plays the tween Repeat extra times.
	Repeat int
	Yoyo   bool
	Ease   string
	// Position places the step: "" appends at the end of the timeline,
	// "+=s" / "-=s" offset from the end, "<" aligns with the previous
	// step's start, ">" with its end, and a bare number is absolute seconds.
	Position string
}

// Total is the playing time of the step including repeats.
func (s Step) Total() time.Duration {
	repeat := s.Repeat
	if repeat < 0 {
		repeat = 0
	}
	return s.Duration * time.Duration(repeat+1)
}

// Placement is a step resolved onto the timeline.
type Placement struct {
	Step  Step
	Start time.Duration
	End   time.Duration
}

// Timeline is an ordered list of placed steps.
type Timeline struct {
	placed []Placement
	end    time.Duration
}

// Add places a step after the ones already added.
func (t *Timeline) Add(s Step) error {
	if s.Duration < 0 {
		return fmt.Errorf("intro: step %q has negative duration", s.Target)
	}
	start, err := t.resolve(s.Position)
	if err != nil {
		return fmt.Errorf("intro: step %q: %w", s.Target, err)
	}
	if start < 0 {
		start = 0
	}
	p := Placement{Step: s, Start: start, End: start + s.Total()}
	t.placed = append(t.placed, p)
	if p.End > t.end {
		t.end = p.End
	}
	return nil
}

// MustAdd is Add for literal timelines; it panics on a malformed position.
func (t *Timeline) MustAdd(steps ...Step) *Timeline {
	for _, s := range steps {
		if err := t.Add(s); err != nil {
			panic(err)
		}
	}
	return t
}

func (t *Timeline) resolve(pos string) (time.Duration, error) {
	pos = strings.TrimSpace(pos)
	switch {
	case pos == "":
		return t.end, nil
	case pos == "<":
		if n := len(t.placed); n > 0 {
			return t.placed[n-1].Start, nil
		}
		return 0, nil
	case pos == ">":
		if n := len(t.placed); n > 0 {
			return t.placed[n-1].End, nil
		}
		return 0, nil
	case strings.HasPrefix(pos, "+="):
		d, err := parseSeconds(pos[2:])
		if err != nil {
			return 0, err
		}
		return t.end + d, nil
	case strings.HasPrefix(pos, "-="):
		d, err := parseSeconds(pos[2:])
		if err != nil {
			return 0, err
		}
		return t.end - d, nil
	default:
		return parseSeconds(pos)
	}
}

func parseSeconds(v string) (time.Duration, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid position %q", v)
	}
	return Seconds(f), nil
}

// Seconds converts fractional seconds to a millisecond-rounded duration.
func Seconds(f float64) time.Duration {
	return time.Duration(math.Round(f*1000)) * time.Millisecond
}

// Layout returns the placed steps in insertion order.
func (t *Timeline) Layout() []Placement {
	out := make([]Placement, len(t.placed))
	copy(out, t.placed)
	return out
}

// Duration is the time from the first step's start to the last tween's end.
func (t *Timeline) Duration() time.Duration { return t.end }

type stepJSON struct {
	Target   string         `json:"target"`
	From     map[string]any `json:"from,omitempty"`
	To       map[string]any `json:"to"`
	Start    float64        `json:"start"`
	Duration float64        `json:"duration"`
	Repeat   int            `json:"repeat,omitempty"`
	Yoyo     bool           `json:"yoyo,omitempty"`
	Ease     string         `json:"ease,omitempty"`
}

// JSON serializes the resolved timeline for the browser player. Start times
// are absolute seconds.
func (t *Timeline) JSON() (string, error) {
	steps := make([]stepJSON, 0, len(t.placed))
	for _, p := range t.placed {
		steps = append(steps, stepJSON{
			Target:   p.Step.Target,
			From:     p.Step.From,
			To:       p.Step.To,
			Start:    p.Start.Seconds(),
			Duration: p.Step.Duration.Seconds(),
			Repeat:   p.Step.Repeat,
			Yoyo:     p.Step.Yoyo,
			Ease:     p.Step.Ease,
		})
	}
	b, err := json.Marshal(struct {
		Duration float64    `json:"duration"`
		Steps    []stepJSON `json:"steps"`
	}{Duration: t.end.Seconds(), Steps: steps})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
