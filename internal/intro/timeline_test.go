package intro

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDefaultTimelineLayout(t *testing.T) {
	tl := Default()
	want := []struct{ start, end time.Duration }{
		{0, Seconds(1)},
		{Seconds(1.5), Seconds(3.5)},
		{Seconds(3.5), Seconds(5)},
		{Seconds(5.3), Seconds(5.8)},
		{Seconds(5.6), Seconds(6.4)},
		{Seconds(6.6), Seconds(7.2)},
		{Seconds(7.5), Seconds(8.1)},
		{Seconds(7.8), Seconds(8.3)},
	}
	got := tl.Layout()
	if len(got) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Start != w.start || got[i].End != w.end {
			t.Fatalf("step %d (%s): expected [%v, %v], got [%v, %v]", i, got[i].Step.Target, w.start, w.end, got[i].Start, got[i].End)
		}
	}
	if tl.Duration() != Seconds(8.3) {
		t.Fatalf("expected 8.3s, got %v", tl.Duration())
	}
}

func TestPositionSyntax(t *testing.T) {
	tl := &Timeline{}
	tl.MustAdd(
		Step{Target: "a", Duration: Seconds(2)},
		Step{Target: "b", Duration: Seconds(1), Position: "<"},
		Step{Target: "c", Duration: Seconds(1), Position: ">"},
		Step{Target: "d", Duration: Seconds(1), Position: "0.25"},
		Step{Target: "e", Duration: Seconds(1), Position: "-=10"},
	)
	got := tl.Layout()
	starts := []time.Duration{0, 0, Seconds(1), Seconds(0.25), 0}
	for i, s := range starts {
		if got[i].Start != s {
			t.Fatalf("step %s: expected start %v, got %v", got[i].Step.Target, s, got[i].Start)
		}
	}
	if tl.Duration() != Seconds(2) {
		t.Fatalf("expected 2s, got %v", tl.Duration())
	}
}

func TestAddRejectsBadPosition(t *testing.T) {
	tl := &Timeline{}
	for _, pos := range []string{"+=abc", "soon", "-1", "+=NaN"} {
		if err := tl.Add(Step{Target: "x", Duration: time.Second, Position: pos}); err == nil {
			t.Fatalf("expected error for position %q", pos)
		}
	}
	if err := tl.Add(Step{Target: "x", Duration: -time.Second}); err == nil {
		t.Fatalf("expected error for negative duration")
	}
	if len(tl.Layout()) != 0 {
		t.Fatalf("rejected steps must not be placed")
	}
}

func TestJSONCarriesAbsoluteStarts(t *testing.T) {
	raw, err := Default().JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var payload struct {
		Duration float64 `json:"duration"`
		Steps    []struct {
			Target string  `json:"target"`
			Start  float64 `json:"start"`
			Repeat int     `json:"repeat"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Duration != 8.3 {
		t.Fatalf("expected duration 8.3, got %v", payload.Duration)
	}
	if payload.Steps[1].Target != TargetLogo || payload.Steps[1].Start != 1.5 {
		t.Fatalf("unexpected logo step %+v", payload.Steps[1])
	}
	if payload.Steps[2].Repeat != 2 {
		t.Fatalf("expected glow pulse repeat 2, got %d", payload.Steps[2].Repeat)
	}
}
