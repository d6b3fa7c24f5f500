package gate

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(s sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTransitionsEmitSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	store := &memStore{}
	g := New(store, WithClock(fixedClock))
	ctx := context.Background()
	_ = g.ConfirmAge(ctx, Submission{BirthDate: birthYearsAgo(18), TermsAccepted: true})
	if err := g.ConfirmAge(ctx, Submission{BirthDate: birthYearsAgo(30), TermsAccepted: true}); err != nil {
		t.Fatalf("ConfirmAge: %v", err)
	}
	g.CompleteIntro(ctx)

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	want := []struct {
		name, key, value string
	}{
		{"gate.confirm_age", "gate.outcome", "rejected"},
		{"gate.confirm_age", "gate.view", ViewIntro.String()},
		{"gate.complete_intro", "gate.view", ViewMain.String()},
	}
	for i, w := range want {
		if spans[i].Name() != w.name {
			t.Fatalf("span %d: expected %s, got %s", i, w.name, spans[i].Name())
		}
		if got := spanAttr(spans[i], attribute.Key(w.key)); got != w.value {
			t.Fatalf("span %d: expected %s=%s, got %q", i, w.key, w.value, got)
		}
	}
}
