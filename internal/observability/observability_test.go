package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	for _, level := range []string{"", "verbose"} {
		l, err := NewLogger(level)
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", level, err)
		}
		if l.Core().Enabled(zap.DebugLevel) || !l.Core().Enabled(zap.InfoLevel) {
			t.Fatalf("level %q should fall back to info", level)
		}
	}
	l, err := NewLogger("DEBUG")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("missing logger must default to no-op")
	}
	l := zap.NewExample()
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Fatalf("expected stored logger")
	}
}

func TestSetupTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{ServiceName: "web"})
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
