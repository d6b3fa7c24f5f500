package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ladrillocristalpuro.ca/web/internal/observability"
)

// requestNotes collects values set by inner middleware for the request log.
type requestNotes struct {
	view string
}

const ctxKeyNotes ctxKey = "request_notes"

func noteView(ctx context.Context, view string) {
	if n, ok := ctx.Value(ctxKeyNotes).(*requestNotes); ok {
		n.view = view
	}
}

// Logger emits one structured zap entry per request and exposes a request
// scoped logger through observability.FromContext.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())
			l := base.With(zap.String("request_id", rid))

			notes := &requestNotes{}
			ctx := WithRequestID(r.Context(), rid)
			ctx = context.WithValue(ctx, ctxKeyNotes, notes)
			ctx = observability.WithLogger(ctx, l)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", rw.BytesWritten()),
				zap.String("remote_ip", clientIP(r)),
				zap.Bool("htmx", IsHTMX(ctx) || r.Header.Get("HX-Request") == "true"),
			}
			if notes.view != "" {
				fields = append(fields, zap.String("view", notes.view))
			}
			switch status := rw.Status(); {
			case status >= http.StatusInternalServerError:
				l.Error("request", fields...)
			case status >= http.StatusBadRequest:
				l.Warn("request", fields...)
			default:
				l.Info("request", fields...)
			}
		})
	}
}

func clientIP(r *http.Request) string {
	// Cloud Run appends the client address last
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
