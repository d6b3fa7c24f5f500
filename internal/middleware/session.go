package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"ladrillocristalpuro.ca/web/internal/gate"
	"ladrillocristalpuro.ca/web/internal/session"
)

// Gate loads the gate cookies, builds the request's Visibility Gate and stores
// it in the context. Flags changed by handlers are written as cookies just
// before the first byte of the response.
func Gate(manager *session.Manager, logger *zap.Logger, opts ...gate.Option) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flags := manager.Load(r)
			g := gate.New(flags, opts...)

			ctx := context.WithValue(r.Context(), ctxKeyFlags, flags)
			ctx = context.WithValue(ctx, ctxKeyGate, g)

			rw := NewResponseRecorder(w)
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if !flags.Dirty() {
					return
				}
				if err := manager.Save(w, flags); err != nil {
					logger.Error("persist gate cookies",
						zap.String("request_id", requestIDFrom(ctx)),
						zap.Error(err),
					)
				}
			})
			next.ServeHTTP(rw, r.WithContext(ctx))
			rw.Finish()
			noteView(ctx, g.CurrentView().String())
		})
	}
}

// GateFromContext returns the request's gate. Requests that bypassed the Gate
// middleware get a fresh gate on an empty store, which always shows the age gate.
func GateFromContext(ctx context.Context) *gate.Gate {
	if g, ok := ctx.Value(ctxKeyGate).(*gate.Gate); ok && g != nil {
		return g
	}
	return gate.New(nil)
}

// FlagsFromContext returns the cookie-backed store behind the request's gate.
func FlagsFromContext(ctx context.Context) (*session.Flags, bool) {
	f, ok := ctx.Value(ctxKeyFlags).(*session.Flags)
	return f, ok && f != nil
}
