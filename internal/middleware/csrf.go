package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFFormField is the hidden input name templates post the token under.
	CSRFFormField = "csrf_token"
	csrfHeader    = "X-CSRF-Token"
	csrfTokenLen  = 32
)

// CSRF issues a double-submit cookie and verifies unsafe requests echo it in
// the X-CSRF-Token header or the csrf_token form field.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookieToken := ""
			if c, err := r.Cookie(csrfCookieName); err == nil && validCSRFToken(c.Value) {
				cookieToken = c.Value
			}

			if !isSafeMethod(r.Method) {
				sent := r.Header.Get(csrfHeader)
				if sent == "" {
					sent = r.PostFormValue(CSRFFormField)
				}
				if cookieToken == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(cookieToken)) != 1 {
					writeError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			token := cookieToken
			if token == "" {
				token = newCSRFToken()
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}
			next.ServeHTTP(w, r.WithContext(withCSRFToken(r.Context(), token)))
		})
	}
}

// CSRFToken returns the token templates must echo back on unsafe requests.
func CSRFToken(r *http.Request) string {
	v, _ := r.Context().Value(ctxKeyCSRF).(string)
	return v
}

func newCSRFToken() string {
	b := make([]byte, csrfTokenLen/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func validCSRFToken(v string) bool {
	if len(v) != csrfTokenLen {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
