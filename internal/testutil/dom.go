// Package testutil holds helpers shared by HTTP tests.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Browser replays cookies between requests against an in-process handler.
type Browser struct {
	t       testing.TB
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewBrowser returns a Browser with an empty cookie jar.
func NewBrowser(t testing.TB, h http.Handler) *Browser {
	return &Browser{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

// Do sends req with the stored cookies and records any cookies set by the response.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

// Cookie returns the stored cookie with name, or nil.
func (b *Browser) Cookie(name string) *http.Cookie { return b.cookies[name] }

// DropSessionCookies forgets cookies without an expiry, as a browser does on restart.
func (b *Browser) DropSessionCookies() {
	for name, c := range b.cookies {
		if c.MaxAge == 0 && c.Expires.IsZero() {
			delete(b.cookies, name)
		}
	}
}
