package main

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"ladrillocristalpuro.ca/web/internal/gate"
	handlersPkg "ladrillocristalpuro.ca/web/internal/handlers"
	mw "ladrillocristalpuro.ca/web/internal/middleware"
	"ladrillocristalpuro.ca/web/internal/observability"
)

// GateVerifyHandler handles the age verification form. On success the
// visitor is sent back to the page they came from, which now shows the intro.
func GateVerifyHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	ctx := r.Context()
	log := observability.FromContext(ctx)
	g := mw.GateFromContext(ctx)
	next := safeNext(r.PostForm.Get("next"))
	sub := gate.SubmissionFromForm(r.PostForm)

	err := g.ConfirmAge(ctx, sub)
	if err == nil {
		log.Info("age verified", zap.String("view", g.CurrentView().String()))
		mw.Redirect(w, r, next)
		return
	}

	status := http.StatusInternalServerError
	var fields []string
	var verr *gate.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		fields = verr.Fields
		log.Info("age verification invalid", zap.Strings("fields", verr.Fields))
	case errors.Is(err, gate.ErrAgeRejected):
		status = http.StatusForbidden
		log.Info("age verification rejected")
	default:
		log.Error("age verification failed", zap.Error(err))
	}

	if mw.IsHTMX(ctx) {
		mw.WriteError(w, r, status, err.Error(), fields...)
		return
	}
	data := newPageData(r, handlersPkg.PageHome, "gate.title")
	data.View = g.CurrentView().String()
	data.Path = next
	data.Next = next
	data.SEO.Robots = "noindex,follow"
	data.AgeGate = ageGateData(r, sub, err)
	render(w, r, status, data)
}

// IntroCompleteHandler records that the intro finished or was skipped. It only
// marks the intro as seen once the age has been verified.
func IntroCompleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	ctx := r.Context()
	g := mw.GateFromContext(ctx)
	next := safeNext(r.PostForm.Get("next"))

	if g.Flags().AgeVerified {
		g.CompleteIntro(ctx)
		observability.FromContext(ctx).Info("intro completed", zap.String("view", g.CurrentView().String()))
	}
	mw.Redirect(w, r, next)
}

// GateResetHandler expires the gate cookies and drops cached content. It is
// only routed in dev mode.
func GateResetHandler(w http.ResponseWriter, r *http.Request) {
	sessionManager.Clear(w)
	cmsClient.Purge()
	observability.FromContext(r.Context()).Info("gate reset")
	mw.Redirect(w, r, "/")
}

// safeNext keeps redirects on this site and away from the gate endpoints.
func safeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	if strings.HasPrefix(u.Path, "/gate/") {
		return "/"
	}
	return u.RequestURI()
}
