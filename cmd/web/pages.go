package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ladrillocristalpuro.ca/web/internal/cms"
	"ladrillocristalpuro.ca/web/internal/gate"
	handlersPkg "ladrillocristalpuro.ca/web/internal/handlers"
	mw "ladrillocristalpuro.ca/web/internal/middleware"
	"ladrillocristalpuro.ca/web/internal/nav"
	"ladrillocristalpuro.ca/web/internal/observability"
	"ladrillocristalpuro.ca/web/internal/seo"
)

// newPageData fills the layout fields shared by every page.
func newPageData(r *http.Request, page, titleKey string) handlersPkg.PageData {
	lang := mw.Lang(r)
	path := r.URL.Path
	title := i18nBundle.T(lang, titleKey)
	meta := seo.Build(siteCfg.SiteURL, seo.Page{
		Title:       title,
		Description: i18nBundle.T(lang, "site.description"),
		Path:        path,
		Image:       "/assets/img/bottle.svg",
		Lang:        lang,
		Langs:       i18nBundle.Supported(),
	})
	meta.JSONLD = append(meta.JSONLD,
		seo.JSON(seo.Organization(seo.SiteName, siteCfg.SiteURL, siteCfg.SiteURL+"/assets/img/logo.svg", handlersPkg.InstagramURL)),
		seo.JSON(seo.WebSite(seo.SiteName, siteCfg.SiteURL, lang)),
	)

	crumbs := nav.Breadcrumbs(path)
	if len(crumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = i18nBundle.T(lang, c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: siteCfg.SiteURL + c.Href})
		}
		meta.JSONLD = append(meta.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}

	return handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Langs:       i18nBundle.Supported(),
		SEO:         meta,
		Analytics:   analytics,
		CSRFToken:   mw.CSRFToken(r),
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: crumbs,
		View:        gate.ViewMain.String(),
		Page:        page,
		Next:        path,
	}
}

// renderGated renders whichever gate view is current. fill adds the page
// content and only runs when the main view is visible.
func renderGated(w http.ResponseWriter, r *http.Request, status int, page, titleKey string, fill func(*handlersPkg.PageData) error) {
	g := mw.GateFromContext(r.Context())
	view := g.CurrentView()

	data := newPageData(r, page, titleKey)
	data.View = view.String()
	switch view {
	case gate.ViewAgeGate:
		data.AgeGate = ageGateData(r, gate.Submission{}, nil)
	case gate.ViewIntro:
		data.Intro = introData
	default:
		if fill != nil {
			if err := fill(&data); err != nil {
				observability.FromContext(r.Context()).Error("build page", zap.String("page", page), zap.Error(err))
				mw.WriteError(w, r, http.StatusInternalServerError, "internal error")
				return
			}
		}
	}
	render(w, r, status, data)
}

// ageGateData builds the form model with the legal documents embedded as tabs.
func ageGateData(r *http.Request, sub gate.Submission, err error) *handlersPkg.AgeGateData {
	d := handlersPkg.BuildAgeGateData(sub, err, siteNow())
	lang := mw.Lang(r)
	for _, slug := range []string{"terms", "privacy"} {
		page, perr := cmsClient.GetContentPage(r.Context(), cms.Legal, slug, lang)
		if perr != nil {
			observability.FromContext(r.Context()).Warn("legal document unavailable", zap.String("slug", slug), zap.Error(perr))
			continue
		}
		tab := handlersPkg.NewLegalTab(page)
		if slug == "terms" {
			d.Terms = tab
		} else {
			d.Privacy = tab
		}
	}
	return d
}

// HomeHandler renders the landing page.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	renderGated(w, r, http.StatusOK, handlersPkg.PageHome, "site.name", func(d *handlersPkg.PageData) error {
		d.Home = handlersPkg.BuildHomeData()
		return nil
	})
}

// BlogHandler renders the blog placeholder.
func BlogHandler(w http.ResponseWriter, r *http.Request) {
	renderGated(w, r, http.StatusOK, handlersPkg.PageBlog, "nav.blog", func(d *handlersPkg.PageData) error {
		d.Blog = handlersPkg.BuildBlogData()
		return nil
	})
}

// ContactHandler renders the contact channels.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	renderGated(w, r, http.StatusOK, handlersPkg.PageContact, "nav.contact", func(d *handlersPkg.PageData) error {
		d.Contact = handlersPkg.BuildContactData()
		return nil
	})
}

// NotFoundHandler answers unknown paths with 404, showing the gate view
// until the visitor reaches the main view.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	renderGated(w, r, http.StatusNotFound, handlersPkg.PageNotFound, "error.not_found.title", func(d *handlersPkg.PageData) error {
		d.SEO.Robots = "noindex,follow"
		d.Next = "/"
		return nil
	})
}

// LegalHandler renders a legal document. It is readable before age
// verification so the gate can link to it.
func LegalHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	lang := mw.Lang(r)
	page, err := cmsClient.GetContentPage(r.Context(), cms.Legal, slug, lang)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			data := newPageData(r, handlersPkg.PageNotFound, "error.not_found.title")
			data.View = documentView(r)
			data.SEO.Robots = "noindex,follow"
			render(w, r, http.StatusNotFound, data)
			return
		}
		observability.FromContext(r.Context()).Error("load legal page", zap.String("slug", slug), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	data := newPageData(r, handlersPkg.PageLegal, "")
	data.View = documentView(r)
	data.Title = page.Title
	data.SEO = seoForLegal(data, page)
	data.Legal = handlersPkg.BuildLegalData(page)
	render(w, r, http.StatusOK, data)
}

// documentView keeps site navigation off legal pages until the visitor
// reaches the main view.
func documentView(r *http.Request) string {
	if mw.GateFromContext(r.Context()).CurrentView() == gate.ViewMain {
		return gate.ViewMain.String()
	}
	return handlersPkg.ViewDocument
}

func seoForLegal(data handlersPkg.PageData, page cms.ContentPage) seo.Meta {
	title := page.Title
	if page.SEO.Title != "" {
		title = page.SEO.Title
	}
	desc := page.Summary
	if page.SEO.Description != "" {
		desc = page.SEO.Description
	}
	meta := seo.Build(siteCfg.SiteURL, seo.Page{
		Title:       title,
		Description: desc,
		Path:        data.Path,
		Image:       page.SEO.OGImage,
		Lang:        data.Lang,
		Langs:       data.Langs,
	})
	updated := ""
	if !page.UpdatedAt.IsZero() {
		updated = page.UpdatedAt.Format("2006-01-02")
	}
	meta.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.WebPage(page.Title, meta.Canonical, desc, updated)))
	return meta
}
