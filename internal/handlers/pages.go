// Package handlers holds the view models rendered by the web templates.
package handlers

import (
	"ladrillocristalpuro.ca/web/internal/nav"
	"ladrillocristalpuro.ca/web/internal/seo"
)

// Page identifiers used by the layout to pick a content template.
const (
	PageHome     = "home"
	PageBlog     = "blog"
	PageContact  = "contact"
	PageLegal    = "legal"
	PageNotFound = "not-found"
)

// ViewDocument is the layout for legal documents read before the visitor has
// passed the gate: the page without site navigation.
const ViewDocument = "document"

// PageData is the view model for every page using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Langs     []string
	SEO       seo.Meta
	Analytics Analytics
	CSRFToken string

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// View is the gate view name ("age-gate", "intro", "main") or ViewDocument.
	View string
	// Page selects the main content template when View is "main".
	Page string
	// Next is where gate forms send the visitor once they pass.
	Next string

	AgeGate *AgeGateData
	Intro   *IntroData

	Home    *HomeData
	Blog    *BlogData
	Contact *ContactData
	Legal   *LegalData
}
