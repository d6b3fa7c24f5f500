// Package seo builds page metadata and schema.org payloads for the layout.
package seo

import (
	"strings"
)

// SiteName is the brand name used in titles and structured data.
const SiteName = "Ladrillo de Cristal Puro"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is an hreflang link.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

// Page describes the page-specific inputs to Build.
type Page struct {
	Title       string
	Description string
	Path        string
	Image       string
	Lang        string
	Langs       []string
	NoIndex     bool
}

// Build assembles Meta for a page under siteURL.
func Build(siteURL string, p Page) Meta {
	siteURL = strings.TrimRight(siteURL, "/")
	if p.Path == "" {
		p.Path = "/"
	}
	title := SiteName
	if p.Title != "" && p.Title != SiteName {
		title = p.Title + " | " + SiteName
	}
	canonical := siteURL + p.Path
	image := p.Image
	if image != "" && strings.HasPrefix(image, "/") {
		image = siteURL + image
	}

	m := Meta{
		Title:       title,
		Description: p.Description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: p.Description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    SiteName,
			Locale:      ogLocale(p.Lang),
		},
		Twitter: Twitter{Card: "summary_large_image", Image: image},
	}
	if p.NoIndex {
		m.Robots = "noindex,follow"
	}
	for _, l := range p.Langs {
		m.Alternates = append(m.Alternates, Alternate{Href: canonical + "?hl=" + l, Hreflang: l})
	}
	if len(p.Langs) > 0 {
		m.Alternates = append(m.Alternates, Alternate{Href: canonical, Hreflang: "x-default"})
	}
	return m
}

func ogLocale(lang string) string {
	switch lang {
	case "fr":
		return "fr_CA"
	default:
		return "en_CA"
	}
}
