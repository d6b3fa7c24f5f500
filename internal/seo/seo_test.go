package seo

import (
	"encoding/json"
	"testing"
)

func TestBuildComposesTitleAndCanonical(t *testing.T) {
	m := Build("https://ladrillocristalpuro.ca/", Page{
		Title:       "Contact",
		Description: "Reach the distillery",
		Path:        "/contact",
		Image:       "/assets/img/bottle.svg",
		Lang:        "fr",
		Langs:       []string{"en", "fr"},
	})
	if m.Title != "Contact | Ladrillo de Cristal Puro" {
		t.Fatalf("unexpected title %q", m.Title)
	}
	if m.Canonical != "https://ladrillocristalpuro.ca/contact" {
		t.Fatalf("unexpected canonical %q", m.Canonical)
	}
	if m.OG.Image != "https://ladrillocristalpuro.ca/assets/img/bottle.svg" || m.OG.Locale != "fr_CA" {
		t.Fatalf("unexpected og %+v", m.OG)
	}
	if len(m.Alternates) != 3 || m.Alternates[2].Hreflang != "x-default" {
		t.Fatalf("unexpected alternates %+v", m.Alternates)
	}
}

func TestBuildNoIndexAndHomeTitle(t *testing.T) {
	m := Build("https://example.test", Page{Title: SiteName, NoIndex: true})
	if m.Title != SiteName || m.Canonical != "https://example.test/" || m.Robots != "noindex,follow" {
		t.Fatalf("unexpected meta %+v", m)
	}
}

func TestBreadcrumbListJSON(t *testing.T) {
	raw := JSON(BreadcrumbList([]BreadcrumbItem{
		{Name: "Home", Item: "https://example.test/"},
		{Name: "Blog", Item: "https://example.test/blog"},
	}))
	var decoded struct {
		Type  string `json:"@type"`
		Items []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
		} `json:"itemListElement"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "BreadcrumbList" || len(decoded.Items) != 2 || decoded.Items[1].Position != 2 {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestJSONReturnsEmptyOnError(t *testing.T) {
	if got := JSON(map[string]any{"bad": make(chan int)}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
