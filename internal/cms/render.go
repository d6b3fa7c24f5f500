package cms

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const summaryLimit = 160

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Linkify, extension.Strikethrough),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	policy = newContentHTMLPolicy()
)

func newContentHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4")
	p.AllowAttrs("class").OnElements("p", "span", "section")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderBody converts the page body to sanitized HTML. Markdown goes through
// goldmark first; "html" bodies are only sanitized.
func RenderBody(page ContentPage) template.HTML {
	src := []byte(page.Body)
	if page.Format != formatHTML {
		var buf bytes.Buffer
		if err := markdown.Convert(src, &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(page.Body))
		}
		src = buf.Bytes()
	}
	return template.HTML(policy.SanitizeBytes(src))
}

// Summarize returns the text of the first non-empty paragraph of rendered,
// cut at a word boundary to at most limit runes.
func Summarize(rendered template.HTML, limit int) string {
	doc, err := html.Parse(strings.NewReader(string(rendered)))
	if err != nil {
		return ""
	}
	var text string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			if t := strings.Join(strings.Fields(nodeText(n)), " "); t != "" {
				text = t
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return truncateWords(text, limit)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func truncateWords(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}
