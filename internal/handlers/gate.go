package handlers

import (
	"errors"
	"html/template"
	"time"

	"ladrillocristalpuro.ca/web/internal/cms"
	"ladrillocristalpuro.ca/web/internal/gate"
	"ladrillocristalpuro.ca/web/internal/intro"
)

// AgeGateData is the age verification form state.
type AgeGateData struct {
	BirthDate     string
	TermsAccepted bool
	// MaxDate bounds the date input to today.
	MaxDate string
	// ErrorKeys are i18n keys of the messages shown above the form.
	ErrorKeys   []string
	FieldErrors map[string]bool
	Rejected    bool

	Terms   *LegalTab
	Privacy *LegalTab
}

// LegalTab is a legal document embedded in the age gate.
type LegalTab struct {
	Slug  string
	Title string
	Body  template.HTML
	Href  string
}

// HasErrors reports whether the last submission failed.
func (d *AgeGateData) HasErrors() bool { return len(d.ErrorKeys) > 0 }

// BuildAgeGateData prepares the form for display, optionally after a failed
// submission described by err.
func BuildAgeGateData(sub gate.Submission, err error, today time.Time) *AgeGateData {
	d := &AgeGateData{
		BirthDate:     sub.BirthDate,
		TermsAccepted: sub.TermsAccepted,
		MaxDate:       today.Format(gate.BirthDateLayout),
		FieldErrors:   map[string]bool{},
	}
	var verr *gate.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			d.FieldErrors[f] = true
			d.ErrorKeys = append(d.ErrorKeys, "gate.error."+f)
		}
	case errors.Is(err, gate.ErrAgeRejected):
		d.Rejected = true
		d.ErrorKeys = append(d.ErrorKeys, "gate.error.rejected")
	default:
		d.ErrorKeys = append(d.ErrorKeys, "error.server.title")
	}
	return d
}

// NewLegalTab renders a content page for embedding in the age gate.
func NewLegalTab(page cms.ContentPage) *LegalTab {
	return &LegalTab{
		Slug:  page.Slug,
		Title: page.Title,
		Body:  cms.RenderBody(page),
		Href:  "/legal/" + page.Slug,
	}
}

// IntroData feeds the intro player.
type IntroData struct {
	TimelineJSON string
	DurationMs   int64
}

// BuildIntroData serializes the timeline the browser plays.
func BuildIntroData(tl *intro.Timeline) (*IntroData, error) {
	raw, err := tl.JSON()
	if err != nil {
		return nil, err
	}
	return &IntroData{TimelineJSON: raw, DurationMs: tl.Duration().Milliseconds()}, nil
}

// LegalData is the standalone legal document page.
type LegalData struct {
	Page          cms.ContentPage
	Body          template.HTML
	EffectiveDate time.Time
	UpdatedAt     time.Time
}

// BuildLegalData renders a legal page body.
func BuildLegalData(page cms.ContentPage) *LegalData {
	return &LegalData{
		Page:          page,
		Body:          cms.RenderBody(page),
		EffectiveDate: page.EffectiveDate,
		UpdatedAt:     page.UpdatedAt,
	}
}
