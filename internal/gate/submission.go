package gate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BirthDateLayout is the wire format of the HTML date input.
const BirthDateLayout = "2006-01-02"

// Form field names, shared with the templates.
const (
	FieldBirthDate = "birth_date"
	FieldTerms     = "terms"
)

// ErrAgeRejected is returned when the submitted birth date is under MinimumAge.
var ErrAgeRejected = errors.New("you must be 21 or older to enter this website")

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, FieldMessage(f))
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the named field failed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldMessage returns the user-facing message for a failed field.
func FieldMessage(field string) string {
	switch field {
	case FieldBirthDate:
		return "Please enter your birth date"
	case FieldTerms:
		return "Please accept the terms and conditions to continue"
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}

// Submission is the age verification form payload.
type Submission struct {
	BirthDate     string `form:"birth_date" validate:"required,datetime=2006-01-02"`
	TermsAccepted bool   `form:"terms" validate:"required"`
}

// SubmissionFromForm reads a Submission from posted form values. A checkbox
// counts as accepted for "on", "true", "1" or "yes".
func SubmissionFromForm(values url.Values) Submission {
	terms := strings.ToLower(strings.TrimSpace(values.Get(FieldTerms)))
	return Submission{
		BirthDate:     values.Get(FieldBirthDate),
		TermsAccepted: terms == "on" || terms == "true" || terms == "1" || terms == "yes",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks the submission and returns the parsed birth date, located
// in today's time zone. A date after today parses fine; Age makes it negative
// and ConfirmAge rejects it.
func (s Submission) validate(today time.Time) (time.Time, error) {
	s.BirthDate = strings.TrimSpace(s.BirthDate)

	var fields []string
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return time.Time{}, err
		}
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}

	var birth time.Time
	if !contains(fields, FieldBirthDate) {
		parsed, err := time.ParseInLocation(BirthDateLayout, s.BirthDate, today.Location())
		if err != nil {
			fields = append([]string{FieldBirthDate}, fields...)
		} else {
			birth = parsed
		}
	}
	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return birth, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
