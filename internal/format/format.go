// Package format renders dates for the supported site languages.
package format

import (
	"fmt"
	"strings"
	"time"
)

var frMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FmtDate formats t in a locale-friendly long form.
// Example: FmtDate(t, "fr") => "19 octobre 2026"
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "fr":
		day := fmt.Sprintf("%d", t.Day())
		if t.Day() == 1 {
			day = "1er"
		}
		return fmt.Sprintf("%s %s %d", day, frMonths[t.Month()-1], t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}

// FmtISODate is the machine-readable form used in <time datetime>.
func FmtISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
