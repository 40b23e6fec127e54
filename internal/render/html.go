// Package render turns dashboard state into HTML. Components are templ
// templates; run `templ generate` after editing any .templ file.
package render

import (
	"strconv"
	"time"

	"github.com/fortuna/pitchside/internal/backend"
)

// num prints a float the way the browser would: no trailing zeros
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// ConfidenceClass buckets a confidence percentage into high, medium or low
func ConfidenceClass(confidence float64) string {
	switch {
	case confidence >= 85:
		return "high"
	case confidence >= 80:
		return "medium"
	default:
		return "low"
	}
}

// StatusClass returns the badge class for a match status
func StatusClass(status string) string {
	switch status {
	case backend.StatusFinished:
		return "badge-success"
	case backend.StatusLive:
		return "badge-warning"
	case backend.StatusScheduled:
		return "badge-info"
	default:
		return "badge-secondary"
	}
}

// FormatDate renders a date as dd/mm/yyyy, or N/A when missing
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02/01/2006")
}
