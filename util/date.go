package util

import (
	"fmt"
	"log"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
}

// ParseReleaseDate parses the date formats found in release manifests.
func ParseReleaseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func formatDate(value, layout string, lower bool) string {
	t, err := ParseReleaseDate(value)
	if err != nil {
		log.Printf("WARNING: %v, leaving it unformatted", err)
		return value
	}
	out := t.Format(layout)
	if lower {
		out = strings.ToLower(out)
	}
	return out
}

// HeaderDate formats a release date for page headers ("April 08, 2025").
func HeaderDate(value string) string {
	return formatDate(value, "January 02, 2006", false)
}

// BlogSlugDate formats a release date for blog post slugs ("april-2025").
func BlogSlugDate(value string) string {
	return formatDate(value, "January-2006", true)
}

// ProseDate formats a release date for running text ("April 2025").
func ProseDate(value string) string {
	return formatDate(value, "January 2006", false)
}

// TableDate formats a release date for release history tables ("2025/04/08").
func TableDate(value string) string {
	return formatDate(value, "2006/01/02", false)
}

// ISODate formats a release date as yyyy-MM-dd.
func ISODate(value string) string {
	return formatDate(value, "2006-01-02", false)
}
