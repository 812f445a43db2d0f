package clinic

import (
	"strings"
	"time"
)

// dateLayouts are the formats the backend has been observed to emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate coerces a date-bearing string into a time. Missing or malformed
// values map to nil; an invalid date never propagates as an error.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// orEmpty replaces a nil slice with an empty one so consumers can range and
// serialize without nil checks.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// composeFullName fills a derived full name when the backend did not supply
// one.
func composeFullName(full, first, last string) string {
	if strings.TrimSpace(full) != "" {
		return full
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
