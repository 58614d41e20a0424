package utils

import (
	"strings"
	"time"
)

// ParseDate accepts an RFC 3339 timestamp or a bare calendar date. Bare dates
// are read as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError("invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}
