package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// DateParseError is returned for input that is not a YYYY-MM-DD calendar date.
type DateParseError struct {
	Input  string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// ParseDate parses a calendar date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &DateParseError{Input: s, Reason: "empty"}
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &DateParseError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
