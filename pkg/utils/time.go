package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatTimestamp renders t as an RFC 3339 UTC timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses an ISO-8601 / RFC 3339 timestamp, with or without
// fractional seconds.
func ParseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrValidation)
	}

	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: unable to parse timestamp %q", ErrValidation, v)
}

// CurrentTimestamp returns the current Unix time in seconds.
func CurrentTimestamp() int64 {
	return time.Now().Unix()
}

// CurrentDate returns the current time formatted with FormatTimestamp.
func CurrentDate() string {
	return FormatTimestamp(time.Now())
}
