package sqlite

import (
	"fmt"
	"time"
)

// TimeFormat is how timestamps are stored. Fixed-width RFC 3339 in UTC keeps
// lexicographic string comparison equal to chronological comparison, which
// the created_at ordering and the trailing-window rate query rely on.
// (RFC3339Nano would not: it strips trailing zeros.)
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a stored timestamp. RFC3339Nano is accepted on read so
// hand-edited or legacy rows with fewer fractional digits still load.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatTimePtr renders an optional timestamp; nil stays nil.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ParseTimePtr parses an optional stored timestamp; nil stays nil.
func ParseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
