package util

import (
	"strconv"
	"strings"
	"time"
)

const (
	// RunTimestampLayout keys one collection run in the master files.
	RunTimestampLayout = "200601021504"
	DateLayout         = "2006-01-02"
	FundDateLayout     = "20060102"
)

var dateLayouts = []string{DateLayout, FundDateLayout, "2006/01/02"}

// ParseTime tries RFC3339, RFC3339Nano, run timestamps and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if len(s) == len(RunTimestampLayout) {
		if t, err := time.Parse(RunTimestampLayout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDate accepts 2006-01-02, 20060102 and 2006/01/02 in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns def if empty/invalid.
func ParseDateDefault(s string, loc *time.Location, def time.Time) time.Time {
	if t, ok := ParseDate(s, loc); ok {
		return t
	}
	return def
}

// RunTimestamp formats t as a run key.
func RunTimestamp(t time.Time) string {
	return t.Format(RunTimestampLayout)
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
