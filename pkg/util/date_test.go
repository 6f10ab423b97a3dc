package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeRunTimestamp(t *testing.T) {
	got, ok := ParseTime("202505121530")
	if !ok {
		t.Fatalf("expected ok")
	}
	if RunTimestamp(got) != "202505121530" {
		t.Fatalf("round trip = %s", RunTimestamp(got))
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2025-05-12", "20250512", "2025/05/12", " 2025-05-12 "} {
		got, ok := ParseDate(s, time.UTC)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := ParseDate("12/05/2025", time.UTC); ok {
		t.Errorf("expected failure")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if got := ParseDateDefault("", time.UTC, def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC))
	if got.Day() != 12 || got.Hour() != 23 || !got.Add(time.Nanosecond).Equal(time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("EndOfDay = %v", got)
	}
}
