package ticker

import (
	"errors"
	"testing"

	"VixNav/internal/domain/errs"
)

func TestParseSourceKey(t *testing.T) {
	cases := []struct {
		key  string
		src  Source
		want string
	}{
		{"CBOE:VXH5", SourceCBOE, "VXH5"},
		{"/VXH5", SourceBroker, "VXH5"},
		{"YAHOO:VX H5", SourceYahoo, "VXH5"},
		{"YAHOO:VXH5", SourceYahoo, "VXH5"},
		{"PCF:VXH25", SourcePCF, "VXH5"},
		{"SIMPLEX:VXH5", SourceSimplex, "VXH5"},
		{"VXH25", SourceRaw, "VXH5"},
	}
	for _, c := range cases {
		src, n, err := ParseSourceKey(c.key)
		if err != nil {
			t.Fatalf("ParseSourceKey(%q): %v", c.key, err)
		}
		if src != c.src || n != c.want {
			t.Errorf("ParseSourceKey(%q) = (%s, %s), want (%s, %s)", c.key, src, n, c.src, c.want)
		}
	}
}

func TestParseSourceKeyRejects(t *testing.T) {
	for _, key := range []string{"", "BLOOMBERG:VXH5", "CBOE:", "CBOE:SPX", "/"} {
		if _, _, err := ParseSourceKey(key); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("ParseSourceKey(%q): expected invalid input, got %v", key, err)
		}
	}
}

func TestSourceKey(t *testing.T) {
	if got := SourceKey(SourceBroker, "VXM5"); got != "/VXM5" {
		t.Errorf("broker key %q", got)
	}
	if got := SourceKey(SourceYahoo, "VXM5"); got != "YAHOO:VXM5" {
		t.Errorf("yahoo key %q", got)
	}
	if got := SourceKey(SourceRaw, "VXM5"); got != "VXM5" {
		t.Errorf("raw key %q", got)
	}
}

func TestExtractFromPCF(t *testing.T) {
	cases := []struct {
		code, name, want string
	}{
		{"VXH25", "", "VXH5"},
		{"", "CBOE VIX FUT VXJ5 Apr25", "VXJ5"},
		{"CBOEVIX 2503", "", "VXH5"},
		{"", "VIX FUTURE MAR-25", "VXH5"},
		{"", "vix fut jun 26", "VXM6"},
	}
	for _, c := range cases {
		got, err := ExtractFromPCF(c.code, c.name)
		if err != nil {
			t.Fatalf("ExtractFromPCF(%q, %q): %v", c.code, c.name, err)
		}
		if got != c.want {
			t.Errorf("ExtractFromPCF(%q, %q) = %q, want %q", c.code, c.name, got, c.want)
		}
	}
	if _, err := ExtractFromPCF("CASH", "Japanese Yen"); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing data, got %v", err)
	}
}
