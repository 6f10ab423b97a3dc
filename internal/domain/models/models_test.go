package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/pricelimit"
)

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:             "0.00",
		999.5:         "999.50",
		1000:          "1,000.00",
		435000000:     "435,000,000.00",
		-1234567.891:  "-1,234,567.89",
		12345678.0049: "12,345,678.00",
	}
	for in, want := range cases {
		if got := money(in); got != want {
			t.Errorf("money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCompositionValidate(t *testing.T) {
	ref := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	ok := &Composition{NearFuture: "VXM5", FarFuture: "VXN5"}
	if err := ok.Validate(ref); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	swapped := &Composition{NearFuture: "VXN5", FarFuture: "VXM5"}
	if err := swapped.Validate(ref); !errors.Is(err, errs.ErrInvalidData) {
		t.Fatalf("expected invalid data, got %v", err)
	}
	// December near, January far across a year boundary.
	roll := &Composition{NearFuture: "VXZ5", FarFuture: "VXF6"}
	if err := roll.Validate(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("year boundary: %v", err)
	}
}

func TestCompositionLegs(t *testing.T) {
	c := &Composition{NearFuture: "VXM5", FarFuture: "VXN5", SharesNear: 200, SharesFar: 150}
	legs, err := c.Legs(map[string]float64{"VXM5": 18.5, "VXN5": 19.2})
	if err != nil {
		t.Fatalf("Legs: %v", err)
	}
	if len(legs) != 2 || legs[0].Weight != 200 || legs[1].Price != 19.2 {
		t.Fatalf("unexpected legs %+v", legs)
	}
	if _, err := c.Legs(map[string]float64{"VXM5": 18.5}); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing data, got %v", err)
	}
}

func TestAlertReport(t *testing.T) {
	at := time.Date(2025, 5, 12, 10, 30, 0, 0, pricelimit.JST)
	a := &Alert{
		ID:       "abc",
		Time:     at,
		Fund:     "318A.T",
		FundName: "VIX short-term futures ETF",
		Closing:  ClosingPrice{Ticker: "318A.T", Price: 1000},
		Band:     pricelimit.Band{Lower: 850, Upper: 1150, Width: 150},
		Decision: pricelimit.Decision{Breach: true, ChangePct: 0.2, AllowedLowerPct: -0.15, AllowedUpperPct: 0.15},
		Initial: Valuation{
			At:    at.Add(-time.Hour),
			Value: 1_000_000,
			Legs:  map[string]FuturesQuote{"VXM5": {Ticker: "VXM5", Source: "YAHOO", Price: 18.5, Time: at}},
			FX:    FXQuote{Rate: 148.3, Source: "YAHOO", Time: at},
		},
		Current: Valuation{
			At:    at,
			Value: 1_200_000,
			Legs:  map[string]FuturesQuote{"VXM5": {Ticker: "VXM5", Source: "YAHOO", Price: 22.2, Time: at}},
			FX:    FXQuote{Rate: 148.3, Source: "FINNHUB", Time: at},
		},
	}
	r := a.Report()
	for _, want := range []string{
		"PRICE LIMIT ALERT\n",
		"ETF: 318A.T (VIX short-term futures ETF)",
		"Price Limits: 850.00 JPY to 1150.00 JPY",
		"Allowed Range: -15.00% to 15.00%",
		"Change: 20.00% (200,000.00 JPY)",
		"Estimated NAV per share: Not available",
		"  VXM5: 22.2000 (from YAHOO",
		"Current Rate: 148.30 JPY/USD (from FINNHUB",
	} {
		if !strings.Contains(r, want) {
			t.Errorf("report missing %q\n%s", want, r)
		}
	}
	if !strings.Contains(a.Summary(), "changed by 20.00%") {
		t.Errorf("summary %q", a.Summary())
	}
}
