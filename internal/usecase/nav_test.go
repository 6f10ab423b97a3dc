package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
)

func navFixture() (*fakeComps, *fakeMarket) {
	published := 980.0
	c := &fakeComps{comp: &models.Composition{
		NearFuture: "VXM5", FarFuture: "VXN5",
		SharesNear: 200, SharesFar: 150,
		SharesOutstanding: 1_000_000,
		CashComponent:     2_000_000,
	}}
	m := &fakeMarket{
		futures:   map[string]float64{"VXM5": 18.5, "VXN5": 19.2},
		fx:        &models.FXQuote{Pair: "USDJPY", Rate: 148.3, Label: "TTM"},
		published: &published,
	}
	return c, m
}

func TestEstimateNAV(t *testing.T) {
	c, m := navFixture()
	hist := &fakeHistory{}
	n := NewNAVEstimator(c, m, m, hist, nil, nil)
	n.now = func() time.Time { return checkNow }

	est, err := n.Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if math.Abs(est.EstimatedNAV-977.814) > 1e-6 {
		t.Fatalf("nav = %v", est.EstimatedNAV)
	}
	if math.Abs(est.FuturesValueUSD-6_580_000) > 1e-6 {
		t.Fatalf("futures usd = %v", est.FuturesValueUSD)
	}
	if est.Difference == nil || math.Abs(*est.Difference+2.186) > 1e-6 {
		t.Fatalf("difference = %v", est.Difference)
	}
	if est.Timestamp != "202505131000" || est.CalculationDate != "2025-05-13" {
		t.Fatalf("run = %s %s", est.Timestamp, est.CalculationDate)
	}
	if len(m.navs) != 1 || len(hist.navs) != 1 {
		t.Fatalf("recorded %d, stored %d", len(m.navs), len(hist.navs))
	}
}

func TestEstimateNAVWithoutPublished(t *testing.T) {
	c, m := navFixture()
	m.published = nil
	est, err := NewNAVEstimator(c, m, nil, nil, nil, nil).Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.PublishedNAV != nil || est.Difference != nil || est.DifferencePct != nil {
		t.Fatalf("expected no comparison, got %+v", est)
	}
}

func TestEstimateNAVMissingInputs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fakeComps, *fakeMarket)
	}{
		{"no fx", func(_ *fakeComps, m *fakeMarket) { m.fx = nil }},
		{"no futures", func(_ *fakeComps, m *fakeMarket) { m.futures = nil }},
		{"no far price", func(_ *fakeComps, m *fakeMarket) { delete(m.futures, "VXN5") }},
		{"no composition", func(c *fakeComps, _ *fakeMarket) { c.err = errs.MissingData("composition", "none") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, m := navFixture()
			tc.mutate(c, m)
			_, err := NewNAVEstimator(c, m, m, nil, nil, nil).Estimate(context.Background())
			if !errors.Is(err, errs.ErrMissingData) {
				t.Fatalf("expected missing data, got %v", err)
			}
			if len(m.navs) != 0 {
				t.Fatal("nothing should be recorded")
			}
		})
	}
}
