package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/pricelimit"
)

func TestCompositionLatest(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), CompositionMaster,
		"timestamp,fund_date,near_future_code,far_future_code,shares_amount_near_future,shares_amount_far_future,shares_outstanding,fund_cash_component\n"+
			"202505090800,20250509,VXK25,VXM25,180,170,100000,\"1,000,000\"\n"+
			"202505120800,20250512,VXM25,VXN25,200,150,110000,2000000\n"+
			"202505130800,20250513,VXM25,VXN25,190,160,111000,2100000\n")

	c := NewCompositionCSV(s, 0)
	asOf := time.Date(2025, 5, 12, 15, 0, 0, 0, pricelimit.JST)
	comp, err := c.Latest(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if comp.NearFuture != "VXM5" || comp.FarFuture != "VXN5" || comp.SharesNear != 200 || comp.SharesFar != 150 {
		t.Fatalf("unexpected composition %+v", comp)
	}
	if comp.SharesOutstanding != 110000 || comp.CashComponent != 2000000 {
		t.Fatalf("unexpected amounts %+v", comp)
	}

	old, err := c.Latest(context.Background(), time.Date(2025, 5, 10, 0, 0, 0, 0, pricelimit.JST))
	if err != nil || old.NearFuture != "VXK5" || old.CashComponent != 1000000 {
		t.Fatalf("older composition = %+v, %v", old, err)
	}
}

func TestCompositionLatestErrors(t *testing.T) {
	s := newTestStore(t)
	c := NewCompositionCSV(s, 0)
	ctx := context.Background()
	asOf := time.Date(2025, 5, 12, 0, 0, 0, 0, pricelimit.JST)

	if _, err := c.Latest(ctx, asOf); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("missing file: %v", err)
	}

	writeFile(t, s.Dir(), CompositionMaster, "fund_date,near_future\n20250512,VXM5\n")
	if _, err := c.Latest(ctx, asOf); !errors.Is(err, errs.ErrInvalidData) {
		t.Fatalf("missing columns: %v", err)
	}

	writeFile(t, s.Dir(), CompositionMaster, "fund_date,near_future,far_future,shares_near,shares_far\n20250601,VXM5,VXN5,1,1\n")
	if _, err := c.Latest(ctx, asOf); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("future-only rows: %v", err)
	}
}

func TestCompositionSharesFallback(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), CompositionMaster, "fund_date,near_future,far_future,shares_near,shares_far\n2025-05-12,VXM5,VXN5,200,150\n")
	comp, err := NewCompositionCSV(s, 98765).Latest(context.Background(), time.Date(2025, 5, 12, 0, 0, 0, 0, pricelimit.JST))
	if err != nil || comp.SharesOutstanding != 98765 {
		t.Fatalf("fallback = %+v, %v", comp, err)
	}
}
