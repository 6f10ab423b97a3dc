package repository

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLatestFuturesAveragesLatestRun(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), FuturesMaster, strings.Join([]string{
		"timestamp,price_date,vix_future,source,symbol,price",
		"202505110900,2025-05-11,VXM5,YAHOO,^VIX06.2025,17.0",
		"202505120900,2025-05-12,VXM5,YAHOO,^VIX06.2025,18.4",
		"202505120900,2025-05-12,CBOE:VXM2025,CBOE,CBOE:VXM2025,18.6",
		"202505120900,2025-05-12,VXN25,YAHOO,^VIX07.2025,19.2",
		"202505120900,2025-05-12,VXQ5,YAHOO,^VIX08.2025,n/a",
	}, "\n")+"\n")

	got, err := NewMarketCSV(s).LatestFutures(context.Background())
	if err != nil {
		t.Fatalf("LatestFutures: %v", err)
	}
	if len(got) != 2 || math.Abs(got["VXM5"]-18.5) > 1e-9 || got["VXN5"] != 19.2 {
		t.Fatalf("unexpected prices %v", got)
	}
}

func TestLatestFuturesMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := NewMarketCSV(s).LatestFutures(context.Background()); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing data, got %v", err)
	}
	writeFile(t, s.Dir(), FuturesMaster, "timestamp,price\n1,2\n")
	if _, err := NewMarketCSV(s).LatestFutures(context.Background()); !errors.Is(err, errs.ErrInvalidData) {
		t.Fatalf("expected invalid data, got %v", err)
	}
}

func TestLatestFXPrefersMidRate(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), FXMaster, strings.Join([]string{
		"timestamp,date,source,pair,label,rate",
		"202505110900,2025-05-11,MUFG,USDJPY,TTM,147.0",
		"202505120900,2025-05-12,MUFG,USDJPY,TTS,149.3",
		"202505120900,2025-05-12,MUFG,USDJPY,TTM,148.3",
		"202505120900,2025-05-12,MUFG,EURJPY,TTM,160.1",
	}, "\n")+"\n")

	q, err := NewMarketCSV(s).LatestFX(context.Background(), "USDJPY")
	if err != nil {
		t.Fatalf("LatestFX: %v", err)
	}
	if q.Rate != 148.3 || q.Label != "TTM" || q.Source != "MUFG" {
		t.Fatalf("unexpected quote %+v", q)
	}
	want := time.Date(2025, 5, 12, 9, 0, 0, 0, pricelimit.JST)
	if !q.Time.Equal(want) {
		t.Fatalf("time = %v, want %v", q.Time, want)
	}
}

func TestMidRateLabel(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"TTM", true},
		{"ttm", true},
		{"ACC.", true},
		{"A/S", true},
		{"ACCX", false},
		{"ACC", false},
		{"TTS", false},
		{"", false},
	}
	for _, c := range cases {
		if got := midRateLabel.MatchString(c.label); got != c.want {
			t.Errorf("midRateLabel(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestLatestFXIgnoresLookalikeLabel(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), FXMaster, strings.Join([]string{
		"timestamp,date,source,pair,label,rate",
		"202505120900,2025-05-12,BANK,USDJPY,TTS,149.3",
		"202505120900,2025-05-12,BANK,USDJPY,ACCX,150.0",
		"202505120900,2025-05-12,BANK,USDJPY,ACC.,148.6",
	}, "\n")+"\n")

	q, err := NewMarketCSV(s).LatestFX(context.Background(), "USDJPY")
	if err != nil {
		t.Fatalf("LatestFX: %v", err)
	}
	if q.Rate != 148.6 || q.Label != "ACC." {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestLatestFXFallsBackToAnyRate(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), FXMaster, "timestamp,date,source,pair,label,rate\n202505120900,2025-05-12,YAHOO,USDJPY,,148.9\n")
	q, err := NewMarketCSV(s).LatestFX(context.Background(), "USDJPY")
	if err != nil || q.Rate != 148.9 {
		t.Fatalf("LatestFX = %+v, %v", q, err)
	}
	if _, err := NewMarketCSV(s).LatestFX(context.Background(), "EURJPY"); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing data, got %v", err)
	}
}

func TestLatestPublishedNAV(t *testing.T) {
	s := newTestStore(t)
	m := NewMarketCSV(s)
	if nav, err := m.LatestPublishedNAV(context.Background()); nav != nil || err != nil {
		t.Fatalf("absent file should be nil, nil: %v %v", nav, err)
	}
	writeFile(t, s.Dir(), PublishedNAVMaster, "timestamp,source,fund_date,nav\n202505120900,SIMPLEX,2025-05-09,4310\n202505130900,SIMPLEX,2025-05-12,4300\n")
	nav, err := m.LatestPublishedNAV(context.Background())
	if err != nil || nav == nil || *nav != 4300 {
		t.Fatalf("LatestPublishedNAV = %v, %v", nav, err)
	}
}

func TestRecordFuturesAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := NewMarketCSV(s)
	runAt := time.Date(2025, 5, 12, 10, 30, 0, 0, pricelimit.JST)
	sample := models.NewPriceSample(runAt)

	paths, err := m.RecordFutures(ctx, sample, []models.FuturesQuote{
		{Ticker: "VXM5", Source: "YAHOO", Symbol: "^VIX06.2025", Price: 18.5, Time: runAt},
		{Ticker: "VXN5", Source: "YAHOO", Symbol: "^VIX07.2025", Price: 19.2, Time: runAt},
	})
	if err != nil {
		t.Fatalf("RecordFutures: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "vix_futures_202505121030.csv" || filepath.Base(paths[1]) != FuturesMaster {
		t.Fatalf("unexpected paths %v", paths)
	}
	got, err := m.LatestFutures(ctx)
	if err != nil || got["VXM5"] != 18.5 || got["VXN5"] != 19.2 {
		t.Fatalf("read back %v, %v", got, err)
	}

	if _, err := m.RecordFutures(ctx, sample, nil); !errors.Is(err, errs.ErrMissingData) {
		t.Fatalf("expected missing data for empty run, got %v", err)
	}
}

func TestRecordNAV(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	pub := 4300.0
	est := &models.NAVEstimate{Timestamp: "202505121030", CalculationDate: "2025-05-12", EstimatedNAV: 4400, PublishedNAV: &pub}
	if err := NewMarketCSV(s).RecordNAV(ctx, est); err != nil {
		t.Fatalf("RecordNAV: %v", err)
	}
	recs := readCSV(t, filepath.Join(s.Dir(), EstimatedNAVMaster))
	if len(recs) != 2 || recs[1][12] != "4400" || recs[1][13] != "4300" || recs[1][14] != "" {
		t.Fatalf("unexpected rows %v", recs)
	}
}
