package repository

import (
	"context"
	"time"

	"VixNav/internal/domain/models"
)

// QuoteSource fetches market prices from a vendor.
type QuoteSource interface {
	// FuturesPrice returns the last price at or before at for a normalized ticker.
	FuturesPrice(ctx context.Context, normalized string, at time.Time) (models.FuturesQuote, error)
	// FXRate returns the last JPY per USD rate at or before at.
	FXRate(ctx context.Context, pair string, at time.Time) (models.FXQuote, error)
	// ClosingPrice returns the most recent daily close of a listed fund.
	ClosingPrice(ctx context.Context, fund string) (models.ClosingPrice, error)
}

// FXStream keeps a live FX rate.
type FXStream interface {
	Start(ctx context.Context) error
	Latest() (models.FXQuote, bool)
	Close() error
}

// CompositionStore reads fund composition history.
type CompositionStore interface {
	Latest(ctx context.Context, asOf time.Time) (*models.Composition, error)
}

// MarketHistory reads collected prices back from the master files.
type MarketHistory interface {
	LatestFutures(ctx context.Context) (map[string]float64, error)
	LatestFX(ctx context.Context, pair string) (models.FXQuote, error)
	LatestPublishedNAV(ctx context.Context) (*float64, error)
}

// MarketRecorder persists one collection run.
type MarketRecorder interface {
	RecordFutures(ctx context.Context, sample *models.PriceSample, quotes []models.FuturesQuote) ([]string, error)
	RecordFX(ctx context.Context, runTimestamp string, quotes []models.FXQuote) ([]string, error)
	RecordNAV(ctx context.Context, est *models.NAVEstimate) error
}

// AlertSink delivers a raised alert.
type AlertSink interface {
	Name() string
	Send(ctx context.Context, a *models.Alert) error
}

// History stores evaluations for later analysis.
type History interface {
	StoreCheck(ctx context.Context, r *models.CheckResult) error
	StoreNAV(ctx context.Context, n *models.NAVEstimate) error
	Health(ctx context.Context) error
	Close() error
}

// Archive uploads local files to long-term storage.
type Archive interface {
	Upload(ctx context.Context, localPath string) error
}

// Metrics records operational counters.
type Metrics interface {
	RecordCheck(breach bool)
	RecordAlert(sink string)
	RecordError(kind string)
	RecordBasketValue(kind string, jpy float64)
	RecordChange(ratio float64)
	RecordLatency(op string, seconds float64)
}
