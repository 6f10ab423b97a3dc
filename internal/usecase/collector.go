package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	drepo "VixNav/internal/domain/repository"
	"VixNav/internal/domain/ticker"
	applogger "VixNav/pkg/logger"
)

// DivergenceThreshold is the largest tolerated gap between two sources' prices for one contract.
const DivergenceThreshold = 0.1

// Collector fetches the current composition's futures and FX and appends them to the masters.
type Collector struct {
	comps    drepo.CompositionStore
	sources  []drepo.QuoteSource
	recorder drepo.MarketRecorder
	archive  drepo.Archive
	metrics  drepo.Metrics
	logger   *applogger.Logger
	pair     string
	now      func() time.Time
}

// NewCollector creates the collector. archive may be nil.
func NewCollector(comps drepo.CompositionStore, sources []drepo.QuoteSource, recorder drepo.MarketRecorder, archive drepo.Archive, metrics drepo.Metrics, logger *applogger.Logger) *Collector {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Collector{
		comps:    comps,
		sources:  sources,
		recorder: recorder,
		archive:  archive,
		metrics:  orNop(metrics),
		logger:   logger,
		pair:     "USDJPY",
		now:      time.Now,
	}
}

// CollectSummary describes one collection run.
type CollectSummary struct {
	Run      string                `json:"run"`
	Futures  []models.FuturesQuote `json:"futures"`
	FX       []models.FXQuote      `json:"fx"`
	Files    []string              `json:"files"`
	Archived int                   `json:"archived"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Collect runs one collection. It fails only when no futures price could be stored.
func (c *Collector) Collect(ctx context.Context) (*CollectSummary, error) {
	start := time.Now()
	now := c.now().In(pricelimit.JST)
	sample := models.NewPriceSample(now)
	sum := &CollectSummary{Run: sample.Timestamp}

	comp, err := c.comps.Latest(ctx, now)
	if err != nil {
		recordErr(c.metrics, err)
		return nil, fmt.Errorf("composition: %w", err)
	}

	var fetchErrs []error
	for _, tk := range comp.Tickers() {
		for _, src := range c.sources {
			q, err := src.FuturesPrice(ctx, tk, now)
			if err != nil {
				fetchErrs = append(fetchErrs, err)
				c.logger.Warn("futures fetch failed", applogger.String("ticker", tk), applogger.Error(err))
				continue
			}
			sum.Futures = append(sum.Futures, q)
			sample.Legs[ticker.SourceKey(ticker.Source(q.Source), tk)] = q.Price
		}
	}
	if len(sum.Futures) == 0 {
		err := errs.MissingData("collect", "no futures prices for %v", comp.Tickers()).Wrap(errors.Join(fetchErrs...))
		recordErr(c.metrics, err)
		return nil, err
	}
	sum.Warnings = append(sum.Warnings, divergences(sum.Futures)...)
	for _, w := range sum.Warnings {
		c.logger.Warn("source divergence", applogger.String("detail", w))
	}

	files, err := c.recorder.RecordFutures(ctx, sample, sum.Futures)
	sum.Files = append(sum.Files, files...)
	if err != nil {
		recordErr(c.metrics, err)
		return sum, fmt.Errorf("record futures: %w", err)
	}
	snapshots := firstOf(files)

	for _, src := range c.sources {
		q, err := src.FXRate(ctx, c.pair, now)
		if err != nil {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("fx %s: %v", c.pair, err))
			c.logger.Warn("fx fetch failed", applogger.Error(err))
			continue
		}
		if q.Label == "" {
			q.Label = "TTM"
		}
		sum.FX = append(sum.FX, q)
	}
	if len(sum.FX) > 0 {
		files, err := c.recorder.RecordFX(ctx, sample.Timestamp, sum.FX)
		sum.Files = append(sum.Files, files...)
		if err != nil {
			recordErr(c.metrics, err)
			return sum, fmt.Errorf("record fx: %w", err)
		}
		snapshots = append(snapshots, firstOf(files)...)
	}

	if c.archive != nil {
		for _, p := range snapshots {
			if err := c.archive.Upload(ctx, p); err != nil {
				c.metrics.RecordError("archive")
				sum.Warnings = append(sum.Warnings, fmt.Sprintf("archive %s: %v", p, err))
				c.logger.Warn("archive failed", applogger.String("file", p), applogger.Error(err))
				continue
			}
			sum.Archived++
		}
	}

	c.metrics.RecordLatency("collect", time.Since(start).Seconds())
	c.logger.Info("collection finished",
		applogger.String("run", sum.Run),
		applogger.Int("futures", len(sum.Futures)),
		applogger.Int("fx", len(sum.FX)),
		applogger.Int("archived", sum.Archived),
	)
	return sum, nil
}

// firstOf returns the snapshot path from a recorder result.
func firstOf(files []string) []string {
	if len(files) == 0 {
		return nil
	}
	return files[:1]
}

// divergences reports contracts whose prices differ across sources by more than DivergenceThreshold.
func divergences(quotes []models.FuturesQuote) []string {
	lo := make(map[string]float64)
	hi := make(map[string]float64)
	for _, q := range quotes {
		if v, ok := lo[q.Ticker]; !ok || q.Price < v {
			lo[q.Ticker] = q.Price
		}
		if v, ok := hi[q.Ticker]; !ok || q.Price > v {
			hi[q.Ticker] = q.Price
		}
	}
	var out []string
	for tk, l := range lo {
		if gap := hi[tk] - l; gap > DivergenceThreshold {
			out = append(out, fmt.Sprintf("%s prices differ by %.4f across sources", tk, gap))
		}
	}
	sort.Strings(out)
	return out
}
