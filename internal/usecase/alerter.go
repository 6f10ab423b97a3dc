package usecase

import (
	"context"
	"fmt"
	"time"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	drepo "VixNav/internal/domain/repository"
	"VixNav/internal/domain/valuation"
	applogger "VixNav/pkg/logger"

	"github.com/google/uuid"
)

// DefaultMaxAlerts stops a monitor run after this many breaches.
const DefaultMaxAlerts = 5

// AlerterConfig identifies the watched fund.
type AlerterConfig struct {
	Fund     string
	FundName string
	FXPair   string
	// StreamMaxAge is how old a streamed FX rate may be before the quote source is polled instead.
	StreamMaxAge time.Duration
}

// Alerter compares the basket's live value with its value at the last close
// and raises an alert when the move leaves the fund's price-limit band.
type Alerter struct {
	cfg     AlerterConfig
	quotes  drepo.QuoteSource
	comps   drepo.CompositionStore
	stream  drepo.FXStream
	sink    drepo.AlertSink
	history drepo.History
	metrics drepo.Metrics
	logger  *applogger.Logger

	now   func() time.Time
	newID func() string
}

// AlerterOption sets an optional collaborator.
type AlerterOption func(*Alerter)

func WithFXStream(s drepo.FXStream) AlerterOption { return func(a *Alerter) { a.stream = s } }
func WithAlertSink(s drepo.AlertSink) AlerterOption { return func(a *Alerter) { a.sink = s } }
func WithHistory(h drepo.History) AlerterOption { return func(a *Alerter) { a.history = h } }
func WithMetrics(m drepo.Metrics) AlerterOption { return func(a *Alerter) { a.metrics = orNop(m) } }
func WithClock(now func() time.Time) AlerterOption { return func(a *Alerter) { a.now = now } }
func WithIDGenerator(f func() string) AlerterOption { return func(a *Alerter) { a.newID = f } }

func NewAlerter(cfg AlerterConfig, quotes drepo.QuoteSource, comps drepo.CompositionStore, logger *applogger.Logger, opts ...AlerterOption) *Alerter {
	if logger == nil {
		logger = applogger.Nop()
	}
	if cfg.FXPair == "" {
		cfg.FXPair = "USDJPY"
	}
	a := &Alerter{
		cfg:     cfg,
		quotes:  quotes,
		comps:   comps,
		metrics: nopMetrics{},
		logger:  logger.With(applogger.String("fund", cfg.Fund)),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// baseline is everything fixed for one trading session.
type baseline struct {
	closing models.ClosingPrice
	band    pricelimit.Band
	comp    *models.Composition
	initial models.Valuation
}

// Check runs one full evaluation.
func (a *Alerter) Check(ctx context.Context) (*models.CheckResult, error) {
	b, err := a.prepare(ctx)
	if err != nil {
		recordErr(a.metrics, err)
		return nil, err
	}
	return a.evaluate(ctx, b)
}

// MonitorSummary counts what a monitor run did.
type MonitorSummary struct {
	Checks int
	Alerts int
	Errors int
}

// Monitor checks every interval until maxAlerts breaches were raised or ctx ends.
// The initial valuation is computed once. A failed iteration is logged and skipped.
func (a *Alerter) Monitor(ctx context.Context, interval time.Duration, maxAlerts int) (MonitorSummary, error) {
	var sum MonitorSummary
	if interval <= 0 {
		return sum, fmt.Errorf("monitor interval must be positive, got %s", interval)
	}
	if maxAlerts <= 0 {
		maxAlerts = DefaultMaxAlerts
	}
	b, err := a.prepare(ctx)
	if err != nil {
		recordErr(a.metrics, err)
		return sum, err
	}
	a.logger.Info("monitor started",
		applogger.Duration("interval", interval),
		applogger.Int("max_alerts", maxAlerts),
		applogger.Float64("initial_value", b.initial.Value),
	)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		res, err := a.evaluate(ctx, b)
		sum.Checks++
		switch {
		case err != nil:
			sum.Errors++
			a.logger.Warn("check failed", applogger.Error(err))
		case res.Alert != nil:
			sum.Alerts++
			if sum.Alerts >= maxAlerts {
				a.logger.Info("monitor reached alert limit", applogger.Int("alerts", sum.Alerts))
				return sum, nil
			}
		}

		select {
		case <-ctx.Done():
			a.logger.Info("monitor stopped", applogger.Int("checks", sum.Checks), applogger.Int("alerts", sum.Alerts))
			return sum, nil
		case <-t.C:
		}
	}
}

func (a *Alerter) prepare(ctx context.Context) (*baseline, error) {
	closing, err := a.quotes.ClosingPrice(ctx, a.cfg.Fund)
	if err != nil {
		return nil, fmt.Errorf("closing price: %w", err)
	}
	band, err := pricelimit.BandFor(closing.Price)
	if err != nil {
		return nil, err
	}
	closeAt := pricelimit.ClosingTime(closing.Time)

	comp, err := a.comps.Latest(ctx, closeAt)
	if err != nil {
		return nil, fmt.Errorf("composition: %w", err)
	}
	if err := comp.Validate(closeAt); err != nil {
		return nil, err
	}

	initial, err := a.value(ctx, comp, closeAt, false)
	if err != nil {
		return nil, fmt.Errorf("initial valuation: %w", err)
	}
	a.metrics.RecordBasketValue("initial", initial.Value)
	a.logger.Debug("baseline ready",
		applogger.Float64("closing", closing.Price),
		applogger.Float64("lower", band.Lower),
		applogger.Float64("upper", band.Upper),
		applogger.String("near", comp.NearFuture),
		applogger.String("far", comp.FarFuture),
	)
	return &baseline{closing: closing, band: band, comp: comp, initial: initial}, nil
}

func (a *Alerter) evaluate(ctx context.Context, b *baseline) (*models.CheckResult, error) {
	start := time.Now()
	now := a.now()

	current, err := a.value(ctx, b.comp, now, true)
	if err != nil {
		recordErr(a.metrics, err)
		return nil, fmt.Errorf("current valuation: %w", err)
	}
	decision, err := pricelimit.CheckBreach(current.Value, b.initial.Value, b.band, b.closing.Price)
	if err != nil {
		recordErr(a.metrics, err)
		return nil, err
	}
	nav, err := valuation.NAVPerShare(current.Value, b.comp.SharesOutstanding)
	if err != nil {
		a.logger.Debug("nav per share unavailable", applogger.Error(err))
	}

	res := &models.CheckResult{
		Time:         now,
		Fund:         a.cfg.Fund,
		Closing:      b.closing,
		Band:         b.band,
		Decision:     decision,
		InitialValue: b.initial.Value,
		CurrentValue: current.Value,
		NAVPerShare:  nav,
	}
	a.metrics.RecordBasketValue("current", current.Value)
	a.metrics.RecordChange(decision.ChangePct)
	a.metrics.RecordCheck(decision.Breach)

	if decision.Breach {
		res.Alert = &models.Alert{
			ID:          a.newID(),
			Time:        now,
			Fund:        a.cfg.Fund,
			FundName:    a.cfg.FundName,
			Closing:     b.closing,
			Band:        b.band,
			Decision:    decision,
			Initial:     b.initial,
			Current:     current,
			NAVPerShare: nav,
		}
		a.logger.Warn("price limit breach",
			applogger.String("alert_id", res.Alert.ID),
			applogger.Float64("change_pct", decision.ChangePct),
			applogger.Float64("allowed_lower_pct", decision.AllowedLowerPct),
			applogger.Float64("allowed_upper_pct", decision.AllowedUpperPct),
		)
		if a.sink != nil {
			if err := a.sink.Send(ctx, res.Alert); err != nil {
				a.metrics.RecordError("alert")
				a.logger.Error("alert not fully delivered", applogger.Error(err))
			}
		}
	} else {
		a.logger.Info("within limits",
			applogger.Float64("change_pct", decision.ChangePct),
			applogger.Float64("current_value", current.Value),
		)
	}

	if a.history != nil {
		if err := a.history.StoreCheck(ctx, res); err != nil {
			a.metrics.RecordError("history")
			a.logger.Warn("store check failed", applogger.Error(err))
		}
	}
	a.metrics.RecordLatency("check", time.Since(start).Seconds())
	return res, nil
}

// value prices comp at the given time. live allows a fresh streamed FX rate.
func (a *Alerter) value(ctx context.Context, comp *models.Composition, at time.Time, live bool) (models.Valuation, error) {
	v := models.Valuation{At: at, Legs: make(map[string]models.FuturesQuote, 2)}
	prices := make(map[string]float64, 2)
	for _, tk := range comp.Tickers() {
		q, err := a.quotes.FuturesPrice(ctx, tk, at)
		if err != nil {
			return v, fmt.Errorf("%s price: %w", tk, err)
		}
		v.Legs[tk] = q
		prices[tk] = q.Price
	}

	fx, err := a.fxRate(ctx, at, live)
	if err != nil {
		return v, err
	}
	v.FX = fx

	legs, err := comp.Legs(prices)
	if err != nil {
		return v, err
	}
	if v.Value, err = valuation.BasketValue(legs, fx.Rate); err != nil {
		return v, err
	}
	return v, nil
}

func (a *Alerter) fxRate(ctx context.Context, at time.Time, live bool) (models.FXQuote, error) {
	if live && a.stream != nil {
		if q, ok := a.stream.Latest(); ok && a.fresh(q, at) {
			return q, nil
		}
	}
	q, err := a.quotes.FXRate(ctx, a.cfg.FXPair, at)
	if err != nil {
		return q, fmt.Errorf("fx rate: %w", err)
	}
	return q, nil
}

func (a *Alerter) fresh(q models.FXQuote, at time.Time) bool {
	return a.cfg.StreamMaxAge > 0 && at.Sub(q.Time) <= a.cfg.StreamMaxAge
}
