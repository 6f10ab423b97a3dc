package usecase

import (
	"context"
	"fmt"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	drepo "VixNav/internal/domain/repository"
	"VixNav/internal/domain/valuation"
	applogger "VixNav/pkg/logger"
	"VixNav/pkg/util"
)

// NAVEstimator estimates the fund NAV from the collected master files.
type NAVEstimator struct {
	comps    drepo.CompositionStore
	market   drepo.MarketHistory
	recorder drepo.MarketRecorder
	history  drepo.History
	metrics  drepo.Metrics
	logger   *applogger.Logger
	pair     string
	now      func() time.Time
}

// NewNAVEstimator creates the estimator. recorder and history may be nil.
func NewNAVEstimator(comps drepo.CompositionStore, market drepo.MarketHistory, recorder drepo.MarketRecorder, history drepo.History, metrics drepo.Metrics, logger *applogger.Logger) *NAVEstimator {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &NAVEstimator{
		comps:    comps,
		market:   market,
		recorder: recorder,
		history:  history,
		metrics:  orNop(metrics),
		logger:   logger,
		pair:     "USDJPY",
		now:      time.Now,
	}
}

// Estimate computes and persists one estimate.
func (n *NAVEstimator) Estimate(ctx context.Context) (*models.NAVEstimate, error) {
	start := time.Now()
	est, err := n.estimate(ctx)
	if err != nil {
		recordErr(n.metrics, err)
		return nil, err
	}

	if n.recorder != nil {
		if err := n.recorder.RecordNAV(ctx, est); err != nil {
			recordErr(n.metrics, err)
			return est, fmt.Errorf("record nav: %w", err)
		}
	}
	if n.history != nil {
		if err := n.history.StoreNAV(ctx, est); err != nil {
			n.metrics.RecordError("history")
			n.logger.Warn("store nav failed", applogger.Error(err))
		}
	}
	n.metrics.RecordLatency("nav", time.Since(start).Seconds())

	fields := []applogger.Field{
		applogger.String("run", est.Timestamp),
		applogger.Float64("estimated_nav", est.EstimatedNAV),
		applogger.Float64("fx", est.FXRate),
	}
	if est.DifferencePct != nil {
		fields = append(fields, applogger.Float64("diff_pct", *est.DifferencePct))
	}
	n.logger.Info("nav estimated", fields...)
	return est, nil
}

func (n *NAVEstimator) estimate(ctx context.Context) (*models.NAVEstimate, error) {
	now := n.now().In(pricelimit.JST)

	comp, err := n.comps.Latest(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("composition: %w", err)
	}
	prices, err := n.market.LatestFutures(ctx)
	if err != nil {
		return nil, fmt.Errorf("futures: %w", err)
	}
	nearPrice, ok := prices[comp.NearFuture]
	if !ok {
		return nil, errs.MissingData("estimate nav", "no collected price for near future %s", comp.NearFuture)
	}
	farPrice, ok := prices[comp.FarFuture]
	if !ok {
		return nil, errs.MissingData("estimate nav", "no collected price for far future %s", comp.FarFuture)
	}
	fx, err := n.market.LatestFX(ctx, n.pair)
	if err != nil {
		return nil, fmt.Errorf("fx: %w", err)
	}
	published, err := n.market.LatestPublishedNAV(ctx)
	if err != nil {
		n.logger.Warn("published nav unreadable", applogger.Error(err))
		published = nil
	}

	res, err := valuation.EstimateNAV(valuation.NAVInput{
		Legs: []models.PricedLeg{
			{Ticker: comp.NearFuture, Price: nearPrice, Weight: comp.SharesNear},
			{Ticker: comp.FarFuture, Price: farPrice, Weight: comp.SharesFar},
		},
		FXRate:            fx.Rate,
		Cash:              comp.CashComponent,
		SharesOutstanding: comp.SharesOutstanding,
		PublishedNAV:      published,
	})
	if err != nil {
		return nil, err
	}

	return &models.NAVEstimate{
		Timestamp:         util.RunTimestamp(now),
		CalculationDate:   now.Format(util.DateLayout),
		CalculatedAt:      now,
		SharesOutstanding: comp.SharesOutstanding,
		SharesNear:        comp.SharesNear,
		SharesFar:         comp.SharesFar,
		Cash:              comp.CashComponent,
		NearFuture:        comp.NearFuture,
		NearPrice:         nearPrice,
		FarFuture:         comp.FarFuture,
		FarPrice:          farPrice,
		FXRate:            fx.Rate,
		FuturesValueUSD:   res.FuturesValueUSD,
		EstimatedNAV:      res.EstimatedNAV,
		PublishedNAV:      published,
		Difference:        res.Difference,
		DifferencePct:     res.DifferencePct,
	}, nil
}
