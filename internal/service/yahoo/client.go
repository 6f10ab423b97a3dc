// Package yahoo reads futures, FX and listed fund prices from the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	"VixNav/internal/domain/repository"
	"VixNav/internal/domain/ticker"
	"VixNav/pkg/cache"
	apphttp "VixNav/pkg/http"
	applogger "VixNav/pkg/logger"
	"VixNav/pkg/util"
)

const (
	sourceName     = string(ticker.SourceYahoo)
	intradayWindow = 59 * 24 * time.Hour
)

// Config mirrors the yahoo section of the application config.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64
	Burst     int
	Lookback  time.Duration
	CacheTTL  time.Duration
	UserAgent string
}

// Client implements repository.QuoteSource.
type Client struct {
	http     *apphttp.Client
	baseURL  string
	lookback time.Duration
	cache    cache.Service
	cacheTTL time.Duration
	logger   *applogger.Logger
	now      func() time.Time
}

var _ repository.QuoteSource = (*Client)(nil)

// New creates a client. cache may be nil to disable response caching.
func New(cfg Config, c cache.Service, logger *applogger.Logger, opts ...apphttp.ClientOption) *Client {
	if logger == nil {
		logger = applogger.Nop()
	}
	base := []apphttp.ClientOption{
		apphttp.WithTimeout(cfg.Timeout),
		apphttp.WithUserAgent(cfg.UserAgent),
		apphttp.WithRateLimit(cfg.RPS, cfg.Burst),
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = 5 * 24 * time.Hour
	}
	return &Client{
		http:     apphttp.NewClient(append(base, opts...)...),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		lookback: lookback,
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		logger:   logger.With(applogger.String("component", "yahoo")),
		now:      time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Bar is one chart close.
type Bar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// FuturesPrice returns the last bar at or before at for the contract the
// normalized ticker resolves to.
func (c *Client) FuturesPrice(ctx context.Context, normalized string, at time.Time) (models.FuturesQuote, error) {
	symbol, err := ticker.YahooSymbol(normalized, at)
	if err != nil {
		return models.FuturesQuote{}, err
	}
	bar, err := c.lastBefore(ctx, symbol, at)
	if err != nil {
		return models.FuturesQuote{}, err
	}
	return models.FuturesQuote{
		Ticker: normalized,
		Source: sourceName,
		Symbol: symbol,
		Price:  bar.Close,
		Time:   bar.Time,
	}, nil
}

// FXRate returns the pair's last rate at or before at, e.g. USDJPY via USDJPY=X.
func (c *Client) FXRate(ctx context.Context, pair string, at time.Time) (models.FXQuote, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if len(pair) != 6 {
		return models.FXQuote{}, errs.InvalidInput("fx rate", "pair %q must be six letters", pair)
	}
	bar, err := c.lastBefore(ctx, pair+"=X", at)
	if err != nil {
		return models.FXQuote{}, err
	}
	return models.FXQuote{Pair: pair, Rate: bar.Close, Source: sourceName, Time: bar.Time}, nil
}

// ClosingPrice returns the most recent daily close of a listed fund.
// Today's bar in Tokyo is still forming during the session and is skipped.
func (c *Client) ClosingPrice(ctx context.Context, fund string) (models.ClosingPrice, error) {
	y, m, d := c.now().In(pricelimit.JST).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, pricelimit.JST)

	bars, err := c.Chart(ctx, fund, today.Add(-10*24*time.Hour), today, "1d")
	if err != nil {
		return models.ClosingPrice{}, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Time.Before(today) {
			return models.ClosingPrice{Ticker: fund, Price: bars[i].Close, Time: bars[i].Time}, nil
		}
	}
	return models.ClosingPrice{}, errs.MissingData("closing price", "no daily close for %s before %s", fund, today.Format(util.DateLayout))
}

func (c *Client) lastBefore(ctx context.Context, symbol string, at time.Time) (Bar, error) {
	interval := "1h"
	if c.now().Sub(at) > intradayWindow {
		interval = "1d"
	}
	bars, err := c.Chart(ctx, symbol, at.Add(-c.lookback), at.Add(time.Minute), interval)
	if err != nil {
		return Bar{}, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Time.After(at) {
			return bars[i], nil
		}
	}
	return Bar{}, errs.MissingData("yahoo chart", "no %s bar for %s at or before %s", interval, symbol, at.Format(time.RFC3339))
}

// Chart returns the non-null closes of symbol between from and to, oldest first.
// Results are cached per request window.
func (c *Client) Chart(ctx context.Context, symbol string, from, to time.Time, interval string) ([]Bar, error) {
	p1, p2 := from.Truncate(time.Minute).Unix(), to.Truncate(time.Minute).Unix()
	key := cache.GenerateKeyWithParams("yahoo:chart", symbol, interval, p1, p2)

	if c.cache != nil {
		var cached []Bar
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("chart cache read failed", applogger.String("key", key), applogger.Error(err))
		}
	}

	start := time.Now()
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(p1, 10)},
			"period2":  {strconv.FormatInt(p2, 10)},
			"interval": {interval},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &resp)
	if err != nil {
		var se *apphttp.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, errs.MissingData("yahoo chart", "symbol %s not found", symbol).Wrap(err)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	c.logger.Debug("chart fetched",
		applogger.String("symbol", symbol),
		applogger.String("interval", interval),
		applogger.Duration("elapsed", time.Since(start)),
	)

	bars, err := decodeBars(symbol, &resp)
	if err != nil {
		return nil, err
	}
	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, bars, c.cacheTTL); err != nil {
			c.logger.Warn("chart cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return bars, nil
}

func decodeBars(symbol string, resp *chartResponse) ([]Bar, error) {
	if e := resp.Chart.Error; e != nil {
		return nil, errs.MissingData("yahoo chart", "%s: %s %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errs.MissingData("yahoo chart", "%s: empty result", symbol)
	}
	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, errs.MissingData("yahoo chart", "%s: no quote indicators", symbol)
	}
	closes := r.Indicators.Quote[0].Close
	if len(closes) != len(r.Timestamp) {
		return nil, errs.InvalidData("yahoo chart", "%s: %d timestamps but %d closes", symbol, len(r.Timestamp), len(closes))
	}

	bars := make([]Bar, 0, len(closes))
	for i, cl := range closes {
		if cl == nil || *cl <= 0 {
			continue
		}
		bars = append(bars, Bar{Time: time.Unix(r.Timestamp[i], 0).UTC(), Close: *cl})
	}
	return bars, nil
}
