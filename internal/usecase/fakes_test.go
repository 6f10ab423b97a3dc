package usecase

import (
	"context"
	"sync"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
)

// fakeQuotes serves fixed closing prices and a price function of time.
type fakeQuotes struct {
	source  string
	closing models.ClosingPrice
	price   func(ticker string, at time.Time) (float64, error)
	fx      func(at time.Time) (float64, error)

	mu      sync.Mutex
	fxCalls int
}

func (f *fakeQuotes) FuturesPrice(_ context.Context, tk string, at time.Time) (models.FuturesQuote, error) {
	p, err := f.price(tk, at)
	if err != nil {
		return models.FuturesQuote{}, err
	}
	return models.FuturesQuote{Ticker: tk, Source: f.source, Symbol: tk, Price: p, Time: at}, nil
}

func (f *fakeQuotes) FXRate(_ context.Context, pair string, at time.Time) (models.FXQuote, error) {
	f.mu.Lock()
	f.fxCalls++
	f.mu.Unlock()
	r, err := f.fx(at)
	if err != nil {
		return models.FXQuote{}, err
	}
	return models.FXQuote{Pair: pair, Rate: r, Source: f.source, Time: at}, nil
}

func (f *fakeQuotes) ClosingPrice(context.Context, string) (models.ClosingPrice, error) {
	if f.closing.Price == 0 {
		return models.ClosingPrice{}, errs.MissingData("closing", "none")
	}
	return f.closing, nil
}

type fakeComps struct {
	comp *models.Composition
	err  error
	asOf []time.Time
}

func (f *fakeComps) Latest(_ context.Context, asOf time.Time) (*models.Composition, error) {
	f.asOf = append(f.asOf, asOf)
	if f.err != nil {
		return nil, f.err
	}
	c := *f.comp
	return &c, nil
}

type fakeSink struct {
	mu     sync.Mutex
	alerts []*models.Alert
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Send(_ context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

type fakeHistory struct {
	checks []*models.CheckResult
	navs   []*models.NAVEstimate
}

func (h *fakeHistory) StoreCheck(_ context.Context, r *models.CheckResult) error {
	h.checks = append(h.checks, r)
	return nil
}

func (h *fakeHistory) StoreNAV(_ context.Context, n *models.NAVEstimate) error {
	h.navs = append(h.navs, n)
	return nil
}

func (h *fakeHistory) Health(context.Context) error { return nil }
func (h *fakeHistory) Close() error                 { return nil }

type fakeStream struct {
	q  models.FXQuote
	ok bool
}

func (s *fakeStream) Start(context.Context) error    { return nil }
func (s *fakeStream) Latest() (models.FXQuote, bool) { return s.q, s.ok }
func (s *fakeStream) Close() error                   { return nil }

type fakeMarket struct {
	futures   map[string]float64
	fx        *models.FXQuote
	published *float64
	navs      []*models.NAVEstimate
	runs      []*models.PriceSample
	fxRuns    []string
}

func (m *fakeMarket) LatestFutures(context.Context) (map[string]float64, error) {
	if m.futures == nil {
		return nil, errs.MissingData("futures", "none")
	}
	return m.futures, nil
}

func (m *fakeMarket) LatestFX(context.Context, string) (models.FXQuote, error) {
	if m.fx == nil {
		return models.FXQuote{}, errs.MissingData("fx", "none")
	}
	return *m.fx, nil
}

func (m *fakeMarket) LatestPublishedNAV(context.Context) (*float64, error) { return m.published, nil }

func (m *fakeMarket) RecordFutures(_ context.Context, s *models.PriceSample, _ []models.FuturesQuote) ([]string, error) {
	m.runs = append(m.runs, s)
	return []string{"/data/vix_futures_" + s.Timestamp + ".csv", "/data/vix_futures_master.csv"}, nil
}

func (m *fakeMarket) RecordFX(_ context.Context, run string, _ []models.FXQuote) ([]string, error) {
	m.fxRuns = append(m.fxRuns, run)
	return []string{"/data/fx_data_" + run + ".csv", "/data/fx_data_master.csv"}, nil
}

func (m *fakeMarket) RecordNAV(_ context.Context, n *models.NAVEstimate) error {
	m.navs = append(m.navs, n)
	return nil
}

type fakeArchive struct{ uploaded []string }

func (a *fakeArchive) Upload(_ context.Context, p string) error {
	a.uploaded = append(a.uploaded, p)
	return nil
}
