package repository

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	"VixNav/internal/domain/repository"
	"VixNav/internal/domain/ticker"
	"VixNav/pkg/util"
)

const (
	FuturesMaster      = "vix_futures_master.csv"
	FXMaster           = "fx_data_master.csv"
	PublishedNAVMaster = "nav_data_master.csv"
	EstimatedNAVMaster = "estimated_navs_master.csv"
)

var (
	futuresHeader = []string{"timestamp", "price_date", "vix_future", "source", "symbol", "price"}
	fxHeader      = []string{"timestamp", "date", "source", "pair", "label", "rate"}
	navHeader     = []string{
		"timestamp", "calculation_date", "shares_outstanding", "shares_near_future", "shares_far_future",
		"fund_cash_component", "near_future", "near_future_price", "far_future", "far_future_price",
		"usd_jpy_rate", "futures_value_usd", "estimated_nav_jpy", "published_nav", "nav_difference", "nav_difference_pct",
	}

	// Mid-market style labels, preferred over bid/ask when several rates share a run.
	midRateLabel = regexp.MustCompile(`(?i)TTM|ACC\.|A/S`)
)

// MarketCSV reads and writes the futures, FX and NAV master files.
type MarketCSV struct {
	store *MasterCSV
}

var (
	_ repository.MarketHistory  = (*MarketCSV)(nil)
	_ repository.MarketRecorder = (*MarketCSV)(nil)
)

func NewMarketCSV(store *MasterCSV) *MarketCSV {
	return &MarketCSV{store: store}
}

// LatestFutures averages the latest run's prices per normalized contract across sources.
func (m *MarketCSV) LatestFutures(_ context.Context) (map[string]float64, error) {
	t, err := m.store.read(FuturesMaster)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"timestamp", "vix_future", "price"} {
		if !t.has(col) {
			return nil, errs.InvalidData("latest futures", "%s has no %s column", FuturesMaster, col)
		}
	}

	run := latestRun(t, nil)
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range t.rows {
		if t.get(r, "timestamp") != run {
			continue
		}
		norm, err := ticker.Normalize(t.get(r, "vix_future"))
		if err != nil {
			continue
		}
		price, ok := parsePositive(t.get(r, "price"))
		if !ok {
			continue
		}
		sums[norm] += price
		counts[norm]++
	}
	if len(sums) == 0 {
		return nil, errs.MissingData("latest futures", "%s has no usable prices", FuturesMaster)
	}

	out := make(map[string]float64, len(sums))
	for k, s := range sums {
		out[k] = s / float64(counts[k])
	}
	return out, nil
}

// LatestFX returns the pair's rate from the latest run, preferring mid-market labels.
func (m *MarketCSV) LatestFX(_ context.Context, pair string) (models.FXQuote, error) {
	t, err := m.store.read(FXMaster)
	if err != nil {
		return models.FXQuote{}, err
	}
	if !t.has("timestamp") || !t.has("rate") {
		return models.FXQuote{}, errs.InvalidData("latest fx", "%s needs timestamp and rate columns", FXMaster)
	}

	matchPair := func(r []string) bool {
		p := t.get(r, "pair")
		return p == "" || strings.EqualFold(p, pair)
	}
	run := latestRun(t, matchPair)

	var fallback, preferred []string
	for _, r := range t.rows {
		if t.get(r, "timestamp") != run || !matchPair(r) {
			continue
		}
		if _, ok := parsePositive(t.get(r, "rate")); !ok {
			continue
		}
		if preferred == nil && midRateLabel.MatchString(t.get(r, "label")) {
			preferred = r
		}
		if fallback == nil {
			fallback = r
		}
	}
	row := preferred
	if row == nil {
		row = fallback
	}
	if row == nil {
		return models.FXQuote{}, errs.MissingData("latest fx", "no %s rate in %s", pair, FXMaster)
	}

	rate, _ := parsePositive(t.get(row, "rate"))
	at, _ := runTime(run, pricelimit.JST)
	return models.FXQuote{
		Pair:   pair,
		Label:  t.get(row, "label"),
		Rate:   rate,
		Source: t.get(row, "source"),
		Time:   at,
	}, nil
}

// LatestPublishedNAV returns nil when no published NAV file exists.
func (m *MarketCSV) LatestPublishedNAV(_ context.Context) (*float64, error) {
	t, err := m.store.read(PublishedNAVMaster)
	if err != nil {
		if errors.Is(err, errs.ErrMissingData) {
			return nil, nil
		}
		return nil, err
	}
	if !t.has("nav") {
		return nil, nil
	}

	var best []string
	var bestKey string
	for _, r := range t.rows {
		if _, ok := parsePositive(t.get(r, "nav")); !ok {
			continue
		}
		key := t.get(r, "fund_date") + "|" + t.get(r, "timestamp")
		if best == nil || key > bestKey {
			best, bestKey = r, key
		}
	}
	if best == nil {
		return nil, nil
	}
	nav, _ := parsePositive(t.get(best, "nav"))
	return &nav, nil
}

// RecordFutures writes the run snapshot and merges it into the master. It returns both paths.
func (m *MarketCSV) RecordFutures(ctx context.Context, sample *models.PriceSample, quotes []models.FuturesQuote) ([]string, error) {
	if len(quotes) == 0 {
		return nil, errs.MissingData("record futures", "no quotes for run %s", sample.Timestamp)
	}
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		priceDate := sample.Date
		if !q.Time.IsZero() {
			priceDate = q.Time.Format(util.DateLayout)
		}
		rows = append(rows, []string{sample.Timestamp, priceDate, q.Ticker, q.Source, q.Symbol, formatFloat(q.Price)})
	}
	return m.record(ctx, "vix_futures_"+sample.Timestamp+".csv", FuturesMaster, futuresHeader, rows, sample.Timestamp)
}

func (m *MarketCSV) RecordFX(ctx context.Context, runTimestamp string, quotes []models.FXQuote) ([]string, error) {
	if len(quotes) == 0 {
		return nil, errs.MissingData("record fx", "no quotes for run %s", runTimestamp)
	}
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{runTimestamp, q.Time.Format(util.DateLayout), q.Source, q.Pair, q.Label, formatFloat(q.Rate)})
	}
	return m.record(ctx, "fx_data_"+runTimestamp+".csv", FXMaster, fxHeader, rows, runTimestamp)
}

func (m *MarketCSV) RecordNAV(ctx context.Context, est *models.NAVEstimate) error {
	row := []string{
		est.Timestamp, est.CalculationDate,
		formatFloat(est.SharesOutstanding), formatFloat(est.SharesNear), formatFloat(est.SharesFar),
		formatFloat(est.Cash), est.NearFuture, formatFloat(est.NearPrice), est.FarFuture, formatFloat(est.FarPrice),
		formatFloat(est.FXRate), formatFloat(est.FuturesValueUSD), formatFloat(est.EstimatedNAV),
		formatOptional(est.PublishedNAV), formatOptional(est.Difference), formatOptional(est.DifferencePct),
	}
	_, err := m.store.Append(ctx, EstimatedNAVMaster, navHeader, [][]string{row}, est.Timestamp)
	return err
}

func (m *MarketCSV) record(ctx context.Context, snapshot, master string, header []string, rows [][]string, run string) ([]string, error) {
	snapPath, err := m.store.WriteSnapshot(snapshot, header, rows)
	if err != nil {
		return nil, err
	}
	masterPath, err := m.store.Append(ctx, master, header, rows, run)
	if err != nil {
		return []string{snapPath}, err
	}
	return []string{snapPath, masterPath}, nil
}

// latestRun returns the greatest run timestamp among rows accepted by keep.
// Run timestamps are fixed-width YYYYMMDDHHMM, so string order is time order.
func latestRun(t *table, keep func([]string) bool) string {
	runs := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		if keep != nil && !keep(r) {
			continue
		}
		runs = append(runs, t.get(r, "timestamp"))
	}
	if len(runs) == 0 {
		return ""
	}
	sort.Strings(runs)
	return runs[len(runs)-1]
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// runTime parses a run timestamp in loc. Runs are stamped in exchange time.
func runTime(run string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(util.RunTimestampLayout, run, loc)
	return t, err == nil
}
