package repository

import (
	"context"
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

const CompositionMaster = "etf_characteristics_master.csv"

var (
	nearColumns       = []string{"near_future", "near_future_code"}
	farColumns        = []string{"far_future", "far_future_code"}
	sharesNearColumns = []string{"shares_amount_near_future", "shares_near_future", "shares_near"}
	sharesFarColumns  = []string{"shares_amount_far_future", "shares_far_future", "shares_far"}
)

// CompositionCSV reads the fund characteristics master.
type CompositionCSV struct {
	store          *MasterCSV
	sharesFallback float64
}

var _ repository.CompositionStore = (*CompositionCSV)(nil)

// NewCompositionCSV creates the reader. sharesFallback is used when a row lacks shares outstanding.
func NewCompositionCSV(store *MasterCSV, sharesFallback float64) *CompositionCSV {
	return &CompositionCSV{store: store, sharesFallback: sharesFallback}
}

// Latest returns the row with the greatest fund_date on or before asOf's Tokyo calendar day.
func (c *CompositionCSV) Latest(_ context.Context, asOf time.Time) (*models.Composition, error) {
	const op = "latest composition"

	t, err := c.store.read(CompositionMaster)
	if err != nil {
		return nil, err
	}

	nearCol, okNear := t.column(nearColumns...)
	farCol, okFar := t.column(farColumns...)
	snCol, okSN := t.column(sharesNearColumns...)
	sfCol, okSF := t.column(sharesFarColumns...)
	var missing []string
	for name, ok := range map[string]bool{
		"fund_date":   t.has("fund_date"),
		"near_future": okNear,
		"far_future":  okFar,
		"shares_near": okSN,
		"shares_far":  okSF,
	} {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errs.InvalidData(op, "%s is missing columns %s", CompositionMaster, strings.Join(missing, ", "))
	}

	cutoff := util.EndOfDay(asOf.In(pricelimit.JST))
	var best []string
	var bestDate time.Time
	var bestRun string
	for _, r := range t.rows {
		d, ok := util.ParseDate(t.get(r, "fund_date"), pricelimit.JST)
		if !ok || d.After(cutoff) {
			continue
		}
		run := t.get(r, "timestamp")
		if best == nil || d.After(bestDate) || (d.Equal(bestDate) && run > bestRun) {
			best, bestDate, bestRun = r, d, run
		}
	}
	if best == nil {
		return nil, errs.MissingData(op, "no composition on or before %s", asOf.In(pricelimit.JST).Format(util.DateLayout))
	}

	near, err := ticker.Normalize(t.get(best, nearCol))
	if err != nil {
		return nil, errs.InvalidData(op, "near future %q", t.get(best, nearCol)).Wrap(err)
	}
	far, err := ticker.Normalize(t.get(best, farCol))
	if err != nil {
		return nil, errs.InvalidData(op, "far future %q", t.get(best, farCol)).Wrap(err)
	}

	comp := &models.Composition{
		FundDate:   bestDate,
		NearFuture: near,
		FarFuture:  far,
	}
	if comp.SharesNear, err = parseNumber(t.get(best, snCol)); err != nil {
		return nil, errs.InvalidData(op, "shares near %q", t.get(best, snCol))
	}
	if comp.SharesFar, err = parseNumber(t.get(best, sfCol)); err != nil {
		return nil, errs.InvalidData(op, "shares far %q", t.get(best, sfCol))
	}
	if v := t.get(best, "fund_cash_component"); v != "" {
		if comp.CashComponent, err = parseNumber(v); err != nil {
			return nil, errs.InvalidData(op, "cash component %q", v)
		}
	}
	if v := t.get(best, "shares_outstanding"); v != "" {
		if comp.SharesOutstanding, err = parseNumber(v); err != nil {
			return nil, errs.InvalidData(op, "shares outstanding %q", v)
		}
	}
	if comp.SharesOutstanding <= 0 {
		comp.SharesOutstanding = c.sharesFallback
	}
	return comp, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}
