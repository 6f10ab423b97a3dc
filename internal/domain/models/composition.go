package models

import (
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/ticker"
)

// Composition is one row of the fund's published characteristics.
type Composition struct {
	FundDate          time.Time `json:"fund_date"`
	NearFuture        string    `json:"near_future"`
	FarFuture         string    `json:"far_future"`
	SharesNear        float64   `json:"shares_amount_near_future"`
	SharesFar         float64   `json:"shares_amount_far_future"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	CashComponent     float64   `json:"fund_cash_component"`
}

// Validate checks that near does not expire after far when resolved at ref.
func (c *Composition) Validate(ref time.Time) error {
	near, err := ticker.Resolve(c.NearFuture, ref)
	if err != nil {
		return err
	}
	far, err := ticker.Resolve(c.FarFuture, ref)
	if err != nil {
		return err
	}
	if far.Before(near) {
		return errs.InvalidData("composition", "near future %s expires after far future %s", near.Code(), far.Code())
	}
	return nil
}

// Legs prices the composition's two legs. Both tickers must be present in prices.
func (c *Composition) Legs(prices map[string]float64) ([]PricedLeg, error) {
	legs := make([]PricedLeg, 0, 2)
	for _, l := range []struct {
		ticker string
		weight float64
	}{
		{c.NearFuture, c.SharesNear},
		{c.FarFuture, c.SharesFar},
	} {
		p, ok := prices[l.ticker]
		if !ok {
			return nil, errs.MissingData("composition", "no price for %s", l.ticker)
		}
		legs = append(legs, PricedLeg{Ticker: l.ticker, Price: p, Weight: l.weight})
	}
	return legs, nil
}

// Tickers returns near and far, de-duplicated.
func (c *Composition) Tickers() []string {
	if c.NearFuture == c.FarFuture {
		return []string{c.NearFuture}
	}
	return []string{c.NearFuture, c.FarFuture}
}
