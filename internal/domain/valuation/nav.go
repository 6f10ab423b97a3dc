package valuation

import (
	"math"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
)

// NAVInput carries everything needed for an estimated NAV.
type NAVInput struct {
	Legs              []models.PricedLeg
	FXRate            float64
	Cash              float64 // JPY
	SharesOutstanding float64
	PublishedNAV      *float64
}

// NAVResult is the estimate plus its comparison to the published NAV.
type NAVResult struct {
	FuturesValueUSD float64
	EstimatedNAV    float64
	Difference      *float64
	DifferencePct   *float64
}

// EstimateNAV computes (futures_usd * fx + cash) / shares_outstanding.
func EstimateNAV(in NAVInput) (NAVResult, error) {
	if !positive(in.FXRate) {
		return NAVResult{}, errs.InvalidData("nav", "fx rate must be positive, got %v", in.FXRate)
	}
	if !positive(in.SharesOutstanding) {
		return NAVResult{}, errs.InvalidData("nav", "shares outstanding must be positive, got %v", in.SharesOutstanding)
	}
	if math.IsNaN(in.Cash) || math.IsInf(in.Cash, 0) {
		return NAVResult{}, errs.InvalidData("nav", "cash component is not finite")
	}
	usd, err := USDValue(in.Legs)
	if err != nil {
		return NAVResult{}, err
	}

	res := NAVResult{
		FuturesValueUSD: usd,
		EstimatedNAV:    (usd*in.FXRate + in.Cash) / in.SharesOutstanding,
	}
	if in.PublishedNAV != nil && *in.PublishedNAV != 0 {
		diff := res.EstimatedNAV - *in.PublishedNAV
		pct := diff / *in.PublishedNAV * 100
		res.Difference = &diff
		res.DifferencePct = &pct
	}
	return res, nil
}
