package pricelimit

import (
	"math"

	"VixNav/internal/domain/errs"
)

// Decision is the outcome of comparing a basket move to the limit band.
type Decision struct {
	Breach          bool    `json:"breach"`
	ChangePct       float64 `json:"change_pct"`
	AllowedLowerPct float64 `json:"allowed_lower_pct"`
	AllowedUpperPct float64 `json:"allowed_upper_pct"`
}

// CheckBreach maps the basket's percentage move onto the band's percentage
// range around closing. The boundary itself is not a breach.
func CheckBreach(current, initial float64, band Band, closing float64) (Decision, error) {
	switch {
	case math.IsNaN(current):
		return Decision{}, errs.MissingData("check breach", "current value is missing")
	case math.IsNaN(initial):
		return Decision{}, errs.MissingData("check breach", "initial value is missing")
	case band.IsZero():
		return Decision{}, errs.MissingData("check breach", "price limits are missing")
	case math.IsNaN(closing) || closing <= 0:
		return Decision{}, errs.MissingData("check breach", "closing price is missing")
	case initial == 0:
		return Decision{}, errs.InvalidData("check breach", "initial value is zero")
	}

	d := Decision{
		ChangePct:       (current - initial) / initial,
		AllowedLowerPct: (band.Lower - closing) / closing,
		AllowedUpperPct: (band.Upper - closing) / closing,
	}
	d.Breach = d.ChangePct < d.AllowedLowerPct || d.ChangePct > d.AllowedUpperPct
	return d, nil
}
