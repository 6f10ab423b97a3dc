// Package valuation prices the fund's futures basket in yen.
package valuation

import (
	"math"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
)

// ContractMultiplier converts VIX index points to USD per contract.
const ContractMultiplier = 1000

// USDValue sums price * weight * multiplier over legs.
func USDValue(legs []models.PricedLeg) (float64, error) {
	if len(legs) == 0 {
		return 0, errs.InvalidData("basket", "no legs")
	}
	var usd float64
	for _, l := range legs {
		if !positive(l.Price) {
			return 0, errs.InvalidData("basket", "leg %s: price must be positive, got %v", l.Ticker, l.Price)
		}
		if !positive(l.Weight) {
			return 0, errs.InvalidData("basket", "leg %s: weight must be positive, got %v", l.Ticker, l.Weight)
		}
		usd += l.Price * l.Weight * ContractMultiplier
	}
	return usd, nil
}

// BasketValue returns the JPY value of legs at fx (JPY per USD). No rounding is applied.
func BasketValue(legs []models.PricedLeg, fx float64) (float64, error) {
	if !positive(fx) {
		return 0, errs.InvalidData("basket", "fx rate must be positive, got %v", fx)
	}
	usd, err := USDValue(legs)
	if err != nil {
		return 0, err
	}
	return usd * fx, nil
}

// NAVPerShare divides a basket value across the fund's outstanding shares.
func NAVPerShare(basket, sharesOutstanding float64) (float64, error) {
	if !positive(sharesOutstanding) {
		return 0, errs.InvalidData("nav", "shares outstanding must be positive, got %v", sharesOutstanding)
	}
	return basket / sharesOutstanding, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
