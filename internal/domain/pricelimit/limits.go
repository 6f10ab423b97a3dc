// Package pricelimit implements the Tokyo Stock Exchange daily price-limit
// table and the basket breach check built on it.
package pricelimit

import (
	"math"

	"VixNav/internal/domain/errs"
)

type row struct {
	threshold float64 // exclusive upper bound on the reference price
	width     float64
}

// table is ascending; the last row catches everything above 50,000,000.
var table = [...]row{
	{100, 30},
	{200, 50},
	{500, 80},
	{700, 100},
	{1000, 150},
	{1500, 300},
	{2000, 400},
	{3000, 500},
	{5000, 700},
	{7000, 1000},
	{10000, 1500},
	{15000, 3000},
	{20000, 4000},
	{30000, 5000},
	{50000, 7000},
	{70000, 10000},
	{100000, 15000},
	{150000, 30000},
	{200000, 40000},
	{300000, 50000},
	{500000, 70000},
	{700000, 100000},
	{1000000, 150000},
	{1500000, 300000},
	{2000000, 400000},
	{3000000, 500000},
	{5000000, 700000},
	{7000000, 1000000},
	{10000000, 1500000},
	{15000000, 3000000},
	{20000000, 4000000},
	{30000000, 5000000},
	{50000000, 7000000},
	{math.Inf(1), 10000000},
}

// Band is the permitted trading range for the next session.
type Band struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Width float64 `json:"width"`
}

// IsZero reports whether b was never computed.
func (b Band) IsZero() bool {
	return b.Lower == 0 && b.Upper == 0
}

// WidthFor returns the limit width for a reference price.
func WidthFor(closing float64) (float64, error) {
	if !(closing > 0) || math.IsInf(closing, 1) {
		return 0, errs.InvalidInput("price limit", "closing price must be positive, got %v", closing)
	}
	for _, r := range table {
		if closing < r.threshold {
			return r.width, nil
		}
	}
	return table[len(table)-1].width, nil
}

// BandFor derives the next session's limit band from a closing price.
func BandFor(closing float64) (Band, error) {
	w, err := WidthFor(closing)
	if err != nil {
		return Band{}, err
	}
	return Band{
		Lower: math.Max(1, closing-w),
		Upper: closing + w,
		Width: w,
	}, nil
}
