package models

import "time"

// PricedLeg is one futures leg of the basket.
type PricedLeg struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`  // USD settlement or last
	Weight float64 `json:"weight"` // contracts held
}

// FuturesQuote is a single futures price observation.
type FuturesQuote struct {
	Ticker string    `json:"ticker"` // normalized
	Source string    `json:"source"`
	Symbol string    `json:"symbol"` // vendor symbol as queried
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// FXQuote is a JPY per USD observation.
type FXQuote struct {
	Pair   string    `json:"pair"`
	Label  string    `json:"label,omitempty"`
	Rate   float64   `json:"rate"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
}

// ClosingPrice is the listed fund's reference close.
type ClosingPrice struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// PriceSample groups every leg price captured in one collection run.
type PriceSample struct {
	Date      string             `json:"date"`      // YYYY-MM-DD
	Timestamp string             `json:"timestamp"` // run id, YYYYMMDDHHMM
	Legs      map[string]float64 `json:"legs"`      // source key -> price
}

// NewPriceSample creates an empty sample for a run.
func NewPriceSample(runAt time.Time) *PriceSample {
	return &PriceSample{
		Date:      runAt.Format("2006-01-02"),
		Timestamp: runAt.Format("200601021504"),
		Legs:      make(map[string]float64),
	}
}
