package models

import (
	"time"

	"VixNav/internal/domain/pricelimit"
)

// NAVEstimate is one estimated NAV run.
type NAVEstimate struct {
	Timestamp         string    `json:"timestamp"` // YYYYMMDDHHMM
	CalculationDate   string    `json:"calculation_date"`
	CalculatedAt      time.Time `json:"calculated_at"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	SharesNear        float64   `json:"shares_near_future"`
	SharesFar         float64   `json:"shares_far_future"`
	Cash              float64   `json:"fund_cash_component"`
	NearFuture        string    `json:"near_future"`
	NearPrice         float64   `json:"near_future_price"`
	FarFuture         string    `json:"far_future"`
	FarPrice          float64   `json:"far_future_price"`
	FXRate            float64   `json:"usd_jpy_rate"`
	FuturesValueUSD   float64   `json:"futures_value_usd"`
	EstimatedNAV      float64   `json:"estimated_nav_jpy"`
	PublishedNAV      *float64  `json:"published_nav,omitempty"`
	Difference        *float64  `json:"nav_difference,omitempty"`
	DifferencePct     *float64  `json:"nav_difference_pct,omitempty"`
}

// CheckResult is one alerter evaluation.
type CheckResult struct {
	Time         time.Time           `json:"time"`
	Fund         string              `json:"fund"`
	Closing      ClosingPrice        `json:"closing"`
	Band         pricelimit.Band     `json:"band"`
	Decision     pricelimit.Decision `json:"decision"`
	InitialValue float64             `json:"initial_value"`
	CurrentValue float64             `json:"current_value"`
	NAVPerShare  float64             `json:"nav_per_share"`
	Alert        *Alert              `json:"alert,omitempty"`
}
