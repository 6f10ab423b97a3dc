package models

import "VixNav/internal/domain/pricelimit"

// Requests for the pricing HTTP endpoints. Defined in domain for reuse by handlers and tests.

type NormalizeRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,max=32"`
}

type ResolveRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,vxticker"`
	Date   string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type LimitsRequest struct {
	Close float64 `query:"close" json:"close" validate:"required,gt=0"`
}

type BasketLegRequest struct {
	Ticker string  `json:"ticker" validate:"required"`
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

type BasketRequest struct {
	Legs []BasketLegRequest `json:"legs" validate:"dive"`
	FX   float64            `json:"fx"`
}

// BreachRequest leaves absent values nil so they are reported as missing.
type BreachRequest struct {
	Current *float64 `json:"current"`
	Initial *float64 `json:"initial"`
	Close   float64  `json:"close" validate:"required,gt=0"`
}

type TargetsRequest struct {
	Date string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type LimitsResponse struct {
	Close float64 `json:"close"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Width float64 `json:"width"`
}

type BasketResponse struct {
	USD float64 `json:"usd"`
	JPY float64 `json:"jpy"`
}

type NormalizeResponse struct {
	Ticker     string `json:"ticker"`
	Normalized string `json:"normalized"`
	Broker     string `json:"broker"`
	Exchange   string `json:"exchange"`
}

type BreachResponse struct {
	Band     pricelimit.Band     `json:"band"`
	Decision pricelimit.Decision `json:"decision"`
}

type TargetsResponse struct {
	AsOf    string   `json:"as_of"`
	Targets []string `json:"targets"`
}

type ResolveResponse struct {
	Normalized string `json:"normalized"`
	Contract   string `json:"contract"`
	Yahoo      string `json:"yahoo"`
}
