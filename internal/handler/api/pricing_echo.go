package api

import (
	"math"
	"time"

	"VixNav/internal/domain/errs"
	"VixNav/internal/domain/models"
	"VixNav/internal/domain/pricelimit"
	"VixNav/internal/domain/ticker"
	"VixNav/internal/domain/valuation"
	"VixNav/internal/service/ratelimit"
	"VixNav/internal/usecase"
	xhttp "VixNav/pkg/http"
	xlogger "VixNav/pkg/logger"
	"VixNav/pkg/util"

	"github.com/labstack/echo/v4"
)

// RateLimit configures the per-client token bucket on /api.
type RateLimit struct {
	Capacity     float64
	RefillPerSec float64
}

// PricingEchoHandler exposes the ticker, limit and basket calculations over HTTP.
type PricingEchoHandler struct {
	logger    *xlogger.Logger
	contracts *usecase.Contracts
	limiter   *ratelimit.Limiter
	rate      RateLimit
	now       func() time.Time
}

// NewPricingEchoHandler creates the handler. limiter may be nil to disable rate limiting.
func NewPricingEchoHandler(logger *xlogger.Logger, contracts *usecase.Contracts, limiter *ratelimit.Limiter, rate RateLimit) *PricingEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PricingEchoHandler{logger: logger, contracts: contracts, limiter: limiter, rate: rate, now: time.Now}
}

func (h *PricingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil && h.rate.Capacity > 0 {
		g.Use(h.limiter.Middleware(h.rate.Capacity, h.rate.RefillPerSec))
	}
	g.GET("/contracts/normalize", h.Normalize)
	g.GET("/contracts/resolve", h.Resolve)
	g.GET("/contracts/targets", h.Targets)
	g.GET("/limits", h.Limits)
	g.POST("/basket", h.Basket)
	g.POST("/breach", h.Breach)
}

func (h *PricingEchoHandler) Normalize(c echo.Context) error {
	req := &models.NormalizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	norm, err := ticker.Normalize(req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	broker, _ := ticker.ToBrokerNotation(norm)
	exchange, _ := ticker.ToExchangeNotation(norm)
	return xhttp.SuccessResponse(c, models.NormalizeResponse{
		Ticker:     req.Ticker,
		Normalized: norm,
		Broker:     broker,
		Exchange:   exchange,
	})
}

func (h *PricingEchoHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ref, err := h.refDate(req.Date)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	norm, err := ticker.Normalize(req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	contract, err := ticker.ResolveContractYear(norm, ref)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	yahoo, err := ticker.YahooSymbol(norm, ref)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.ResolveResponse{Normalized: norm, Contract: contract, Yahoo: yahoo})
}

func (h *PricingEchoHandler) Targets(c echo.Context) error {
	req := &models.TargetsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	asOf, err := h.refDate(req.Date)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	targets, err := h.contracts.Targets(c.Request().Context(), asOf)
	if err != nil {
		h.logger.Error("targets usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.TargetsResponse{AsOf: asOf.Format(util.DateLayout), Targets: targets})
}

func (h *PricingEchoHandler) Limits(c echo.Context) error {
	req := &models.LimitsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	band, err := pricelimit.BandFor(req.Close)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, models.LimitsResponse{Close: req.Close, Lower: band.Lower, Upper: band.Upper, Width: band.Width})
}

func (h *PricingEchoHandler) Basket(c echo.Context) error {
	req := &models.BasketRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	legs := make([]models.PricedLeg, 0, len(req.Legs))
	for _, l := range req.Legs {
		norm, err := ticker.Normalize(l.Ticker)
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		legs = append(legs, models.PricedLeg{Ticker: norm, Price: l.Price, Weight: l.Weight})
	}
	jpy, err := valuation.BasketValue(legs, req.FX)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	usd, _ := valuation.USDValue(legs)
	return xhttp.SuccessResponse(c, models.BasketResponse{USD: usd, JPY: jpy})
}

func (h *PricingEchoHandler) Breach(c echo.Context) error {
	req := &models.BreachRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	band, err := pricelimit.BandFor(req.Close)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	d, err := pricelimit.CheckBreach(valueOrNaN(req.Current), valueOrNaN(req.Initial), band, req.Close)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.BreachResponse{Band: band, Decision: d})
}

// refDate parses an optional YYYY-MM-DD in Tokyo time, defaulting to now.
func (h *PricingEchoHandler) refDate(s string) (time.Time, error) {
	if s == "" {
		return h.now().In(pricelimit.JST), nil
	}
	t, ok := util.ParseDate(s, pricelimit.JST)
	if !ok {
		return time.Time{}, errs.InvalidInput("date", "cannot parse %q", s)
	}
	return t, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
