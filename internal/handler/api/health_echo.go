package api

import (
	"context"
	"net/http"
	"time"

	xhttp "VixNav/pkg/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthEchoHandler serves /health over the configured dependencies.
type HealthEchoHandler struct {
	deps map[string]Pinger
}

func NewHealthEchoHandler(deps map[string]Pinger) *HealthEchoHandler {
	return &HealthEchoHandler{deps: deps}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.deps))
	code := http.StatusOK
	for name, p := range h.deps {
		if err := p.Health(ctx); err != nil {
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	return xhttp.DataResponse(c, code, status)
}
