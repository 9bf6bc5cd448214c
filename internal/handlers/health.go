package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Probe checks one dependency; nil means healthy.
type Probe func(ctx context.Context) error

// HealthHandler serves liveness and readiness checks
type HealthHandler struct {
	probes map[string]Probe
}

func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

func (h *HealthHandler) RegisterHealthRoutes(e *echo.Echo) {
	e.GET("/health", h.Live)
	e.GET("/health/ready", h.Ready)
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "campushub-api",
	})
}

// Ready runs every probe; any failure makes the instance not ready
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	return c.JSON(status, echo.Map{"ready": status == http.StatusOK, "checks": checks})
}
