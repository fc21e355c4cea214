package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/NomadCrew/cats-backend/config"
	"github.com/NomadCrew/cats-backend/middleware"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker produces the aggregated component report.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

type HealthHandler struct {
	healthService HealthChecker
	cfg           *config.Config
	startTime     time.Time
}

func NewHealthHandler(healthService HealthChecker, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		cfg:           cfg,
		startTime:     time.Now(),
	}
}

// Status godoc
// @Summary Service status
// @Tags health
// @Produce json
// @Success 200 {object} types.StandardResponse{data=types.StatusResponse}
// @Router /status [get]
func (h *HealthHandler) Status(c *gin.Context) {
	middleware.Respond(c, types.OK(types.StatusResponse{
		Service:     "cats-backend",
		Version:     h.cfg.Server.Version,
		Environment: string(h.cfg.Server.Environment),
		Database:    h.cfg.Database.Enabled,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// LivenessCheck handles kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck handles kubernetes readiness probe
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth godoc
// @Summary Component health report
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}
