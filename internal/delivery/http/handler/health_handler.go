package handler

import (
	"context"
	"net/http"
	"time"

	"pet-adoption-marketplace/internal/logger"
	"pet-adoption-marketplace/internal/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Pinger checks a backing store. The in-memory backend has none.
type Pinger func(ctx context.Context) error

// GatewayStats is the part of the realtime gateway the health check reads.
type GatewayStats interface {
	Stats() realtime.Stats
}

type HealthHandler struct {
	ping    Pinger
	gateway GatewayStats
	started time.Time
}

func NewHealthHandler(ping Pinger, gateway GatewayStats) *HealthHandler {
	return &HealthHandler{ping: ping, gateway: gateway, started: time.Now()}
}

type healthResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Uptime   string          `json:"uptime"`
	Database string          `json:"database"`
	Realtime *realtime.Stats `json:"realtime,omitempty"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := healthResponse{
		Status:   "healthy",
		Message:  "Service is running",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: "ok",
	}
	if h.gateway != nil {
		stats := h.gateway.Stats()
		resp.Realtime = &stats
	}

	if h.ping == nil {
		resp.Database = "memory"
		c.JSON(http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Message = "Database connection failed"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}
