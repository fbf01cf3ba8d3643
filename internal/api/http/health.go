package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Fallback  string    `json:"fallback,omitempty"`
}

// Pinger probes a backing store. Both fallback backends implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	serviceName string
	version     string
	fallback    Pinger
}

func NewHealthHandler(serviceName, version string, fallback Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		fallback:    fallback,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	fallbackStatus := "disabled"
	if h.fallback != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.fallback.Ping(pingCtx); err != nil {
			fallbackStatus = "down"
		} else {
			fallbackStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Fallback:  fallbackStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
