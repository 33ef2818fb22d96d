package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/metrics"
	"github.com/chatapp/chatapp-server/internal/store"
)

const healthTimestampFormat = "2006-01-02 15:04:05 UTC"

// HealthHandlers provides the health check endpoint.
type HealthHandlers struct {
	store   store.Store
	metrics *metrics.Metrics
	log     *zerolog.Logger
}

// NewHealthHandlers creates a new health handlers instance.
func NewHealthHandlers(st store.Store, m *metrics.Metrics, logger *zerolog.Logger) *HealthHandlers {
	return &HealthHandlers{
		store:   st,
		metrics: m,
		log:     logger,
	}
}

// Check verifies store reachability with a trivial round-trip query.
// GET /health
func (h *HealthHandlers) Check(c *gin.Context) {
	timestamp := time.Now().UTC().Format(healthTimestampFormat)

	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.metrics.SetDatabaseConnected(false)
		h.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     err.Error(),
			"timestamp": timestamp,
			"service":   "chatapp",
		})
		return
	}

	h.metrics.SetDatabaseConnected(true)
	h.log.Debug().Msg("health check passed")
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": timestamp,
		"service":   "chatapp",
	})
}
