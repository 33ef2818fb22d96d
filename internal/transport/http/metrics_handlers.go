package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/chat"
	"github.com/chatapp/chatapp-server/internal/store"
)

// MetricsHandlers provides the JSON usage-metrics endpoint.
type MetricsHandlers struct {
	svc *chat.Service
	log *zerolog.Logger
}

// NewMetricsHandlers creates a new metrics handlers instance.
func NewMetricsHandlers(svc *chat.Service, logger *zerolog.Logger) *MetricsHandlers {
	return &MetricsHandlers{
		svc: svc,
		log: logger,
	}
}

// SystemHealth reports store status inside the metrics payload.
type SystemHealth struct {
	DatabaseStatus string `json:"database_status"`
	TotalRecords   int64  `json:"total_records"`
}

// UsageStats is the aggregated usage section of the metrics payload.
type UsageStats struct {
	TotalMessages      int64   `json:"total_messages"`
	TotalRooms         int64   `json:"total_rooms"`
	TotalUsers         int64   `json:"total_users"`
	MessagesToday      int64   `json:"messages_today"`
	ActiveUsersToday   int64   `json:"active_users_today"`
	RecentMessages7d   int64   `json:"recent_messages_7d"`
	AvgMessagesPerRoom float64 `json:"avg_messages_per_room"`
	AvgMessagesPerUser float64 `json:"avg_messages_per_user"`
}

// MetricsResponse is the full metrics payload.
type MetricsResponse struct {
	Timestamp    string            `json:"timestamp"`
	SystemHealth SystemHealth      `json:"system_health"`
	UsageStats   UsageStats        `json:"usage_stats"`
	TopRooms     []store.RoomCount `json:"top_rooms"`
	TopUsers     []store.UserCount `json:"top_users"`
}

// JSON serves the aggregated usage metrics, recomputed on every call.
// GET /metrics/json
func (h *MetricsHandlers) JSON(c *gin.Context) {
	now := time.Now().UTC()

	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("metrics endpoint failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"timestamp": now.Format(time.RFC3339),
			"system_health": gin.H{
				"database_status": "error",
				"error":           err.Error(),
			},
			"usage_stats": gin.H{},
			"top_rooms":   []store.RoomCount{},
			"top_users":   []store.UserCount{},
		})
		return
	}

	h.log.Info().
		Int64("total_messages", stats.TotalMessages).
		Int64("total_rooms", stats.TotalRooms).
		Int64("total_users", stats.TotalUsers).
		Msg("metrics endpoint accessed")

	c.JSON(http.StatusOK, MetricsResponse{
		Timestamp: now.Format(time.RFC3339),
		SystemHealth: SystemHealth{
			DatabaseStatus: "connected",
			TotalRecords:   stats.TotalMessages,
		},
		UsageStats: UsageStats{
			TotalMessages:      stats.TotalMessages,
			TotalRooms:         stats.TotalRooms,
			TotalUsers:         stats.TotalUsers,
			MessagesToday:      stats.MessagesToday,
			ActiveUsersToday:   stats.ActiveUsersToday,
			RecentMessages7d:   stats.RecentMessages7d,
			AvgMessagesPerRoom: stats.AvgPerRoom,
			AvgMessagesPerUser: stats.AvgPerUser,
		},
		TopRooms: stats.TopRooms,
		TopUsers: stats.TopUsers,
	})
}
