package http

import (
	stdhttp "net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/chat"
	"github.com/chatapp/chatapp-server/internal/config"
	"github.com/chatapp/chatapp-server/internal/metrics"
	"github.com/chatapp/chatapp-server/internal/store"
)

// NewServer builds the HTTP server with the chat API, health and metrics
// routes.
func NewServer(svc *chat.Service, st store.Store, m *metrics.Metrics, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	chatHandlers := NewChatHandlers(svc, logger)
	healthHandlers := NewHealthHandlers(st, m, logger)
	metricsHandlers := NewMetricsHandlers(svc, logger)

	api := router.Group("/api")
	{
		api.POST("/chat/:room", chatHandlers.PostMessage)
		api.GET("/chat/:room", chatHandlers.GetTranscript)
		api.PUT("/chat/:room", chatHandlers.RenameUser)
		api.DELETE("/chat/:room", chatHandlers.ClearRoom)
	}

	router.GET("/health", healthHandlers.Check)
	router.GET("/metrics/json", metricsHandlers.JSON)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
