package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anorlov/chatwire/internal/blob"
	"github.com/anorlov/chatwire/internal/config"
	"github.com/anorlov/chatwire/internal/core"
)

// NewServer builds the HTTP server hosting the WebSocket endpoint and the
// REST side endpoints.
func NewServer(hub *core.Hub, blobs blob.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	api := NewAPIHandlers(hub, blobs, logger)
	router.GET("/health", api.Health)
	router.GET("/api/messages", api.Messages)
	router.GET("/api/users", api.Users)
	router.GET("/uploads/:filename", api.Download)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
