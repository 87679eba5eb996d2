// Package http hosts the HTTP surface of the server: health checks, the
// REST account endpoints and the WebSocket route bridging frames into the
// dispatch pipeline.
package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/command"
	"github.com/mkarpis/hivechat-server/internal/config"
)

// NewServer builds the HTTP server with all routes registered. The account
// handlers may be nil when no user store is configured; the REST endpoints
// are then not mounted.
func NewServer(processor *command.Processor, communities *chat.CommunityManager, accounts *AccountHandlers, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	if accounts != nil {
		api := router.Group("/api")
		api.POST("/register", accounts.Register)
		api.POST("/login", accounts.Login)
	}

	ws := NewWSHandler(processor, communities, logger)
	router.GET("/ws", gin.WrapH(ws))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
