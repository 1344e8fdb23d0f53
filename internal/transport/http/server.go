// Package http is the optional admin gateway: health and registry
// inspection endpoints plus a WebSocket bridge to the line protocol.
package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/transport/session"
)

// Hub is what the gateway needs from core.Hub.
type Hub interface {
	session.Hub
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// NewServer builds the gateway HTTP server bound to cfg.AdminAddr.
func NewServer(hub Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           NewHandler(hub, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewHandler mounts the WebSocket bridge next to the gin router. The upgrade
// hijacks the connection, which gin's response writer does not allow, so /ws
// bypasses the engine.
func NewHandler(hub Hub, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.SessionQueueSize, logger))
	mux.Handle("/", NewRouter(hub, logger))
	return mux
}

// NewRouter registers the admin routes.
func NewRouter(hub Hub, logger *zerolog.Logger) *gin.Engine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	admin := NewAdminHandlers(hub, logger)
	router.GET("/health", admin.Health)
	router.GET("/rooms", admin.Rooms)
	router.GET("/stats", admin.Stats)

	return router
}
