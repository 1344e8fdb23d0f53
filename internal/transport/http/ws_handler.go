package http

import (
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/transport/session"
)

// WSHandler upgrades HTTP connections and runs the line protocol over
// WebSocket text frames. Frame boundaries carry no meaning: lines are still
// LF-terminated.
type WSHandler struct {
	hub       session.Hub
	queueSize int
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub session.Hub, queueSize int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, queueSize: queueSize, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	ctx := r.Context()
	netConn := websocket.NetConn(ctx, conn, websocket.MessageText)

	h.log.Info().Str("remote_addr", r.RemoteAddr).Msg("ws client connected")
	if err := session.Serve(ctx, netConn, h.hub, h.queueSize, h.log); err != nil {
		h.log.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("ws session ended with error")
	}
	h.log.Info().Str("remote_addr", r.RemoteAddr).Msg("ws client disconnected")
}
