package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
)

// AdminHandlers exposes read-only views of the hub.
type AdminHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(hub Hub, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomsResponse lists rooms with their members.
type RoomsResponse struct {
	Rooms []core.RoomSnapshot `json:"rooms"`
}

// StatsResponse summarises the registry.
type StatsResponse struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
	Members  int `json:"members"`
}

// Health reports liveness.
// GET /health
func (h *AdminHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Rooms lists every room in creation order.
// GET /rooms
func (h *AdminHandlers) Rooms(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, RoomsResponse{Rooms: snap.Rooms})
}

// Stats returns registry counters.
// GET /stats
func (h *AdminHandlers) Stats(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	members := 0
	for _, room := range snap.Rooms {
		members += len(room.Members)
	}
	c.JSON(http.StatusOK, StatsResponse{
		Sessions: snap.Sessions,
		Rooms:    len(snap.Rooms),
		Members:  members,
	})
}

func (h *AdminHandlers) snapshot(c *gin.Context) (core.Snapshot, bool) {
	snap, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("hub snapshot failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return core.Snapshot{}, false
	}
	if snap.Rooms == nil {
		snap.Rooms = []core.RoomSnapshot{}
	}
	return snap, true
}
