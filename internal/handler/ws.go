package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/smashpoint/league/internal/infra"
)

// WSHandler upgrades clients onto the live ledger feed.
type WSHandler struct {
	hub      *infra.WSHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a WSHandler. allowedOrigins follows the CORS setting.
func NewWSHandler(hub *infra.WSHub, allowedOrigins string, logger *slog.Logger) *WSHandler {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return &WSHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve handles GET /ws?season=. Every client hears league-wide events; naming a season
// also subscribes to that season's room.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rooms := []string{infra.RoomLeague}
	if season := strings.TrimSpace(r.URL.Query().Get("season")); season != "" {
		rooms = append(rooms, infra.SeasonRoom(season))
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Warn("websocket upgrade failed", "error", err, "request_id", GetRequestID(r.Context()))
		return
	}
	h.hub.Serve(ws, rooms)
}
