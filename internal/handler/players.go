package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/service"
)

// PlayerHandler serves the public player directory.
type PlayerHandler struct {
	league *service.LeagueService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(league *service.LeagueService) *PlayerHandler {
	return &PlayerHandler{league: league}
}

// List handles GET /players?group=&search=.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	players, err := h.league.ListPlayers(r.Context(), q.Get("group"), q.Get("search"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// Get handles GET /players/{playerID}.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.league.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, detail)
}

// ByPhone handles GET /players/by-phone?country_code=&phone=.
func (h *PlayerHandler) ByPhone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	player, err := h.league.PlayerByPhone(r.Context(), q.Get("country_code"), q.Get("phone"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"player": player})
}
