package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/handler"
	"github.com/smashpoint/league/internal/service"
)

// PlayerAdminHandler handles admin player management.
type PlayerAdminHandler struct {
	league *service.LeagueService
}

// NewPlayerAdminHandler creates a new PlayerAdminHandler.
func NewPlayerAdminHandler(league *service.LeagueService) *PlayerAdminHandler {
	return &PlayerAdminHandler{league: league}
}

// Create handles POST /admin/players.
func (h *PlayerAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.AdminPlayerInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}
	player, err := h.league.CreatePlayer(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, handler.OK("player", player))
}

// Update handles PUT /admin/players/{playerID}.
func (h *PlayerAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.AdminPlayerPatch
	if err := handler.DecodeJSON(r, &patch); err != nil {
		handler.RespondError(w, err)
		return
	}
	player, err := h.league.UpdatePlayer(r.Context(), chi.URLParam(r, "playerID"), patch)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("player", player))
}

// Delete handles DELETE /admin/players/{playerID}. Matches, bracket slots and the
// account of the player go with it.
func (h *PlayerAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.league.DeletePlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("removed", result))
}
