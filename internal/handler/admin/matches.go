package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/handler"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/service"
)

// MatchAdminHandler handles admin edits of the match ledger and the bracket.
type MatchAdminHandler struct {
	league *service.LeagueService
}

// NewMatchAdminHandler creates a new MatchAdminHandler.
func NewMatchAdminHandler(league *service.LeagueService) *MatchAdminHandler {
	return &MatchAdminHandler{league: league}
}

// Create handles POST /admin/matches.
func (h *MatchAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in league.MatchInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}
	match, err := h.league.CreateMatch(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, handler.OK("match", match))
}

// Update handles PUT /admin/matches/{matchID}. The payload is merged over the stored match.
func (h *MatchAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch league.MatchPatch
	if err := handler.DecodeJSON(r, &patch); err != nil {
		handler.RespondError(w, err)
		return
	}
	match, err := h.league.UpdateMatch(r.Context(), chi.URLParam(r, "matchID"), patch)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("match", match))
}

// Delete handles DELETE /admin/matches/{matchID}.
func (h *MatchAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.league.DeleteMatch(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("", nil))
}

// UpsertTournamentMatch handles POST /admin/tournament/matches.
func (h *MatchAdminHandler) UpsertTournamentMatch(w http.ResponseWriter, r *http.Request) {
	var in service.TournamentInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}
	slot, err := h.league.UpsertTournamentMatch(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("match", slot))
}

// DeleteTournamentMatch handles DELETE /admin/tournament/matches/{tournamentMatchID}.
func (h *MatchAdminHandler) DeleteTournamentMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.league.DeleteTournamentMatch(r.Context(), chi.URLParam(r, "tournamentMatchID")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("", nil))
}
