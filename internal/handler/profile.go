package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/auth"
	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/service"
)

// ProfileHandler serves player profiles.
type ProfileHandler struct {
	league *service.LeagueService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(league *service.LeagueService) *ProfileHandler {
	return &ProfileHandler{league: league}
}

// Get handles GET /profile?player_id=.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.league.GetProfile(r.Context(), r.URL.Query().Get("player_id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// Update handles PUT /profile/{playerID}. A player may only edit their own profile;
// the admin token may edit any.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if !auth.IsAdmin(r.Context()) && auth.SubjectFromContext(r.Context()) != playerID {
		RespondError(w, domain.ErrForbidden("cannot edit another player's profile"))
		return
	}

	var in service.ProfileInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	updated, err := h.league.UpdateProfile(r.Context(), playerID, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"player":  updated.Player,
		"account": updated.Account,
	})
}
