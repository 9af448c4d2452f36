package handler

import (
	"net/http"
	"strings"

	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/service"
)

// IdempotencyKeyHeader lets clients retry a match submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// MatchHandler serves the public match ledger, standings and bracket.
type MatchHandler struct {
	league *service.LeagueService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(league *service.LeagueService) *MatchHandler {
	return &MatchHandler{league: league}
}

// List handles GET /matches?season=&stage=.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches, err := h.league.ListMatches(r.Context(), q.Get("season"), q.Get("stage"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// Create handles POST /matches. The match is recorded as player-submitted.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in league.MatchInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	// only admins may attribute a match to someone else
	in.CreatedBy = ""

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	match, err := h.league.RecordMatch(r.Context(), in, key)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, OK("match", match))
}

// Standings handles GET /standings?season=&group=.
func (h *MatchHandler) Standings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	table, err := h.league.Standings(r.Context(), q.Get("season"), q.Get("group"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, table)
}

// Bracket handles GET /tournament?season=.
func (h *MatchHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	bracket, err := h.league.Bracket(r.Context(), r.URL.Query().Get("season"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bracket)
}
