package admin

import (
	"net/http"

	"github.com/smashpoint/league/internal/handler"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/service"
)

// DashboardHandler serves the admin overview.
type DashboardHandler struct {
	league *service.LeagueService
	gate   *ledger.Gate
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(league *service.LeagueService, gate *ledger.Gate) *DashboardHandler {
	return &DashboardHandler{league: league, gate: gate}
}

// Dashboard handles GET /admin/dashboard.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.league.Dashboard(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, dash)
}

// Integrity handles GET /admin/integrity and reports the referential checks
// over the current document.
func (h *DashboardHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	doc, err := h.gate.Snapshot(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	report := ledger.CheckIntegrity(doc)
	status := http.StatusOK
	if !report.AllPassed {
		status = http.StatusConflict
	}
	handler.RespondJSON(w, status, report)
}
