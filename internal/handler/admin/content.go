package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smashpoint/league/internal/handler"
	"github.com/smashpoint/league/internal/service"
)

// ContentAdminHandler handles news publishing and community moderation.
type ContentAdminHandler struct {
	league *service.LeagueService
}

// NewContentAdminHandler creates a new ContentAdminHandler.
func NewContentAdminHandler(league *service.LeagueService) *ContentAdminHandler {
	return &ContentAdminHandler{league: league}
}

// CreateNews handles POST /admin/news.
func (h *ContentAdminHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var in service.NewsInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}
	item, err := h.league.CreateNews(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, handler.OK("news", item))
}

// DeleteNews handles DELETE /admin/news/{newsID}.
func (h *ContentAdminHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := h.league.DeleteNews(r.Context(), chi.URLParam(r, "newsID")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("", nil))
}

// DeletePost handles DELETE /admin/community/{postID}.
func (h *ContentAdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.league.DeletePost(r.Context(), chi.URLParam(r, "postID")); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, handler.OK("", nil))
}
