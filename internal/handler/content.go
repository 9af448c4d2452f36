package handler

import (
	"net/http"

	"github.com/smashpoint/league/internal/service"
)

// ContentHandler serves news and the community board.
type ContentHandler struct {
	league *service.LeagueService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(league *service.LeagueService) *ContentHandler {
	return &ContentHandler{league: league}
}

// News handles GET /news?category=&search=.
func (h *ContentHandler) News(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.league.ListNews(r.Context(), q.Get("category"), q.Get("search"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"news": items})
}

// Community handles GET /community?search=.
func (h *ContentHandler) Community(w http.ResponseWriter, r *http.Request) {
	posts, err := h.league.ListCommunity(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// CreatePost handles POST /community.
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	post, err := h.league.CreatePost(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, OK("post", post))
}
