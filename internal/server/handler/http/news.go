package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/akarpov/newsline/internal/middleware"
	"github.com/akarpov/newsline/internal/models"

	"github.com/go-chi/chi/v5"
)

// ContentService defines the news operations required by the HTTP handlers.
type ContentService interface {
	// Submit stores a news item; created=false means the url was already
	// posted and the existing item's id is returned instead.
	Submit(ctx context.Context, title, url, text string, authorID int64) (id int64, created bool, err error)
	// Get returns the news item with the given id.
	Get(ctx context.Context, id int64) (*models.News, error)
}

// NewsHandler handles HTTP requests for news submission and lookup.
type NewsHandler struct {
	// Content performs the underlying news operations.
	Content ContentService
}

// submitRequest represents the JSON payload for news submission.
type submitRequest struct {
	// Title is the headline; required.
	Title string `json:"title"`
	// URL is the linked address; empty for self-posts.
	URL string `json:"url"`
	// Text is the self-post body; ignored when URL is set.
	Text string `json:"text"`
}

// Submit handles authenticated news submission. The response carries the
// item id and whether a new record was created; a resubmitted url returns
// the original item's id with created=false.
func (h *NewsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeErr(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request")
		return
	}

	id, created, err := h.Content.Submit(r.Context(), req.Title, req.URL, req.Text, u.ID)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeErr(w, http.StatusBadRequest, "Please specify a news title and address or text.")
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"news_id": id,
		"created": created,
	})
}

// Get returns a news item by id.
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid news id")
		return
	}

	n, err := h.Content.Get(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErr(w, http.StatusNotFound, "No such news item.")
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"id":        n.ID,
		"title":     n.Title,
		"url":       n.URL,
		"author_id": n.AuthorID,
		"ctime":     n.CTime,
		"score":     n.Score,
		"rank":      n.Rank,
	})
}
