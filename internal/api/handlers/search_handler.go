package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Retriva/internal/models"
	"github.com/markdave123-py/Retriva/internal/services"
)

// Searcher is the subset of the search service the handler depends on.
type Searcher interface {
	Search(ctx context.Context, userID, collectionID, query string, page, pageSize int) (*models.SearchResponse, error)
}

type SearchHandler struct {
	search Searcher
}

func NewSearchHandler(search Searcher) *SearchHandler {
	return &SearchHandler{search: search}
}

// Limit is a pointer so a missing field gets the default while an explicit
// zero is passed through and rejected by validation.
type searchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
	Limit *int   `json:"limit"`
}

func (r searchRequest) limit() int {
	if r.Limit == nil {
		return services.DefaultPageSize
	}
	return *r.Limit
}

func (h *SearchHandler) SearchCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}

	collectionID := chi.URLParam(r, "collectionID")

	resp, err := h.search.Search(r.Context(), userID, collectionID, req.Query, req.Page, req.limit())
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			writeSearchError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		writeSearchError(w, http.StatusInternalServerError, "search failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeSearchError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.SearchResponse{
		Success: false,
		Error:   msg,
	})
}
