package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/services"
)

type ChatHandler struct {
	search Searcher
	llm    core.LLMProvider
}

func NewChatHandler(search Searcher, llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{search: search, llm: llm}
}

type chatRequest struct {
	Query string `json:"query"`
}

const chatContextChunks = 5

// QueryCollection retrieves the best-matching chunks from a collection and
// asks the LLM to answer from them alone.
func (h *ChatHandler) QueryCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}

	collectionID := chi.URLParam(r, "collectionID")

	resp, err := h.search.Search(ctx, userID, collectionID, req.Query, 1, chatContextChunks)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("search failed: %v", err), 500)
		return
	}

	var sb strings.Builder
	for _, res := range resp.Results {
		sb.WriteString(res.Content)
		sb.WriteString("\n---\n")
	}

	systemPrompt := "You are an intelligent assistant answering based only on the given document content. If unsure, say 'I cannot find this in the documents.'"
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), req.Query)

	answer, err := h.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		http.Error(w, fmt.Sprintf("LLM failed: %v", err), 500)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"answer": answer,
	})
}
