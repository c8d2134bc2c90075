package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

const (
	minPageSize = 1
	maxPageSize = 100

	// DefaultPageSize is applied by callers when the client omits a limit.
	// An explicit limit outside [1,100], zero included, is rejected.
	DefaultPageSize = 10
)

// ValidationError marks caller mistakes that map to a 400 response, as
// opposed to RetrievalError which maps to a 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SearchService turns a raw query string into an embedded hybrid search
// over one collection's chunks.
type SearchService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	keywords core.KeywordExtractor
}

func NewSearchService(db core.DbClient, embedder core.EmbeddingProvider, keywords core.KeywordExtractor) *SearchService {
	return &SearchService{db: db, embedder: embedder, keywords: keywords}
}

// Search embeds the query, extracts its keywords, and runs the paginated
// hybrid search. pageSize must be within [1,100]; page below 1 is clamped
// to the first page.
func (s *SearchService) Search(ctx context.Context, userID, collectionID, query string, page, pageSize int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Msg: "query is required"}
	}
	if strings.TrimSpace(collectionID) == "" {
		return nil, &ValidationError{Msg: "collection id is required"}
	}
	if pageSize < minPageSize || pageSize > maxPageSize {
		return nil, &ValidationError{Msg: "limit must be between 1 and 100"}
	}
	if page < 1 {
		page = 1
	}

	keywords := s.keywords.Extract(query)

	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, &core.RetrievalError{Err: err}
	}
	if len(vecs) != 1 {
		return nil, &core.RetrievalError{Err: fmt.Errorf("expected 1 query vector, got %d", len(vecs))}
	}

	resp, err := s.db.SearchChunks(ctx, core.SearchQuery{
		CollectionID: collectionID,
		UserID:       userID,
		QueryVector:  vecs[0],
		Keywords:     keywords,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		return nil, &core.RetrievalError{Err: err}
	}
	return resp, nil
}
