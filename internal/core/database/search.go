package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

const fallbackSimilarity = 0.5

// hybridPredicate builds the OR filter over vector similarity and keyword
// matches. Args are laid out as $1 collection, $2 user, $3 query vector,
// then one ILIKE pattern per keyword. A chunk matches when its similarity
// clears the threshold OR any keyword hits any searchable text field.
func hybridPredicate(keywords []string, threshold float64) (string, []string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(1 - (c.embedding <-> $3::vector)) > %g", threshold)

	patterns := make([]string, 0, len(keywords))
	arg := 4
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		fmt.Fprintf(&sb,
			" OR c.chunk_content ILIKE $%[1]d OR c.document_title ILIKE $%[1]d OR c.filename ILIKE $%[1]d OR c.chunk_keywords::text ILIKE $%[1]d OR c.document_keywords::text ILIKE $%[1]d",
			arg)
		patterns = append(patterns, "%"+kw+"%")
		arg++
	}
	return sb.String(), patterns
}

func hybridCountQuery(predicate string) string {
	return fmt.Sprintf(`
		SELECT COUNT(*)
		FROM document_chunks c
		WHERE c.collection_id = $1 AND c.user_id = $2 AND (%s)`, predicate)
}

func hybridSearchQuery(predicate string, limit, offset int) string {
	return fmt.Sprintf(`
		SELECT c.id, c.document_id, c.collection_id, c.chunk_index, c.total_chunks,
		       c.chunk_content, c.filename, c.file_url, c.document_title,
		       c.collection_name, c.embedding_model,
		       (1 - (c.embedding <-> $3::vector)) AS similarity
		FROM document_chunks c
		WHERE c.collection_id = $1 AND c.user_id = $2 AND (%s)
		ORDER BY similarity DESC
		LIMIT %d OFFSET %d`, predicate, limit, offset)
}

// keywordPredicate is the vector-free filter used when the vector query
// fails (bad vector, dimension mismatch, missing extension operator).
func keywordPredicate(keywords []string) (string, []string) {
	var clauses []string
	patterns := make([]string, 0, len(keywords))
	arg := 3
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf(
			"c.chunk_content ILIKE $%[1]d OR c.document_title ILIKE $%[1]d OR c.filename ILIKE $%[1]d OR c.chunk_keywords::text ILIKE $%[1]d OR c.document_keywords::text ILIKE $%[1]d",
			arg))
		patterns = append(patterns, "%"+kw+"%")
		arg++
	}
	if len(clauses) == 0 {
		return "FALSE", patterns
	}
	return strings.Join(clauses, " OR "), patterns
}

func keywordFallbackQuery(predicate string, limit int) string {
	return fmt.Sprintf(`
		SELECT c.id, c.document_id, c.collection_id, c.chunk_index, c.total_chunks,
		       c.chunk_content, c.filename, c.file_url, c.document_title,
		       c.collection_name, c.embedding_model,
		       %g AS similarity
		FROM document_chunks c
		WHERE c.collection_id = $1 AND c.user_id = $2 AND (%s)
		ORDER BY c.document_id, c.chunk_index
		LIMIT %d`, fallbackSimilarity, predicate, limit)
}

func totalPages(totalResults, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalResults) / float64(pageSize)))
}

// SearchChunks runs the hybrid vector + keyword search with pagination.
// If the vector leg of the query errors the search degrades to a
// keyword-only pass instead of failing the request outright.
func (c *DatabaseClient) SearchChunks(ctx context.Context, q core.SearchQuery) (*models.SearchResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * q.PageSize

	predicate, patterns := hybridPredicate(q.Keywords, c.threshold)
	args := make([]any, 0, 3+len(patterns))
	args = append(args, q.CollectionID, q.UserID, pgvector.NewVector(q.QueryVector))
	for _, p := range patterns {
		args = append(args, p)
	}

	var total int
	err := c.db.QueryRowContext(ctx, hybridCountQuery(predicate), args...).Scan(&total)
	if err != nil {
		return c.keywordFallback(ctx, q)
	}

	rows, err := c.db.QueryContext(ctx, hybridSearchQuery(predicate, q.PageSize, offset), args...)
	if err != nil {
		return c.keywordFallback(ctx, q)
	}
	results, err := scanSearchResults(rows)
	if err != nil {
		return nil, err
	}

	return &models.SearchResponse{
		Success:      true,
		Results:      results,
		Page:         page,
		TotalPages:   totalPages(total, q.PageSize),
		TotalResults: total,
	}, nil
}

func (c *DatabaseClient) keywordFallback(ctx context.Context, q core.SearchQuery) (*models.SearchResponse, error) {
	predicate, patterns := keywordPredicate(q.Keywords)
	args := make([]any, 0, 2+len(patterns))
	args = append(args, q.CollectionID, q.UserID)
	for _, p := range patterns {
		args = append(args, p)
	}

	rows, err := c.db.QueryContext(ctx, keywordFallbackQuery(predicate, q.PageSize), args...)
	if err != nil {
		return nil, err
	}
	results, err := scanSearchResults(rows)
	if err != nil {
		return nil, err
	}

	return &models.SearchResponse{
		Success:      true,
		Results:      results,
		Page:         1,
		TotalPages:   1,
		TotalResults: len(results),
	}, nil
}

func scanSearchResults(rows *sql.Rows) ([]models.SearchResult, error) {
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(
			&r.ID, &r.DocumentID, &r.CollectionID, &r.ChunkIndex, &r.TotalChunks,
			&r.Content, &r.FileName, &r.FileURL, &r.DocumentTitle, &r.CollectionName,
			&r.EmbeddingModel, &r.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
