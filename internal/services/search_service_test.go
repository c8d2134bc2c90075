package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

type stubSearchDb struct {
	core.DbClient

	lastQuery core.SearchQuery
	resp      *models.SearchResponse
	err       error
}

func (s *stubSearchDb) SearchChunks(_ context.Context, q core.SearchQuery) (*models.SearchResponse, error) {
	s.lastQuery = q
	return s.resp, s.err
}

type stubEmbedder struct {
	vecs [][]float32
	err  error
}

func (s *stubEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return s.vecs, s.err
}

type stubKeywords struct{}

func (stubKeywords) Extract(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func newTestSearchService(db *stubSearchDb, emb *stubEmbedder) *SearchService {
	return NewSearchService(db, emb, stubKeywords{})
}

func TestSearchHappyPath(t *testing.T) {
	db := &stubSearchDb{resp: &models.SearchResponse{
		Success: true, Page: 2, TotalPages: 3, TotalResults: 25,
	}}
	emb := &stubEmbedder{vecs: [][]float32{{0.1, 0.2}}}
	svc := newTestSearchService(db, emb)

	resp, err := svc.Search(context.Background(), "user-1", "col-1", "install guide", 2, 10)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, db.lastQuery.Page)
	assert.Equal(t, 10, db.lastQuery.PageSize)
	assert.Equal(t, "col-1", db.lastQuery.CollectionID)
	assert.Equal(t, "user-1", db.lastQuery.UserID)
	assert.Equal(t, []float32{0.1, 0.2}, db.lastQuery.QueryVector)
	assert.Equal(t, []string{"install", "guide"}, db.lastQuery.Keywords)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestSearchService(&stubSearchDb{}, &stubEmbedder{})

	_, err := svc.Search(context.Background(), "u", "c", "   ", 1, 10)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
}

func TestSearchMissingCollection(t *testing.T) {
	svc := newTestSearchService(&stubSearchDb{}, &stubEmbedder{})

	_, err := svc.Search(context.Background(), "u", "", "query", 1, 10)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
}

func TestSearchPageSizeBounds(t *testing.T) {
	svc := newTestSearchService(&stubSearchDb{}, &stubEmbedder{})

	for _, size := range []int{-5, 0, 101, 500} {
		_, err := svc.Search(context.Background(), "u", "c", "query", 1, size)
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr), "size %d", size)
	}
}

func TestSearchClampsPage(t *testing.T) {
	db := &stubSearchDb{resp: &models.SearchResponse{Success: true}}
	svc := newTestSearchService(db, &stubEmbedder{vecs: [][]float32{{1}}})

	_, err := svc.Search(context.Background(), "u", "c", "query", -3, DefaultPageSize)

	require.NoError(t, err)
	assert.Equal(t, 1, db.lastQuery.Page)
	assert.Equal(t, DefaultPageSize, db.lastQuery.PageSize)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	svc := newTestSearchService(&stubSearchDb{}, &stubEmbedder{err: errors.New("api down")})

	_, err := svc.Search(context.Background(), "u", "c", "query", 1, 10)

	var rErr *core.RetrievalError
	require.True(t, errors.As(err, &rErr))
}

func TestSearchStoreFailure(t *testing.T) {
	db := &stubSearchDb{err: errors.New("connection reset")}
	svc := newTestSearchService(db, &stubEmbedder{vecs: [][]float32{{1}}})

	_, err := svc.Search(context.Background(), "u", "c", "query", 1, 10)

	var rErr *core.RetrievalError
	require.True(t, errors.As(err, &rErr))
}
