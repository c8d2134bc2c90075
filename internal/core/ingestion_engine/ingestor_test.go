package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

type fakeDb struct {
	mu sync.Mutex

	documents   map[string]*models.Document
	collections map[string]*models.Collection
	chunks      []models.DocumentChunk

	docStatus     map[string]string
	colStatus     map[string]string
	deleteCalls   int
	stillUnready  bool
	insertFailure error
}

func newFakeDb() *fakeDb {
	return &fakeDb{
		documents:   map[string]*models.Document{},
		collections: map[string]*models.Collection{},
		docStatus:   map[string]string{},
		colStatus:   map[string]string{},
	}
}

func (f *fakeDb) CreateUser(context.Context, *models.User) error { return nil }
func (f *fakeDb) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (f *fakeDb) CreateCollection(context.Context, *models.Collection) error { return nil }
func (f *fakeDb) GetCollectionByID(_ context.Context, id string) (*models.Collection, error) {
	return f.collections[id], nil
}
func (f *fakeDb) ListCollectionsByUser(context.Context, string) ([]models.Collection, error) {
	return nil, nil
}
func (f *fakeDb) UpdateCollectionStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colStatus[id] = status
	return nil
}
func (f *fakeDb) CreateDocument(context.Context, *models.Document) error { return nil }
func (f *fakeDb) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	return f.documents[id], nil
}
func (f *fakeDb) ListDocumentsByUser(context.Context, string) ([]models.Document, error) {
	return nil, nil
}
func (f *fakeDb) ListDocumentsByCollection(context.Context, string) ([]models.Document, error) {
	return nil, nil
}
func (f *fakeDb) UpdateDocumentStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docStatus[id] = status
	return nil
}
func (f *fakeDb) CollectionHasUnindexedDocuments(context.Context, string) (bool, error) {
	return f.stillUnready, nil
}
func (f *fakeDb) DeleteChunksByDocument(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return nil
}
func (f *fakeDb) InsertDocumentChunks(_ context.Context, chunks []models.DocumentChunk) error {
	if f.insertFailure != nil {
		return f.insertFailure
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, chunks...)
	return nil
}
func (f *fakeDb) GetChunksByDocument(context.Context, string) ([]models.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeDb) SearchChunks(context.Context, core.SearchQuery) (*models.SearchResponse, error) {
	return nil, nil
}
func (f *fakeDb) Close() error { return nil }

type fakeObject struct {
	data []byte
	err  error
}

func (f *fakeObject) UploadFile(context.Context, string, string, []byte, string) (string, error) {
	return "", nil
}
func (f *fakeObject) DeleteFile(context.Context, string, string) error { return nil }
func (f *fakeObject) GetFile(context.Context, string, string) ([]byte, error) {
	return f.data, f.err
}

type fakeExtractor struct {
	result core.ExtractedText
	err    error
}

func (f *fakeExtractor) Extract([]byte, string, string) (core.ExtractedText, error) {
	return f.result, f.err
}

type fakeKeywords struct{}

func (fakeKeywords) Extract(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return fields
}

type fakeEmbedder struct {
	mu      sync.Mutex
	calls   int
	failOn  string
	failErr error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.failOn != "" && strings.Contains(t, f.failOn) {
			return nil, f.failErr
		}
		out[i] = []float32{float32(len(t)), 0.5}
	}
	return out, nil
}

func newTestIngestor(db *fakeDb, obj *fakeObject, ex *fakeExtractor, emb *fakeEmbedder) *DocumentIngestor {
	return New(db, obj, ex, fakeKeywords{}, emb, "bucket", IngestConfig{
		ChunkSize:        10,
		ChunkOverlap:     2,
		EmbedParallelism: 2,
		EmbedModel:       "test-embed",
	})
}

func seedDocument(db *fakeDb) *models.Document {
	col := &models.Collection{ID: "col-1", UserID: "user-1", Name: "Manuals", Status: models.StatusPending}
	doc := &models.Document{
		ID:           "doc-1",
		UserID:       "user-1",
		CollectionID: "col-1",
		Title:        "Install Guide",
		FileName:     "guide.txt",
		FileURL:      "https://bucket.s3.amazonaws.com/uploads/guide.txt",
		ContentType:  "text/plain",
		Status:       models.StatusPending,
	}
	db.collections[col.ID] = col
	db.documents[doc.ID] = doc
	return doc
}

func TestProcessOneSuccess(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	text := strings.Repeat("abcdefgh ", 4) // 36 chars -> multiple chunks at size 10
	ing := newTestIngestor(db, &fakeObject{data: []byte("raw")}, &fakeExtractor{
		result: core.ExtractedText{Source: core.SourcePlain, Text: text},
	}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, db.docStatus["doc-1"])
	assert.Equal(t, models.StatusIndexed, db.colStatus["col-1"])
	require.NotEmpty(t, db.chunks)
	assert.Equal(t, 1, db.deleteCalls)

	for i, ch := range db.chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, len(db.chunks), ch.TotalChunks)
		assert.Equal(t, "doc-1", ch.DocumentID)
		assert.Equal(t, "Manuals", ch.CollectionName)
		assert.Equal(t, "test-embed", ch.EmbeddingModel)
		assert.NotEmpty(t, ch.Embedding)
	}
}

func TestProcessOneCollectionStaysPendingWithSiblings(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	db.stillUnready = true
	ing := newTestIngestor(db, &fakeObject{data: []byte("raw")}, &fakeExtractor{
		result: core.ExtractedText{Source: core.SourcePlain, Text: "short text body"},
	}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, db.docStatus["doc-1"])
	_, flipped := db.colStatus["col-1"]
	assert.False(t, flipped)
}

func TestProcessOneEmbeddingFailure(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	ing := newTestIngestor(db, &fakeObject{data: []byte("raw")}, &fakeExtractor{
		result: core.ExtractedText{Source: core.SourcePlain, Text: strings.Repeat("xyzFAILxyz", 5)},
	}, &fakeEmbedder{failOn: "FAIL", failErr: errors.New("quota exceeded")})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.Error(t, err)
	var embErr *core.EmbeddingError
	assert.True(t, errors.As(err, &embErr))
	assert.Equal(t, models.StatusError, db.docStatus["doc-1"])
	assert.Equal(t, models.StatusError, db.colStatus["col-1"])
	assert.Empty(t, db.chunks)
}

func TestProcessOneExtractionFailure(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	ing := newTestIngestor(db, &fakeObject{data: []byte("raw")}, &fakeExtractor{
		err: &core.ExtractionError{Extension: ".zip", Err: errors.New("unsupported file extension")},
	}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.Error(t, err)
	assert.Equal(t, models.StatusError, db.docStatus["doc-1"])
	assert.Equal(t, models.StatusError, db.colStatus["col-1"])
}

func TestProcessOneStorageFailure(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	db.insertFailure = errors.New("disk full")
	ing := newTestIngestor(db, &fakeObject{data: []byte("raw")}, &fakeExtractor{
		result: core.ExtractedText{Source: core.SourcePlain, Text: "some body text"},
	}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.Error(t, err)
	var stErr *core.StorageError
	assert.True(t, errors.As(err, &stErr))
	assert.Equal(t, models.StatusError, db.docStatus["doc-1"])
}

func TestProcessOneObjectFetchFailure(t *testing.T) {
	db := newFakeDb()
	seedDocument(db)
	ing := newTestIngestor(db, &fakeObject{err: errors.New("no such key")}, &fakeExtractor{}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "doc-1")

	require.Error(t, err)
	assert.Equal(t, models.StatusError, db.docStatus["doc-1"])
}

func TestProcessOneMissingDocument(t *testing.T) {
	db := newFakeDb()
	ing := newTestIngestor(db, &fakeObject{}, &fakeExtractor{}, &fakeEmbedder{})

	err := ing.ProcessOne(context.Background(), "ghost")

	require.Error(t, err)
	assert.Empty(t, db.docStatus)
}

func TestObjectKeyFromURL(t *testing.T) {
	key, err := objectKeyFromURL("https://bucket.s3.us-east-1.amazonaws.com/uploads/a%20b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "uploads/a b.pdf", key)

	_, err = objectKeyFromURL("https://bucket.s3.amazonaws.com/")
	require.Error(t, err)
}
