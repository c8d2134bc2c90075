package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
	"github.com/markdave123-py/Retriva/internal/services"
)

type stubUploadDb struct {
	core.DbClient

	col      *models.Collection
	statuses map[string]string
	created  []*models.Document
}

func (s *stubUploadDb) GetCollectionByID(_ context.Context, id string) (*models.Collection, error) {
	if s.col != nil && s.col.ID == id {
		return s.col, nil
	}
	return nil, nil
}

func (s *stubUploadDb) CreateDocument(_ context.Context, doc *models.Document) error {
	s.created = append(s.created, doc)
	return nil
}

func (s *stubUploadDb) UpdateDocumentStatus(_ context.Context, id, status string) error {
	s.statuses[id] = status
	return nil
}

type stubUploadStorage struct{}

func (stubUploadStorage) UploadFile(_ context.Context, bucket, key string, _ []byte, _ string) (string, error) {
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}
func (stubUploadStorage) DeleteFile(context.Context, string, string) error { return nil }
func (stubUploadStorage) GetFile(context.Context, string, string) ([]byte, error) {
	return nil, nil
}

type stubIngestor struct {
	enqueued []string
	err      error
}

func (s *stubIngestor) Enqueue(documentID string) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, documentID)
	return nil
}

func newUploadFixture(ing *stubIngestor) (*stubUploadDb, http.Handler) {
	db := &stubUploadDb{
		col:      &models.Collection{ID: "col-1", UserID: "user-1", Name: "Manuals"},
		statuses: map[string]string{},
	}
	documents := services.NewDocumentService(db, stubUploadStorage{}, "bucket")
	collections := services.NewCollectionService(db)
	h := NewDocumentHandler(documents, collections, ing)

	r := chi.NewRouter()
	r.Post("/api/collections/{collectionID}/documents", h.UploadDocument)
	return db, r
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRequest(body *bytes.Buffer, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/collections/col-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	return req.WithContext(context.WithValue(req.Context(), "user_id", "user-1"))
}

func TestUploadDocumentSuccess(t *testing.T) {
	ing := &stubIngestor{}
	db, router := newUploadFixture(ing)

	body, contentType := multipartBody(t, "guide.txt", "hello world")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(body, contentType))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, db.created, 1)
	assert.Equal(t, models.StatusPending, db.created[0].Status)
	assert.Equal(t, []string{db.created[0].ID}, ing.enqueued)
}

func TestUploadDocumentMalformedBody(t *testing.T) {
	_, router := newUploadFixture(&stubIngestor{})

	req := httptest.NewRequest(http.MethodPost, "/api/collections/col-1/documents",
		strings.NewReader("not a multipart payload"))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), "user_id", "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid multipart body")
}

func TestUploadDocumentQueueFull(t *testing.T) {
	ing := &stubIngestor{err: errors.New("ingest queue full")}
	db, router := newUploadFixture(ing)

	body, contentType := multipartBody(t, "guide.txt", "hello world")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(body, contentType))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Len(t, db.created, 1)
	assert.Equal(t, models.StatusError, db.statuses[db.created[0].ID])
}

func TestUploadDocumentUnknownCollection(t *testing.T) {
	_, router := newUploadFixture(&stubIngestor{})

	body, contentType := multipartBody(t, "guide.txt", "hello world")
	req := httptest.NewRequest(http.MethodPost, "/api/collections/col-other/documents", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
