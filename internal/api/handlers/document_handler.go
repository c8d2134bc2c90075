package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Retriva/internal/models"
	"github.com/markdave123-py/Retriva/internal/services"
)

// Ingestor is the subset of the ingestion engine handlers need.
type Ingestor interface {
	Enqueue(documentID string) error
}

type DocumentHandler struct {
	documents   *services.DocumentService
	collections *services.CollectionService
	ingestor    Ingestor
}

func NewDocumentHandler(documents *services.DocumentService, collections *services.CollectionService, ing Ingestor) *DocumentHandler {
	return &DocumentHandler{documents: documents, collections: collections, ingestor: ing}
}

// UploadDocument handles file upload into a collection, DB insert, and
// background ingestion.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(52 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	col, err := h.collections.Get(r.Context(), collectionID)
	if err != nil || col == nil {
		http.Error(w, "collection not found", http.StatusNotFound)
		return
	}
	if col.UserID != userID {
		http.Error(w, "collection does not belong to you", http.StatusForbidden)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	chunkSize, err := optionalIntField(r, "chunk_size")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chunkOverlap, err := optionalIntField(r, "chunk_overlap")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	doc, err := h.documents.UploadAndCreate(uploadctx, services.UploadParams{
		UserID:       userID,
		ProductID:    col.ProductID,
		CollectionID: col.ID,
		Title:        r.FormValue("title"),
		FileName:     filepath.Base(header.Filename),
		ContentType:  contentType,
		Data:         data,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	})
	if err != nil {
		log.Printf("upload failed for user %s: %v", userID, err)
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.ingestor.Enqueue(doc.ID); err != nil {
		log.Printf("enqueue failed for doc %s: %v", doc.ID, err)
		if err := h.documents.SetStatus(r.Context(), doc.ID, models.StatusError); err != nil {
			log.Printf("could not mark document %s errored: %v", doc.ID, err)
		}
		http.Error(w, "ingestion queue is full, try again later", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.documents.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

func (h *DocumentHandler) GetCollectionDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	col, err := h.collections.Get(r.Context(), collectionID)
	if err != nil || col == nil {
		http.Error(w, "collection not found", http.StatusNotFound)
		return
	}
	if col.UserID != userID {
		http.Error(w, "collection does not belong to you", http.StatusForbidden)
		return
	}

	documents, err := h.documents.ListByCollection(r.Context(), collectionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

func optionalIntField(r *http.Request, name string) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
