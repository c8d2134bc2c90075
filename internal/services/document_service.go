package services

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

type DocumentService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, bucket: bucket}
}

// UploadParams carries everything needed to register a document inside a
// collection. ChunkSize/ChunkOverlap of zero mean "use the service defaults".
type UploadParams struct {
	UserID       string
	ProductID    string
	CollectionID string
	Title        string
	FileName     string
	ContentType  string
	Data         []byte
	ChunkSize    int
	ChunkOverlap int
}

// UploadAndCreate stores the raw file in object storage and records the
// document as pending. Ingestion is scheduled separately by the caller.
func (s *DocumentService) UploadAndCreate(ctx context.Context, p UploadParams) (*models.Document, error) {
	docID := uuid.NewString()
	key := s.objectKey(p.UserID, docID, p.FileName)

	url, err := s.storage.UploadFile(ctx, s.bucket, key, p.Data, p.ContentType)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = p.FileName
	}

	doc := &models.Document{
		ID:           docID,
		UserID:       p.UserID,
		ProductID:    p.ProductID,
		CollectionID: p.CollectionID,
		Title:        title,
		FileName:     p.FileName,
		FileURL:      url,
		ContentType:  p.ContentType,
		Status:       models.StatusPending,
		ChunkSize:    p.ChunkSize,
		ChunkOverlap: p.ChunkOverlap,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

func (s *DocumentService) ListByCollection(ctx context.Context, collectionID string) ([]models.Document, error) {
	return s.db.ListDocumentsByCollection(ctx, collectionID)
}

func (s *DocumentService) SetStatus(ctx context.Context, documentID, status string) error {
	return s.db.UpdateDocumentStatus(ctx, documentID, status)
}

func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	return s.db.GetChunksByDocument(ctx, documentID)
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(userID, docID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("users", userID, "documents", docID, filename)
}
