package core

import (
	"context"

	"github.com/markdave123-py/Retriva/internal/models"
)

// SearchQuery carries everything the chunk store needs for one hybrid
// search call. QueryVector and Keywords are derived from the same query
// string by the retrieval orchestrator.
type SearchQuery struct {
	CollectionID string
	UserID       string
	QueryVector  []float32
	Keywords     []string
	Page         int
	PageSize     int
}

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateCollection(ctx context.Context, col *models.Collection) error
	GetCollectionByID(ctx context.Context, id string) (*models.Collection, error)
	ListCollectionsByUser(ctx context.Context, userID string) ([]models.Collection, error)
	UpdateCollectionStatus(ctx context.Context, id string, status string) error

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	ListDocumentsByCollection(ctx context.Context, collectionID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	CollectionHasUnindexedDocuments(ctx context.Context, collectionID string) (bool, error)

	DeleteChunksByDocument(ctx context.Context, documentID, userID string) error
	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error)

	SearchChunks(ctx context.Context, q SearchQuery) (*models.SearchResponse, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
