package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document/Collection status values. A document starts as pending when its
// metadata is registered, and moves to indexed or error exactly once.
const (
	StatusPending = "pending"
	StatusIndexed = "indexed"
	StatusError   = "error"
)

// Collection is a named grouping of documents that searches are scoped to.
// Its status mirrors the aggregate indexing state of its documents.
type Collection struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one user-uploaded file.
type Document struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	CollectionID string    `db:"collection_id" json:"collection_id"`
	Title        string    `db:"title" json:"title"`
	FileName     string    `db:"file_name" json:"file_name"`
	FileURL      string    `db:"file_url" json:"file_url"` // S3 URL
	ContentType  string    `db:"content_type" json:"content_type"`
	Status       string    `db:"status" json:"status"` // pending | indexed | error
	ChunkSize    int       `db:"chunk_size" json:"chunk_size"`
	ChunkOverlap int       `db:"chunk_overlap" json:"chunk_overlap"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one contiguous slice of a document's extracted text, the
// unit of storage and retrieval. Rows are insert-only; re-ingestion replaces
// a document's full chunk set.
type DocumentChunk struct {
	ID               int64     `db:"id" json:"id"`
	DocumentID       string    `db:"document_id" json:"document_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	ProductID        string    `db:"product_id" json:"product_id"`
	CollectionID     string    `db:"collection_id" json:"collection_id"`
	ChunkIndex       int       `db:"chunk_index" json:"chunk_index"`
	TotalChunks      int       `db:"total_chunks" json:"total_chunks"`
	Content          string    `db:"chunk_content" json:"chunk_content"`
	Embedding        []float32 `db:"embedding" json:"-"` // pgvector column
	FileName         string    `db:"filename" json:"filename"`
	FileURL          string    `db:"file_url" json:"file_url"`
	DocumentTitle    string    `db:"document_title" json:"document_title"`
	CollectionName   string    `db:"collection_name" json:"collection_name"`
	ChunkKeywords    []string  `db:"chunk_keywords" json:"chunk_keywords"`
	DocumentKeywords []string  `db:"document_keywords" json:"document_keywords"`
	EmbeddingModel   string    `db:"embedding_model" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// SearchResult is a chunk plus its computed similarity score, 0.0-1.0.
// Ephemeral; never persisted.
type SearchResult struct {
	DocumentChunk
	Similarity float64 `json:"similarity"`
}

// SearchResponse is the paginated result set returned by the retrieval path.
type SearchResponse struct {
	Success      bool           `json:"success"`
	Results      []SearchResult `json:"results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
	Error        string         `json:"error,omitempty"`
}
