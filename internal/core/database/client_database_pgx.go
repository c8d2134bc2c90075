package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Retriva/internal/config"
	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

type DatabaseClient struct {
	db        *sql.DB
	threshold float64
	embedDim  int
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, threshold: cfg.SimilarityThreshold, embedDim: cfg.EmbedDim}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for Collection

func (c *DatabaseClient) CreateCollection(ctx context.Context, col *models.Collection) error {
	if col == nil {
		return errors.New("nil collection")
	}
	const q = `
		INSERT INTO collections (id, user_id, product_id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		col.ID, col.UserID, col.ProductID, col.Name, col.Description, col.Status)
	return err
}

func (c *DatabaseClient) GetCollectionByID(ctx context.Context, id string) (*models.Collection, error) {
	const q = `
		SELECT id, user_id, product_id, name, description, status, created_at, updated_at
		FROM collections WHERE id = $1
	`
	var col models.Collection
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&col.ID, &col.UserID, &col.ProductID, &col.Name, &col.Description, &col.Status,
		&col.CreatedAt, &col.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

func (c *DatabaseClient) ListCollectionsByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	const q = `
		SELECT id, user_id, product_id, name, description, status, created_at, updated_at
		FROM collections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Collection
	for rows.Next() {
		var col models.Collection
		if err := rows.Scan(
			&col.ID, &col.UserID, &col.ProductID, &col.Name, &col.Description, &col.Status,
			&col.CreatedAt, &col.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateCollectionStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE collections
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("collection not found: %s", id)
	}
	return nil
}

// Implementing the db interface for Document

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, product_id, collection_id, title, file_name, file_url,
			 content_type, status, chunk_size, chunk_overlap, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.ProductID, doc.CollectionID, doc.Title, doc.FileName,
		doc.FileURL, doc.ContentType, doc.Status, doc.ChunkSize, doc.ChunkOverlap)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, product_id, collection_id, title, file_name, file_url,
		       content_type, status, chunk_size, chunk_overlap, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.ProductID, &d.CollectionID, &d.Title, &d.FileName, &d.FileURL,
		&d.ContentType, &d.Status, &d.ChunkSize, &d.ChunkOverlap, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, product_id, collection_id, title, file_name, file_url,
		       content_type, status, chunk_size, chunk_overlap, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return c.queryDocuments(ctx, q, userID)
}

func (c *DatabaseClient) ListDocumentsByCollection(ctx context.Context, collectionID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, product_id, collection_id, title, file_name, file_url,
		       content_type, status, chunk_size, chunk_overlap, created_at, updated_at
		FROM documents
		WHERE collection_id = $1
		ORDER BY created_at DESC
	`
	return c.queryDocuments(ctx, q, collectionID)
}

func (c *DatabaseClient) queryDocuments(ctx context.Context, q string, arg any) ([]models.Document, error) {
	rows, err := c.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ProductID, &d.CollectionID, &d.Title, &d.FileName, &d.FileURL,
			&d.ContentType, &d.Status, &d.ChunkSize, &d.ChunkOverlap, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// CollectionHasUnindexedDocuments reports whether any document in the
// collection has not reached the indexed status yet. Drives the aggregate
// collection status transition after each document completes.
func (c *DatabaseClient) CollectionHasUnindexedDocuments(ctx context.Context, collectionID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE collection_id = $1 AND status <> $2
		)
	`
	var pending bool
	if err := c.db.QueryRowContext(ctx, q, collectionID, models.StatusIndexed).Scan(&pending); err != nil {
		return false, err
	}
	return pending, nil
}

// Implementing the db interface for Document Chunks

// DeleteChunksByDocument clears a document's chunk rows ahead of
// re-ingestion so the unique (document_id, chunk_index) constraint holds.
func (c *DatabaseClient) DeleteChunksByDocument(ctx context.Context, documentID, userID string) error {
	const q = `
		DELETE FROM document_chunks
		WHERE document_id = $1 AND user_id = $2
	`
	_, err := c.db.ExecContext(ctx, q, documentID, userID)
	return err
}

// InsertDocumentChunks inserts chunks in a single transaction. Vector
// lengths are checked up front so a model/schema mismatch fails with a
// clear error instead of a Postgres dimension error mid-transaction.
func (c *DatabaseClient) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := checkEmbeddingDims(chunks, c.embedDim); err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO document_chunks
			(document_id, user_id, product_id, collection_id, chunk_index, total_chunks,
			 chunk_content, embedding, filename, file_url, document_title, collection_name,
			 chunk_keywords, document_keywords, embedding_model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		chunkKw, err := json.Marshal(ch.ChunkKeywords)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		docKw, err := json.Marshal(ch.DocumentKeywords)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		if _, err := stmt.ExecContext(ctx,
			ch.DocumentID, ch.UserID, ch.ProductID, ch.CollectionID, ch.ChunkIndex,
			ch.TotalChunks, ch.Content, vec, ch.FileName, ch.FileURL, ch.DocumentTitle,
			ch.CollectionName, chunkKw, docKw, ch.EmbeddingModel,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func checkEmbeddingDims(chunks []models.DocumentChunk, dim int) error {
	for i := range chunks {
		if got := len(chunks[i].Embedding); got != dim {
			return fmt.Errorf("chunk %d of document %s: embedding has %d dimensions, schema expects %d",
				chunks[i].ChunkIndex, chunks[i].DocumentID, got, dim)
		}
	}
	return nil
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	const q = `
		SELECT id, document_id, user_id, product_id, collection_id, chunk_index,
		       total_chunks, chunk_content, filename, file_url, document_title,
		       collection_name, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentChunk
	for rows.Next() {
		var ch models.DocumentChunk
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.UserID, &ch.ProductID, &ch.CollectionID,
			&ch.ChunkIndex, &ch.TotalChunks, &ch.Content, &ch.FileName, &ch.FileURL,
			&ch.DocumentTitle, &ch.CollectionName, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}
