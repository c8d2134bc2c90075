package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

// DocumentIngestor runs the full pipeline for one document at a time:
// fetch bytes from object storage, extract text, chunk, embed, and
// replace the document's chunk rows. Documents are enqueued by id and
// processed by a fixed pool of workers.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	keywords  core.KeywordExtractor
	embedder  core.EmbeddingProvider
	cfg       IngestConfig
	bucket    string

	jobs chan string
	wg   sync.WaitGroup
}

func New(
	db core.DbClient,
	obj core.ObjectClient,
	extractor core.DocumentExtractor,
	keywords core.KeywordExtractor,
	embedder core.EmbeddingProvider,
	bucket string,
	cfg IngestConfig,
) *DocumentIngestor {
	cfg.applyDefaults()
	return &DocumentIngestor{
		db:        db,
		obj:       obj,
		extractor: extractor,
		keywords:  keywords,
		embedder:  embedder,
		cfg:       cfg,
		bucket:    bucket,
		jobs:      make(chan string, cfg.QueueSize),
	}
}

// Start launches n workers that drain the job queue until ctx is cancelled.
func (ing *DocumentIngestor) Start(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		ing.wg.Add(1)
		go func() {
			defer ing.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case docID, ok := <-ing.jobs:
					if !ok {
						return
					}
					docCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
					if err := ing.ProcessOne(docCtx, docID); err != nil {
						log.Printf("ingest: document %s failed: %v", docID, err)
					}
					cancel()
				}
			}
		}()
	}
}

// Enqueue schedules a document for ingestion. Returns an error when the
// queue is full rather than blocking the HTTP handler that called it.
func (ing *DocumentIngestor) Enqueue(documentID string) error {
	select {
	case ing.jobs <- documentID:
		return nil
	default:
		return fmt.Errorf("ingest queue full, document %s not scheduled", documentID)
	}
}

// Wait blocks until all workers have exited. Call after cancelling the
// Start context during shutdown.
func (ing *DocumentIngestor) Wait() {
	ing.wg.Wait()
}

// ProcessOne executes the ingestion pipeline for a single document. Any
// failure marks both the document and its collection as errored; nothing
// is persisted for a document that fails partway.
func (ing *DocumentIngestor) ProcessOne(ctx context.Context, documentID string) error {
	doc, err := ing.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", documentID)
	}

	col, err := ing.db.GetCollectionByID(ctx, doc.CollectionID)
	if err != nil {
		return ing.fail(ctx, doc, fmt.Errorf("load collection %s: %w", doc.CollectionID, err))
	}
	if col == nil {
		return ing.fail(ctx, doc, fmt.Errorf("collection %s not found", doc.CollectionID))
	}

	key, err := objectKeyFromURL(doc.FileURL)
	if err != nil {
		return ing.fail(ctx, doc, err)
	}
	data, err := ing.obj.GetFile(ctx, ing.bucket, key)
	if err != nil {
		return ing.fail(ctx, doc, fmt.Errorf("fetch %s: %w", key, err))
	}

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	extracted, err := ing.extractor.Extract(data, ext, doc.ContentType)
	if err != nil {
		return ing.fail(ctx, doc, err)
	}
	if extracted.Degraded() {
		log.Printf("ingest: document %s indexed from extraction sentinel", doc.ID)
	}

	docKeywords := ing.keywords.Extract(doc.Title + " " + extracted.Text)

	size := doc.ChunkSize
	overlap := doc.ChunkOverlap
	if size <= 0 {
		size = ing.cfg.ChunkSize
	}
	if overlap < 0 {
		overlap = ing.cfg.ChunkOverlap
	}
	texts, err := ChunkText(extracted.Text, size, overlap)
	if err != nil {
		return ing.fail(ctx, doc, err)
	}
	if len(texts) == 0 {
		return ing.fail(ctx, doc, errors.New("document produced no chunks"))
	}

	chunks, err := ing.embedChunks(ctx, doc, col, texts, docKeywords)
	if err != nil {
		return ing.fail(ctx, doc, err)
	}

	if err := ing.db.DeleteChunksByDocument(ctx, doc.ID, doc.UserID); err != nil {
		return ing.fail(ctx, doc, &core.StorageError{Err: err})
	}
	if err := ing.db.InsertDocumentChunks(ctx, chunks); err != nil {
		return ing.fail(ctx, doc, &core.StorageError{Err: err})
	}

	if err := ing.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusIndexed); err != nil {
		return fmt.Errorf("mark document %s indexed: %w", doc.ID, err)
	}
	pending, err := ing.db.CollectionHasUnindexedDocuments(ctx, doc.CollectionID)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", doc.CollectionID, err)
	}
	if !pending {
		if err := ing.db.UpdateCollectionStatus(ctx, doc.CollectionID, models.StatusIndexed); err != nil {
			return fmt.Errorf("mark collection %s indexed: %w", doc.CollectionID, err)
		}
	}

	log.Printf("ingest: document %s indexed, %d chunks (source %s)", doc.ID, len(chunks), extracted.Source)
	return nil
}

// embedChunks embeds every chunk concurrently and assembles the full rows.
// Any single embedding failure aborts the whole batch.
func (ing *DocumentIngestor) embedChunks(
	ctx context.Context,
	doc *models.Document,
	col *models.Collection,
	texts []string,
	docKeywords []string,
) ([]models.DocumentChunk, error) {
	chunks := make([]models.DocumentChunk, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.cfg.EmbedParallelism)
	for i, text := range texts {
		g.Go(func() error {
			vecs, err := ing.embedder.EmbedTexts(gctx, []string{text})
			if err != nil {
				return &core.EmbeddingError{Err: err}
			}
			if len(vecs) != 1 {
				return &core.EmbeddingError{Err: fmt.Errorf("expected 1 vector, got %d", len(vecs))}
			}
			chunks[i] = models.DocumentChunk{
				DocumentID:       doc.ID,
				UserID:           doc.UserID,
				ProductID:        doc.ProductID,
				CollectionID:     doc.CollectionID,
				ChunkIndex:       i,
				TotalChunks:      len(texts),
				Content:          text,
				Embedding:        vecs[0],
				FileName:         doc.FileName,
				FileURL:          doc.FileURL,
				DocumentTitle:    doc.Title,
				CollectionName:   col.Name,
				ChunkKeywords:    ing.keywords.Extract(text),
				DocumentKeywords: docKeywords,
				EmbeddingModel:   ing.cfg.EmbedModel,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// fail marks the document and its collection as errored, then returns the
// original failure for the caller to log.
func (ing *DocumentIngestor) fail(ctx context.Context, doc *models.Document, cause error) error {
	if err := ing.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusError); err != nil {
		log.Printf("ingest: could not mark document %s errored: %v", doc.ID, err)
	}
	if err := ing.db.UpdateCollectionStatus(ctx, doc.CollectionID, models.StatusError); err != nil {
		log.Printf("ingest: could not mark collection %s errored: %v", doc.CollectionID, err)
	}
	return cause
}

// objectKeyFromURL recovers the storage key from the public object URL
// recorded at upload time.
func objectKeyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url %q: %w", fileURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("file url %q has no object key", fileURL)
	}
	return key, nil
}
