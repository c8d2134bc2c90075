// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/markdave123-py/Retriva/internal/config"
	"github.com/markdave123-py/Retriva/internal/core"
	db "github.com/markdave123-py/Retriva/internal/core/database"
	"github.com/markdave123-py/Retriva/internal/core/extractor"
	ingest "github.com/markdave123-py/Retriva/internal/core/ingestion_engine"
	"github.com/markdave123-py/Retriva/internal/core/keywords"
	"github.com/markdave123-py/Retriva/internal/core/llm"
	objectclient "github.com/markdave123-py/Retriva/internal/core/object-client"
	"github.com/markdave123-py/Retriva/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Ingestor     *ingest.DocumentIngestor
	Server       *Server

	cfg *config.Config
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
	}

	documentExtractor := extractor.New(extractor.Options{
		MinAlnumChars:  cfg.MinAlnumChars,
		MinUsableChars: cfg.MinUsableChars,
	})
	keywordExtractor := keywords.New()

	docIngestor := ingest.New(dbClient, objClient, documentExtractor, keywordExtractor, geminiEmbedder, cfg.BucketName, ingest.IngestConfig{
		ChunkSize:    cfg.DefaultChunkSize,
		ChunkOverlap: cfg.DefaultChunkOverlap,
		EmbedModel:   cfg.EmbedModel,
	})

	userService := services.NewUserService(dbClient)
	collectionService := services.NewCollectionService(dbClient)
	documentService := services.NewDocumentService(dbClient, objClient, cfg.BucketName)
	searchService := services.NewSearchService(dbClient, geminiEmbedder, keywordExtractor)

	server := NewServer(cfg, Services{
		Users:       userService,
		Collections: collectionService,
		Documents:   documentService,
		Search:      searchService,
		LLM:         llmProvider,
		Ingestor:    docIngestor,
	})

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Ingestor:     docIngestor,
		Server:       server,
		cfg:          cfg,
	}, nil
}

// Run starts the ingestion workers and the HTTP server, then blocks until
// ctx is cancelled and both have drained.
func (a *App) Run(ctx context.Context) {
	a.Ingestor.Start(ctx, a.cfg.IngestWorkers)
	go a.Server.Start()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	a.Ingestor.Wait()
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
