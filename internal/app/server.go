package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Retriva/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Retriva/internal/api/middlewares"
	"github.com/markdave123-py/Retriva/internal/config"
	"github.com/markdave123-py/Retriva/internal/core"
	ingest "github.com/markdave123-py/Retriva/internal/core/ingestion_engine"
	"github.com/markdave123-py/Retriva/internal/services"
)

// Services bundles everything the route tree depends on.
type Services struct {
	Users       *services.UserService
	Collections *services.CollectionService
	Documents   *services.DocumentService
	Search      *services.SearchService
	LLM         core.LLMProvider
	Ingestor    *ingest.DocumentIngestor
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, svc Services) *Server {
	authHandler := handlers.NewAuthHandler(svc.Users)
	colHandler := handlers.NewCollectionHandler(svc.Collections)
	docHandler := handlers.NewDocumentHandler(svc.Documents, svc.Collections, svc.Ingestor)
	searchHandler := handlers.NewSearchHandler(svc.Search)
	chatHandler := handlers.NewChatHandler(svc.Search, svc.LLM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)

			protected.Post("/collections", colHandler.CreateCollection)
			protected.Get("/collections", colHandler.ListCollections)
			protected.Get("/collections/{collectionID}", colHandler.GetCollection)

			protected.Post("/collections/{collectionID}/documents", docHandler.UploadDocument)
			protected.Get("/collections/{collectionID}/documents", docHandler.GetCollectionDocuments)
			protected.Get("/documents", docHandler.GetDocuments)

			protected.Post("/collections/{collectionID}/search", searchHandler.SearchCollection)
			protected.Post("/collections/{collectionID}/chat", chatHandler.QueryCollection)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
