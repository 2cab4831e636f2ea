package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/bookreader/internal/catalog"
	"github.com/dgallion1/bookreader/internal/config"
	"github.com/dgallion1/bookreader/internal/content"
	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/synopsis"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"
)

// Deps are the collaborators the API serves from.
type Deps struct {
	Catalog *catalog.Client
	Fetcher *content.Fetcher
	Library *library.Store

	// Synopsis is nil when no model is configured.
	Synopsis synopsis.Summarizer
	Stats    *synopsis.Stats
	Model    string
}

// Server is the HTTP API server for bookreader.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
	loads  singleflight.Group
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ReaderAPIKey, s.log))

		r.Get("/api/books/search", s.handleSearchBooks)
		r.Route("/api/books/{bookID}", func(r chi.Router) {
			r.Get("/", s.handleGetBook)
			r.Get("/chapters", s.handleBookChapters)
			r.Get("/chapter", s.handleBookChapter)
			r.Post("/synopsis", s.handleBookSynopsis)
		})

		r.Post("/api/documents", s.handleUploadDocument)
		r.Get("/api/documents", s.handleListDocuments)
		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/chapters", s.handleDocumentChapters)
			r.Get("/chapter", s.handleDocumentChapter)
		})

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
