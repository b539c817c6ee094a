// Package server exposes stored block documents over HTTP.
//
// The server is a thin REST layer over [store.Store] and [pipeline.Runner]:
// documents are saved, listed, fetched, and deleted as JSON records, and any
// stored or ad-hoc document can be rendered to svg/png/pdf/json/dot through
// the same pipeline the CLI uses.
//
// # Endpoints
//
//	GET    /healthz                        Liveness probe with version info
//	GET    /api/v1/documents               List document summaries
//	POST   /api/v1/documents               Create a document
//	GET    /api/v1/documents/{id}          Fetch a document record
//	PUT    /api/v1/documents/{id}          Update a document
//	DELETE /api/v1/documents/{id}          Delete a document
//	GET    /api/v1/documents/{id}/render   Render a stored document
//	POST   /api/v1/render                  Render a document from the request body
//
// Render endpoints take options as query parameters (format, view, style,
// width, scale, rtl, detailed, connectors, refresh) and respond with the
// artifact bytes under the matching content type.
//
// # Caching
//
// Fetches read through the configured cache under document keys with a short
// TTL; saves and deletes invalidate the entry. Layout and artifact caching
// happens inside the pipeline runner and is shared with the CLI.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/pipeline"
	"github.com/matzehuels/blockpad/pkg/store"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// Config carries the server's collaborators. Zero values get working
// defaults: an in-memory store, a null cache, the builtin toolbox, and an
// uncached pipeline runner.
type Config struct {
	// Store persists document records. Defaults to an in-memory store.
	Store store.Store

	// Backend labels the store backend in observability hooks
	// (e.g. "memory", "file", "redis").
	Backend string

	// Cache backs document reads and, through the runner, layout and
	// artifact caching. Defaults to a NullCache.
	Cache cache.Cache

	// Keyer generates cache keys. Defaults to a DefaultKeyer.
	Keyer cache.Keyer

	// Runner executes render requests. Defaults to a runner sharing the
	// server's cache and keyer.
	Runner *pipeline.Runner

	// Toolbox supplies block definitions for rendering. Defaults to the
	// builtin library.
	Toolbox *toolbox.Toolbox

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger

	// Namespace scopes document cache keys. Defaults to "documents".
	Namespace string
}

// Server handles HTTP requests for document storage and rendering.
type Server struct {
	store     store.Store
	backend   string
	cache     cache.Cache
	keyer     cache.Keyer
	runner    *pipeline.Runner
	toolbox   *toolbox.Toolbox
	logger    *log.Logger
	namespace string
}

// New creates a server from cfg, filling in defaults for unset fields.
func New(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(cfg.Cache, cfg.Keyer, cfg.Logger)
	}
	if cfg.Toolbox == nil {
		cfg.Toolbox = toolbox.Builtin()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "documents"
	}
	return &Server{
		store:     cfg.Store,
		backend:   cfg.Backend,
		cache:     cfg.Cache,
		keyer:     cfg.Keyer,
		runner:    cfg.Runner,
		toolbox:   cfg.Toolbox,
		logger:    cfg.Logger,
		namespace: cfg.Namespace,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handleUpdate)
				r.Delete("/", s.handleDelete)
				r.Get("/render", s.handleRenderStored)
			})
		})
		r.Post("/render", s.handleRenderAdhoc)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully with a 10 second drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
