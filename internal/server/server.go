// Package server exposes the catalog as addressable HTTP resources.
//
// Every route is a GET: pgscope is a read-only introspection layer. Path
// segments select a connection, a schema, a table, and finally a metadata
// facet; handlers translate path variables into catalog calls and render
// the results as JSON. Database errors are not retried or translated here
// beyond mapping their kind to an HTTP status.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pgscope/pgscope/internal/database"
	"github.com/pgscope/pgscope/internal/logger"
)

const defaultQueryTimeout = 30 * time.Second

// Server is the pgscope HTTP server.
type Server struct {
	registry *database.Registry
	log      *logger.Logger
	addr     string
	server   *http.Server
}

// New creates a Server over the given connection registry.
func New(registry *database.Registry, log *logger.Logger, addr string) *Server {
	return &Server{
		registry: registry,
		log:      log,
		addr:     addr,
	}
}

// Router builds the chi routing tree. Exposed separately from Start so
// tests can drive it through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/connections", s.handleConnections)

	r.Route("/{connID}", func(r chi.Router) {
		r.Get("/", s.handleDescribe)
		r.Get("/schemas", s.handleListSchemas)

		r.Route("/schemas/{schema}/tables", func(r chi.Router) {
			r.Get("/", s.handleListTables)

			r.Route("/{table}", func(r chi.Router) {
				r.Get("/columns", s.handleListColumns)
				r.Get("/constraints", s.handleListConstraints)
				r.Get("/constraints/{constraint}", s.handleGetConstraint)
				r.Get("/indexes", s.handleListIndexes)
				r.Get("/indexes/{index}", s.handleGetIndex)
				r.Get("/sample", s.handleSample)
			})
		})
	})

	return r
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.With().Str("addr", s.addr).Logger().Info("server listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// queryContext derives the per-request deadline for catalog work from the
// connection's configured query timeout.
func (s *Server) queryContext(r *http.Request, connID string) (context.Context, context.CancelFunc) {
	timeout := s.registry.QueryTimeout(connID)
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}
