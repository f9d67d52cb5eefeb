package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pgscope/pgscope/internal/catalog"
	"github.com/pgscope/pgscope/internal/errs"
)

// store resolves the connection id from the request path into a catalog
// store bound to that connection's pool.
func (s *Server) store(r *http.Request) (*catalog.Store, string, error) {
	connID := chi.URLParam(r, "connID")
	db, err := s.registry.Get(connID)
	if err != nil {
		return nil, connID, err
	}
	return catalog.NewStore(db), connID, nil
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.registry.Ping(r.Context())

	healthy := true
	conns := make(map[string]string, len(status))
	for id, err := range status {
		if err != nil {
			healthy = false
			conns[id] = err.Error()
			continue
		}
		conns[id] = "ok"
	}

	code := http.StatusOK
	overall := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, code, map[string]any{
		"status":      overall,
		"connections": conns,
	})
}

// GET /connections
func (s *Server) handleConnections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connections": s.registry.IDs(),
	})
}

// GET /{connID}/
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	doc, err := store.Describe(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GET /{connID}/schemas
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	schemas, err := store.ListSchemas(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schemas)
}

// GET /{connID}/schemas/{schema}/tables
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	tables, err := store.ListTables(ctx, chi.URLParam(r, "schema"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// GET /{connID}/schemas/{schema}/tables/{table}/columns
func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	cols, err := store.ListColumns(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

// GET /{connID}/schemas/{schema}/tables/{table}/constraints
func (s *Server) handleListConstraints(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	constraints, err := store.ListConstraints(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, constraints)
}

// GET /{connID}/schemas/{schema}/tables/{table}/constraints/{constraint}
func (s *Server) handleGetConstraint(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	name := chi.URLParam(r, "constraint")
	detail, err := store.GetConstraint(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if detail == nil {
		writeError(w, errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("constraint %q not found", name)))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GET /{connID}/schemas/{schema}/tables/{table}/indexes
func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	indexes, err := store.ListIndexes(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, indexes)
}

// GET /{connID}/schemas/{schema}/tables/{table}/indexes/{index}
func (s *Server) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	name := chi.URLParam(r, "index")
	detail, err := store.GetIndex(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if detail == nil {
		writeError(w, errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("index %q not found", name)))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GET /{connID}/schemas/{schema}/tables/{table}/sample?limit=n
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	store, connID, err := s.store(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := catalog.DefaultSampleLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("limit %q is not an integer", raw)))
			return
		}
	}

	ctx, cancel := s.queryContext(r, connID)
	defer cancel()

	rows, err := store.Sample(ctx, chi.URLParam(r, "schema"), chi.URLParam(r, "table"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
