package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgscope/pgscope/internal/errs"
)

// Registry resolves connection ids to live database pools.
//
// The set of connections is fixed at startup; after construction the
// registry is read-only and safe for concurrent use without locking.
type Registry struct {
	conns map[string]entry
}

type entry struct {
	db  DB
	cfg *Config
}

// Connector opens a DB for the given Config. The postgres package supplies
// the production implementation; tests supply fakes.
type Connector func(ctx context.Context, cfg *Config) (DB, error)

// NewRegistry connects every configured entry via connect and returns the
// populated registry. Any single connection failure aborts construction and
// closes the pools opened so far.
func NewRegistry(ctx context.Context, configs map[string]*Config, connect Connector) (*Registry, error) {
	r := &Registry{conns: make(map[string]entry, len(configs))}

	for id, cfg := range configs {
		db, err := connect(ctx, cfg)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("connecting %q: %w", id, err)
		}
		r.conns[id] = entry{db: db, cfg: cfg}
	}
	return r, nil
}

// Get resolves a connection id to its pool.
func (r *Registry) Get(id string) (DB, error) {
	e, ok := r.conns[id]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("connection %q is not registered", id))
	}
	return e.db, nil
}

// QueryTimeout returns the configured per-query deadline for the given
// connection, or zero when the id is unknown or no timeout is set.
func (r *Registry) QueryTimeout(id string) time.Duration {
	e, ok := r.conns[id]
	if !ok || e.cfg == nil {
		return 0
	}
	return e.cfg.QueryTimeout
}

// IDs returns the registered connection ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ping checks every registered connection and returns a per-id error map.
// A nil map value means the connection is healthy.
func (r *Registry) Ping(ctx context.Context) map[string]error {
	status := make(map[string]error, len(r.conns))
	for id, e := range r.conns {
		status[id] = e.db.Ping(ctx)
	}
	return status
}

// Close shuts down every registered pool.
func (r *Registry) Close() {
	for _, e := range r.conns {
		e.db.Close()
	}
}
