package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ucmodeler/internal/config"
)

type entry struct {
	db       *sql.DB
	lastUsed time.Time
}

// Registry keeps one pool per distinct connection config so repeated
// interactions reuse the same connections.
type Registry struct {
	mu      sync.Mutex
	open    OpenFunc
	entries map[config.ConnectionConfig]*entry
	idle    time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewRegistry(open OpenFunc, idle time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		open:    open,
		entries: make(map[config.ConnectionConfig]*entry),
		idle:    idle,
		now:     time.Now,
		log:     log,
	}
}

// Get returns the pool for cfg, opening it on first use.
func (r *Registry) Get(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[cfg]; ok {
		e.lastUsed = r.now()
		return e.db, nil
	}

	db, err := r.open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r.entries[cfg] = &entry{db: db, lastUsed: r.now()}
	r.log.Info().Str("host", cfg.Host).Str("http_path", cfg.HTTPPath).Msg("opened warehouse connection pool")

	return db, nil
}

// Evict closes and forgets the pool for cfg.
func (r *Registry) Evict(cfg config.ConnectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[cfg]
	if !ok {
		return nil
	}
	delete(r.entries, cfg)

	return e.db.Close()
}

// Sweep closes pools that have not been used for longer than the idle
// duration and returns how many were closed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	cutoff := r.now().Add(-r.idle)
	for cfg, e := range r.entries {
		if e.lastUsed.After(cutoff) {
			continue
		}
		if err := e.db.Close(); err != nil {
			r.log.Warn().Err(err).Str("host", cfg.Host).Msg("closing idle connection pool")
		}
		delete(r.entries, cfg)
		closed++
	}

	return closed
}

// Len returns the number of open pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errList []error
	for cfg, e := range r.entries {
		errList = append(errList, e.db.Close())
		delete(r.entries, cfg)
	}

	return errors.Join(errList...)
}
