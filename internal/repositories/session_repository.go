package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// SessionRepository stores session state between requests. Implementations
// return copies; a caller's changes are visible only after Save.
type SessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.SessionState, error)
	Save(ctx context.Context, state *models.SessionState) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Sweep removes expired sessions and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.SessionState
	ttl      time.Duration
	now      func() time.Time
}

var _ SessionRepository = (*MemorySessionRepository)(nil)

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]*models.SessionState),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Get(_ context.Context, id uuid.UUID) (*models.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || r.expired(s) {
		delete(r.sessions, id)
		return nil, errs.Newf(errs.NotFound, "session.Get", "session %s not found", id)
	}

	return s.Clone(), nil
}

func (r *MemorySessionRepository) Save(_ context.Context, state *models.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := state.Clone()
	c.LastSeen = r.now()
	r.sessions[c.ID] = c

	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)

	return nil
}

func (r *MemorySessionRepository) Sweep(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed, nil
}

func (r *MemorySessionRepository) expired(s *models.SessionState) bool {
	return r.now().Sub(s.LastSeen) > r.ttl
}
