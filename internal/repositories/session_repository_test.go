package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	repo := NewMemorySessionRepository(time.Hour)
	repo.now = func() time.Time { return now }

	state := &models.SessionState{ID: uuid.New(), Catalog: "main"}
	require.NoError(t, repo.Save(ctx, state))

	got, err := repo.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", got.Catalog)

	got.Catalog = "changed"
	again, err := repo.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", again.Catalog)

	_, err = repo.Get(ctx, uuid.New())
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	require.NoError(t, repo.Delete(ctx, state.ID))
	_, err = repo.Get(ctx, state.ID)
	assert.Error(t, err)
}

func TestMemorySessionRepository_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	repo := NewMemorySessionRepository(time.Hour)
	repo.now = func() time.Time { return now }

	old := &models.SessionState{ID: uuid.New()}
	require.NoError(t, repo.Save(ctx, old))

	now = now.Add(50 * time.Minute)
	fresh := &models.SessionState{ID: uuid.New()}
	require.NoError(t, repo.Save(ctx, fresh))

	now = now.Add(20 * time.Minute)
	removed, err := repo.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
