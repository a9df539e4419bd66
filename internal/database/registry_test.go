package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/config"
	"ucmodeler/internal/errs"
)

func TestRegistry_ReusesPools(t *testing.T) {
	opened := 0
	open := func(_ context.Context, _ config.ConnectionConfig) (*sql.DB, error) {
		opened++
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()
		return db, nil
	}

	r := NewRegistry(open, time.Hour, zerolog.Nop())
	cfgA := config.ConnectionConfig{Host: "a", HTTPPath: "/p", Token: "t"}
	cfgB := config.ConnectionConfig{Host: "b", HTTPPath: "/p", Token: "t"}

	first, err := r.Get(context.Background(), cfgA)
	require.NoError(t, err)
	second, err := r.Get(context.Background(), cfgA)
	require.NoError(t, err)
	_, err = r.Get(context.Background(), cfgB)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Evict(cfgA))
	assert.Equal(t, 1, r.Len())
	require.NoError(t, r.Close())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_OpenError(t *testing.T) {
	open := func(_ context.Context, _ config.ConnectionConfig) (*sql.DB, error) {
		return nil, errors.New("dial tcp: no such host")
	}

	r := NewRegistry(open, time.Hour, zerolog.Nop())
	_, err := r.Get(context.Background(), config.ConnectionConfig{Host: "x", HTTPPath: "/p", Token: "t"})
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	open := func(_ context.Context, _ config.ConnectionConfig) (*sql.DB, error) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()
		return db, nil
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(open, 10*time.Minute, zerolog.Nop())
	r.now = func() time.Time { return now }

	_, err := r.Get(context.Background(), config.ConnectionConfig{Host: "old", HTTPPath: "/p", Token: "t"})
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	_, err = r.Get(context.Background(), config.ConnectionConfig{Host: "new", HTTPPath: "/p", Token: "t"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Databricks, config.ConnectionConfig{Host: "h", HTTPPath: "/p"}, Options{})
	require.Error(t, err)
	assert.Equal(t, errs.Configuration, errs.KindOf(err))
	assert.Contains(t, err.Error(), config.EnvToken)
}

func TestOpen_Postgres(t *testing.T) {
	db, err := Open(context.Background(), Postgres, config.ConnectionConfig{Host: "localhost:5432", HTTPPath: "/uc", Token: "secret"}, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(context.Background(), Postgres, config.ConnectionConfig{Host: "localhost:5432", HTTPPath: "/", Token: "secret"}, Options{})
	assert.Error(t, err)
}
