package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ucmodeler/internal/config"
	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

const probeTimeout = 30 * time.Second

// ConnectionDefaults pre-fills the connect form. The token itself is never
// sent back, only whether the environment provides one.
type ConnectionDefaults struct {
	Driver    string   `json:"driver"`
	Host      string   `json:"host"`
	HTTPPath  string   `json:"http_path"`
	TokenSet  bool     `json:"token_set"`
	DataTypes []string `json:"data_types"`
}

type SessionService struct {
	env      config.Env
	dialect  database.Dialect
	registry *database.Registry
	runner   *StatementRunner
	log      zerolog.Logger
}

func NewSessionService(env config.Env, dialect database.Dialect, registry *database.Registry, runner *StatementRunner, log zerolog.Logger) *SessionService {
	return &SessionService{
		env:      env,
		dialect:  dialect,
		registry: registry,
		runner:   runner,
		log:      log,
	}
}

func (s *SessionService) Defaults() ConnectionDefaults {
	return ConnectionDefaults{
		Driver:    s.dialect.Name,
		Host:      s.env.Host,
		HTTPPath:  s.env.HTTPPath,
		TokenSet:  strings.TrimSpace(s.env.Token) != "",
		DataTypes: s.dialect.DataTypes,
	}
}

// Connect resolves the form against the environment, opens (or reuses) a
// pool and probes it with SELECT 1. An incomplete configuration is rejected
// before any connection is attempted.
func (s *SessionService) Connect(ctx context.Context, state *models.SessionState, form config.ConnectionForm) error {
	cfg, err := config.ResolveConnection(s.env, form)
	if err != nil {
		return err
	}

	db, err := s.registry.Get(ctx, cfg)
	if err != nil {
		return errs.E(errs.Execution, "session.Connect", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	wh := repositories.NewWarehouseRepository(db, s.dialect)
	if _, err := s.runner.Query(probeCtx, wh, state, models.KindProbe, "SELECT 1"); err != nil {
		if evictErr := s.registry.Evict(cfg); evictErr != nil {
			s.log.Warn().Err(evictErr).Msg("closing pool after failed probe")
		}
		return err
	}

	if state.Connection == nil || *state.Connection != cfg {
		state.Catalog, state.Schema = "", ""
	}
	state.Connection = &cfg

	s.log.Info().Str("session", state.ID.String()).Str("host", cfg.Host).Msg("session connected")

	return nil
}

// Warehouse returns the executor for the session's connection.
func (s *SessionService) Warehouse(ctx context.Context, state *models.SessionState) (*repositories.WarehouseRepository, error) {
	if !state.Connected() {
		return nil, errs.Newf(errs.Configuration, "session.Warehouse", "not connected: submit connection settings first")
	}

	db, err := s.registry.Get(ctx, *state.Connection)
	if err != nil {
		return nil, errs.E(errs.Execution, "session.Warehouse", err)
	}

	return repositories.NewWarehouseRepository(db, s.dialect), nil
}

// SelectContext sets the catalog and schema the page works in. Choosing a
// different catalog clears the schema unless one is given.
func (s *SessionService) SelectContext(state *models.SessionState, catalog, schema string) {
	catalog, schema = strings.TrimSpace(catalog), strings.TrimSpace(schema)
	if catalog != state.Catalog && schema == "" {
		state.Schema = ""
	}
	state.Catalog = catalog
	if schema != "" {
		state.Schema = schema
	}
}

// Disconnect forgets the connection. The pool itself is shared between
// sessions and closed by the idle sweep.
func (s *SessionService) Disconnect(state *models.SessionState) {
	state.Connection = nil
	state.Catalog, state.Schema = "", ""
}

func (s *SessionService) Dialect() database.Dialect {
	return s.dialect
}
