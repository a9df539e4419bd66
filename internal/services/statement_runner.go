package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ucmodeler/internal/metrics"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

// StatementRunner executes single statements and records each one in the
// session history and the statement metrics.
type StatementRunner struct {
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewStatementRunner(m *metrics.Metrics, log zerolog.Logger) *StatementRunner {
	return &StatementRunner{metrics: m, log: log}
}

// Exec runs a statement that returns no rows.
func (r *StatementRunner) Exec(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, kind, statement string) (*models.QueryResult, error) {
	return r.run(ctx, state, kind, statement, func() (*models.QueryResult, error) {
		return wh.Exec(ctx, statement)
	})
}

// Query runs a statement and collects its rows.
func (r *StatementRunner) Query(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, kind, statement string) (*models.QueryResult, error) {
	return r.run(ctx, state, kind, statement, func() (*models.QueryResult, error) {
		return wh.Query(ctx, statement)
	})
}

func (r *StatementRunner) run(_ context.Context, state *models.SessionState, kind, statement string, fn func() (*models.QueryResult, error)) (*models.QueryResult, error) {
	start := time.Now()
	res, err := fn()
	elapsed := time.Since(start)

	r.metrics.Statements.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	r.metrics.StatementDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

	rec := models.StatementRecord{
		Statement:  statement,
		Kind:       kind,
		Success:    err == nil,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
		r.log.Warn().Err(err).Str("kind", kind).Dur("duration", elapsed).Msg("statement failed")
	} else {
		r.log.Debug().Str("kind", kind).Dur("duration", elapsed).Msg("statement executed")
	}

	if state != nil {
		state.Record(rec)
	}

	if res != nil {
		res.ExecutionTime = elapsed.Milliseconds()
	}

	return res, err
}
