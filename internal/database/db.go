package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ucmodeler/internal/config"
)

const (
	maxOpenConns    = 5
	maxIdleConns    = 2
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 1 * time.Minute
)

// Options carries the driver settings that are not part of the connection
// triple.
type Options struct {
	// PostgresUser is the role used by the postgres dialect.
	PostgresUser string
	UserAgent    string
}

// OpenFunc opens a pool for one connection config.
type OpenFunc func(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error)

// Opener returns an OpenFunc bound to a dialect and its options.
func Opener(d Dialect, opts Options) OpenFunc {
	return func(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error) {
		return Open(ctx, d, cfg, opts)
	}
}

// Open creates a connection pool against the warehouse described by cfg. The
// pool connects lazily; callers probe it with a query.
func Open(_ context.Context, d Dialect, cfg config.ConnectionConfig, opts Options) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		db  *sql.DB
		err error
	)

	switch d.Name {
	case Databricks.Name:
		db, err = openDatabricks(cfg, opts)
	case Postgres.Name:
		db, err = openPostgres(cfg, opts)
	default:
		err = fmt.Errorf("unsupported dialect %q", d.Name)
	}
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	return db, nil
}

func openDatabricks(cfg config.ConnectionConfig, opts Options) (*sql.DB, error) {
	options := []dbsql.ConnOption{
		dbsql.WithServerHostname(config.NormalizeHost(cfg.Host)),
		dbsql.WithPort(443),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.Token),
	}
	if opts.UserAgent != "" {
		options = append(options, dbsql.WithUserAgentEntry(opts.UserAgent))
	}

	connector, err := dbsql.NewConnector(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure databricks connector: %w", err)
	}

	return sql.OpenDB(connector), nil
}

// openPostgres maps the connection triple onto a PostgreSQL DSN: host is
// host[:port], the HTTP path names the database and the token is the password.
func openPostgres(cfg config.ConnectionConfig, opts Options) (*sql.DB, error) {
	user := opts.PostgresUser
	if user == "" {
		user = "postgres"
	}

	database := strings.Trim(cfg.HTTPPath, "/")
	if database == "" {
		return nil, fmt.Errorf("postgres connection requires a database name in the HTTP path")
	}

	dsn := fmt.Sprintf(
		"postgres://%s@%s/%s?sslmode=disable",
		url.UserPassword(user, cfg.Token).String(),
		config.NormalizeHost(cfg.Host),
		url.PathEscape(database),
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	return db, nil
}
