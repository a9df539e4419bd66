package repositories

import (
	"context"
	"database/sql"
	"time"

	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// Querier is the part of *sql.DB the executor needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WarehouseRepository sends single statements to the warehouse. Each call is
// one round trip; there are no transactions spanning calls.
type WarehouseRepository struct {
	db      Querier
	dialect database.Dialect
}

func NewWarehouseRepository(db Querier, dialect database.Dialect) *WarehouseRepository {
	return &WarehouseRepository{db: db, dialect: dialect}
}

func (r *WarehouseRepository) Dialect() database.Dialect {
	return r.dialect
}

// Query runs a statement that returns rows and collects them into maps keyed
// by column name.
func (r *WarehouseRepository) Query(ctx context.Context, statement string, args ...any) (*models.QueryResult, error) {
	const op = "warehouse.Query"

	start := time.Now()

	rows, err := r.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, errs.E(errs.Execution, op, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.E(errs.Execution, op, err)
	}

	resultRows := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errs.E(errs.Execution, op, err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				rowMap[col] = string(v)
			case time.Time:
				rowMap[col] = v.Format(time.RFC3339)
			default:
				rowMap[col] = v
			}
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Execution, op, err)
	}

	return &models.QueryResult{
		Columns:       columns,
		Rows:          resultRows,
		RowCount:      len(resultRows),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

// Exec runs a statement that does not return rows, such as DDL.
func (r *WarehouseRepository) Exec(ctx context.Context, statement string, args ...any) (*models.QueryResult, error) {
	const op = "warehouse.Exec"

	start := time.Now()

	res, err := r.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, errs.E(errs.Execution, op, err)
	}

	result := &models.QueryResult{
		Columns:       []string{},
		Rows:          []map[string]any{},
		ExecutionTime: time.Since(start).Milliseconds(),
	}

	// DDL on some drivers has no affected-row count.
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}

	return result, nil
}
