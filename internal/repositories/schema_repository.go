package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// SchemaRepository reads catalog metadata through the warehouse executor.
type SchemaRepository struct {
	wh *WarehouseRepository
}

func NewSchemaRepository(wh *WarehouseRepository) *SchemaRepository {
	return &SchemaRepository{wh: wh}
}

// ListCatalogs returns catalog names, sorted.
func (r *SchemaRepository) ListCatalogs(ctx context.Context) ([]string, error) {
	d := r.wh.Dialect()

	return r.listNames(ctx, "schema.ListCatalogs",
		listing{query: d.CatalogsQuery},
		listing{query: "SHOW CATALOGS", show: true},
	)
}

// ListSchemas returns the schema names of a catalog, sorted.
func (r *SchemaRepository) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	d := r.wh.Dialect()

	return r.listNames(ctx, "schema.ListSchemas",
		listing{query: fmt.Sprintf(
			"SELECT schema_name AS name FROM %s ORDER BY name",
			d.QualifiedName(catalog, "information_schema", "schemata"),
		)},
		listing{query: "SHOW SCHEMAS IN " + d.QualifiedName(catalog), show: true},
	)
}

// ListTables returns the table names of a schema, sorted.
func (r *SchemaRepository) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	d := r.wh.Dialect()

	return r.listNames(ctx, "schema.ListTables",
		listing{
			query: fmt.Sprintf(
				"SELECT table_name AS name FROM %s WHERE table_schema = %s ORDER BY name",
				d.QualifiedName(catalog, "information_schema", "tables"), d.Placeholder(1),
			),
			args: []any{schema},
		},
		listing{query: "SHOW TABLES IN " + d.QualifiedName(catalog, schema), show: true},
	)
}

type listing struct {
	query string
	args  []any
	show  bool
}

// listNames tries each listing in turn and returns the first non-empty
// result. A failed or empty information_schema read falls through to SHOW.
func (r *SchemaRepository) listNames(ctx context.Context, op string, listings ...listing) ([]string, error) {
	var (
		lastErr  error
		answered bool
	)

	for _, l := range listings {
		if l.show && !r.wh.Dialect().SupportsShow {
			continue
		}

		res, err := r.wh.Query(ctx, l.query, l.args...)
		if err != nil {
			lastErr = err
			continue
		}
		answered = true

		if names := nameColumn(res); len(names) > 0 {
			sort.Strings(names)
			return names, nil
		}
	}

	if !answered && lastErr != nil {
		return nil, errs.E(errs.MetadataQuery, op, lastErr)
	}

	return []string{}, nil
}

// nameColumn picks the name column of a listing. SHOW TABLES returns
// database, tableName, isTemporary; SHOW SCHEMAS returns databaseName.
func nameColumn(res *models.QueryResult) []string {
	if len(res.Columns) == 0 {
		return nil
	}

	col := res.Columns[0]
	for _, c := range res.Columns {
		if c == "name" || c == "tableName" {
			col = c
			break
		}
	}

	names := make([]string, 0, res.RowCount)
	for i := range res.Rows {
		if v := res.String(i, col); v != "" {
			names = append(names, v)
		}
	}

	return names
}

// GetColumns returns the columns of one table in ordinal order.
func (r *SchemaRepository) GetColumns(ctx context.Context, catalog, schema, table string) ([]models.ColumnRow, error) {
	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT table_name, column_name, data_type, is_nullable, ordinal_position
		FROM %s
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.QualifiedName(catalog, "information_schema", "columns"), d.Placeholder(1), d.Placeholder(2))

	return r.scanColumns(ctx, "schema.GetColumns", query, schema, table)
}

// GetSchemaColumns returns the columns of every table in a schema.
func (r *SchemaRepository) GetSchemaColumns(ctx context.Context, catalog, schema string) ([]models.ColumnRow, error) {
	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT table_name, column_name, data_type, is_nullable, ordinal_position
		FROM %s
		WHERE table_schema = %s
		ORDER BY table_name, ordinal_position
	`, d.QualifiedName(catalog, "information_schema", "columns"), d.Placeholder(1))

	return r.scanColumns(ctx, "schema.GetSchemaColumns", query, schema)
}

func (r *SchemaRepository) scanColumns(ctx context.Context, op, query string, args ...any) ([]models.ColumnRow, error) {
	rows, err := r.wh.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}
	defer rows.Close()

	var columns []models.ColumnRow
	for rows.Next() {
		var (
			col      models.ColumnRow
			nullable string
		)
		if err := rows.Scan(&col.Table, &col.Column, &col.DataType, &nullable, &col.Ordinal); err != nil {
			return nil, errs.E(errs.MetadataQuery, op, fmt.Errorf("failed to scan column: %w", err))
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}

	return columns, nil
}

// GetPrimaryKeyColumns returns the primary key columns of a table in key order.
func (r *SchemaRepository) GetPrimaryKeyColumns(ctx context.Context, catalog, schema, table string) ([]string, error) {
	const op = "schema.GetPrimaryKeyColumns"

	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT kcu.column_name
		FROM %s tc
		JOIN %s kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = %s
			AND tc.table_name = %s
		ORDER BY kcu.ordinal_position
	`,
		d.QualifiedName(catalog, "information_schema", "table_constraints"),
		d.QualifiedName(catalog, "information_schema", "key_column_usage"),
		d.Placeholder(1), d.Placeholder(2),
	)

	rows, err := r.wh.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var pk string
		if err := rows.Scan(&pk); err != nil {
			return nil, errs.E(errs.MetadataQuery, op, err)
		}
		pks = append(pks, pk)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}

	return pks, nil
}

// GetTableConstraints returns every constraint declared in a schema.
func (r *SchemaRepository) GetTableConstraints(ctx context.Context, catalog, schema string) ([]models.TableConstraintRow, error) {
	const op = "schema.GetTableConstraints"

	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT table_name, constraint_name, constraint_type
		FROM %s
		WHERE table_schema = %s
	`, d.QualifiedName(catalog, "information_schema", "table_constraints"), d.Placeholder(1))

	rows, err := r.wh.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}
	defer rows.Close()

	var out []models.TableConstraintRow
	for rows.Next() {
		var tc models.TableConstraintRow
		if err := rows.Scan(&tc.Table, &tc.ConstraintName, &tc.ConstraintType); err != nil {
			return nil, errs.E(errs.MetadataQuery, op, err)
		}
		out = append(out, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}

	return out, nil
}

// GetKeyColumnUsage returns the columns of every key constraint in a schema.
func (r *SchemaRepository) GetKeyColumnUsage(ctx context.Context, catalog, schema string) ([]models.KeyColumnRow, error) {
	const op = "schema.GetKeyColumnUsage"

	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT constraint_name, table_name, column_name, ordinal_position
		FROM %s
		WHERE table_schema = %s
	`, d.QualifiedName(catalog, "information_schema", "key_column_usage"), d.Placeholder(1))

	rows, err := r.wh.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}
	defer rows.Close()

	var out []models.KeyColumnRow
	for rows.Next() {
		var kc models.KeyColumnRow
		if err := rows.Scan(&kc.ConstraintName, &kc.Table, &kc.Column, &kc.Ordinal); err != nil {
			return nil, errs.E(errs.MetadataQuery, op, err)
		}
		out = append(out, kc)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}

	return out, nil
}

// GetReferentialConstraints maps each foreign key of a schema to the unique
// or primary key constraint it references.
func (r *SchemaRepository) GetReferentialConstraints(ctx context.Context, catalog, schema string) ([]models.ReferentialConstraintRow, error) {
	const op = "schema.GetReferentialConstraints"

	d := r.wh.Dialect()
	query := fmt.Sprintf(`
		SELECT constraint_name, unique_constraint_name
		FROM %s
		WHERE constraint_schema = %s
	`, d.QualifiedName(catalog, "information_schema", "referential_constraints"), d.Placeholder(1))

	rows, err := r.wh.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}
	defer rows.Close()

	var out []models.ReferentialConstraintRow
	for rows.Next() {
		var (
			rc     models.ReferentialConstraintRow
			unique *string
		)
		if err := rows.Scan(&rc.ConstraintName, &unique); err != nil {
			return nil, errs.E(errs.MetadataQuery, op, err)
		}
		if unique != nil {
			rc.UniqueConstraintName = *unique
		}
		out = append(out, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.MetadataQuery, op, err)
	}

	return out, nil
}
