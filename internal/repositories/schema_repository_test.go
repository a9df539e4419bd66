package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

func TestSchemaRepository_ListCatalogs(t *testing.T) {
	tests := []struct {
		name      string
		dialect   database.Dialect
		setupMock func(mock sqlmock.Sqlmock)
		expect    []string
		expectErr bool
	}{
		{
			name:    "information_schema answer is sorted",
			dialect: database.Databricks,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("system.information_schema.catalogs")).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("samples").AddRow("main"))
			},
			expect: []string{"main", "samples"},
		},
		{
			name:    "falls back to SHOW when information_schema fails",
			dialect: database.Databricks,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("system.information_schema.catalogs")).WillReturnError(assert.AnError)
				mock.ExpectQuery(regexp.QuoteMeta("SHOW CATALOGS")).
					WillReturnRows(sqlmock.NewRows([]string{"catalog"}).AddRow("main").AddRow("hive_metastore"))
			},
			expect: []string{"hive_metastore", "main"},
		},
		{
			name:    "falls back to SHOW when information_schema is empty",
			dialect: database.Databricks,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("system.information_schema.catalogs")).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery(regexp.QuoteMeta("SHOW CATALOGS")).
					WillReturnRows(sqlmock.NewRows([]string{"catalog"}).AddRow("main"))
			},
			expect: []string{"main"},
		},
		{
			name:    "both listings fail",
			dialect: database.Databricks,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("system.information_schema.catalogs")).WillReturnError(assert.AnError)
				mock.ExpectQuery(regexp.QuoteMeta("SHOW CATALOGS")).WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
		{
			name:    "postgres has no SHOW fallback",
			dialect: database.Postgres,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM pg_database")).WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh, mock := newMockWarehouse(t, tt.dialect)
			tt.setupMock(mock)

			got, err := NewSchemaRepository(wh).ListCatalogs(context.Background())
			if tt.expectErr {
				require.Error(t, err)
				assert.Equal(t, errs.MetadataQuery, errs.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expect, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSchemaRepository_ListSchemas(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Databricks)
	mock.ExpectQuery(regexp.QuoteMeta("FROM `main`.`information_schema`.`schemata`")).WillReturnError(assert.AnError)
	mock.ExpectQuery(regexp.QuoteMeta("SHOW SCHEMAS IN `main`")).
		WillReturnRows(sqlmock.NewRows([]string{"databaseName"}).AddRow("sales").AddRow("default"))

	got, err := NewSchemaRepository(wh).ListSchemas(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sales"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_ListTables(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Databricks)
	mock.ExpectQuery(regexp.QuoteMeta("FROM `main`.`information_schema`.`tables` WHERE table_schema = ?")).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES IN `main`.`sales`")).
		WillReturnRows(sqlmock.NewRows([]string{"database", "tableName", "isTemporary"}).
			AddRow("sales", "orders", false).
			AddRow("sales", "customers", false))

	got, err := NewSchemaRepository(wh).ListTables(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_GetSchemaColumns(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "uc"."information_schema"."columns"`)).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("orders", "id", "bigint", "NO", int64(1)).
			AddRow("orders", "note", "text", "YES", int64(2)))

	got, err := NewSchemaRepository(wh).GetSchemaColumns(context.Background(), "uc", "public")
	require.NoError(t, err)
	assert.Equal(t, []models.ColumnRow{
		{Table: "orders", Column: "id", DataType: "bigint", Nullable: false, Ordinal: 1},
		{Table: "orders", Column: "note", DataType: "text", Nullable: true, Ordinal: 2},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_GetPrimaryKeyColumns(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Databricks)
	mock.ExpectQuery(regexp.QuoteMeta("tc.constraint_type = 'PRIMARY KEY'")).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

	got, err := NewSchemaRepository(wh).GetPrimaryKeyColumns(context.Background(), "main", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_Constraints(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Databricks)
	repo := NewSchemaRepository(wh)

	mock.ExpectQuery(regexp.QuoteMeta("`information_schema`.`table_constraints`")).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "constraint_name", "constraint_type"}).
			AddRow("customers", "pk_customers", "PRIMARY KEY"))
	mock.ExpectQuery(regexp.QuoteMeta("`information_schema`.`key_column_usage`")).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "table_name", "column_name", "ordinal_position"}).
			AddRow("pk_customers", "customers", "id", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("`information_schema`.`referential_constraints`")).
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "unique_constraint_name"}).
			AddRow("fk_orders_customers", "pk_customers").
			AddRow("fk_dangling", nil))
	mock.ExpectQuery(regexp.QuoteMeta("`information_schema`.`referential_constraints`")).
		WillReturnError(assert.AnError)

	tcs, err := repo.GetTableConstraints(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Equal(t, []models.TableConstraintRow{{Table: "customers", ConstraintName: "pk_customers", ConstraintType: "PRIMARY KEY"}}, tcs)

	kcu, err := repo.GetKeyColumnUsage(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Equal(t, []models.KeyColumnRow{{ConstraintName: "pk_customers", Table: "customers", Column: "id", Ordinal: 1}}, kcu)

	rcs, err := repo.GetReferentialConstraints(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Equal(t, []models.ReferentialConstraintRow{
		{ConstraintName: "fk_orders_customers", UniqueConstraintName: "pk_customers"},
		{ConstraintName: "fk_dangling"},
	}, rcs)

	_, err = repo.GetReferentialConstraints(context.Background(), "main", "sales")
	require.Error(t, err)
	assert.Equal(t, errs.MetadataQuery, errs.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
