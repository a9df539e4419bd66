package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/database"
	"ucmodeler/internal/metrics"
	"ucmodeler/internal/repositories"
)

func newTestWarehouse(t *testing.T, d database.Dialect) (*repositories.WarehouseRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repositories.NewWarehouseRepository(db, d), mock
}

func newTestRunner() *StatementRunner {
	return NewStatementRunner(metrics.New(), zerolog.Nop())
}

var (
	columnsHeader    = []string{"table_name", "column_name", "data_type", "is_nullable", "ordinal_position"}
	constraintHeader = []string{"table_name", "constraint_name", "constraint_type"}
	kcuHeader        = []string{"constraint_name", "table_name", "column_name", "ordinal_position"}
	rcHeader         = []string{"constraint_name", "unique_constraint_name"}
)

// expectOrdersCustomers queues the four metadata reads for a schema with
// customers(id PK) and orders(id PK, customer_id), optionally with the
// foreign key orders.customer_id -> customers.id.
func expectOrdersCustomers(mock sqlmock.Sqlmock, withFK bool) {
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("information_schema`.`columns`").
		WillReturnRows(sqlmock.NewRows(columnsHeader).
			AddRow("orders", "customer_id", "BIGINT", "YES", int64(2)).
			AddRow("orders", "id", "BIGINT", "NO", int64(1)).
			AddRow("customers", "id", "BIGINT", "NO", int64(1)).
			AddRow("customers", "email", "STRING", "YES", int64(2)))

	tcs := sqlmock.NewRows(constraintHeader).
		AddRow("customers", "pk_customers", "PRIMARY KEY").
		AddRow("orders", "pk_orders", "PRIMARY KEY")
	kcus := sqlmock.NewRows(kcuHeader).
		AddRow("pk_customers", "customers", "id", int64(1)).
		AddRow("pk_orders", "orders", "id", int64(1))
	rcs := sqlmock.NewRows(rcHeader)

	if withFK {
		tcs.AddRow("orders", "fk_orders_customers", "FOREIGN KEY")
		kcus.AddRow("fk_orders_customers", "orders", "customer_id", int64(1))
		rcs.AddRow("fk_orders_customers", "pk_customers")
	}

	mock.ExpectQuery("information_schema`.`table_constraints`").WillReturnRows(tcs)
	mock.ExpectQuery("information_schema`.`key_column_usage`").WillReturnRows(kcus)
	mock.ExpectQuery("information_schema`.`referential_constraints`").WillReturnRows(rcs)
}
