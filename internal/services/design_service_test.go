package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/metrics"
	"ucmodeler/internal/models"
	"ucmodeler/internal/render"
)

func newTestDesignService() *DesignService {
	return NewDesignService(database.Databricks, NewSchemaService(metrics.New()), newTestRunner())
}

func seedDesign(t *testing.T, svc *DesignService, state *models.SessionState) {
	t.Helper()

	require.NoError(t, svc.UpsertTable(state, models.TableDef{
		Name:    "customers",
		Columns: []models.ColumnDef{{Name: "id", Type: "BIGINT", PrimaryKey: true}, {Name: "email", Type: "STRING", Nullable: true}},
	}))
	require.NoError(t, svc.UpsertTable(state, models.TableDef{
		Name: "orders",
		Columns: []models.ColumnDef{
			{Name: "id", Type: "BIGINT", PrimaryKey: true},
			{Name: "customer_id", Type: "BIGINT", Nullable: true},
		},
	}))
	_, err := svc.AddRelationship(state, models.ForeignKeyDef{
		SourceTable:   "orders",
		SourceColumns: []string{"customer_id"},
		TargetTable:   "customers",
		TargetColumns: []string{"id"},
	})
	require.NoError(t, err)
}

func TestDesignService_AddRelationship(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	seedDesign(t, svc, state)

	require.Len(t, state.Design.Relationships, 1)
	assert.Equal(t, "fk_orders_customers", state.Design.Relationships[0].Name)

	testCases := []struct {
		name string
		fk   models.ForeignKeyDef
	}{
		{
			name: "duplicate name",
			fk:   models.ForeignKeyDef{SourceTable: "orders", SourceColumns: []string{"customer_id"}, TargetTable: "customers", TargetColumns: []string{"id"}},
		},
		{
			name: "unknown table",
			fk:   models.ForeignKeyDef{Name: "fk_x", SourceTable: "invoices", SourceColumns: []string{"customer_id"}, TargetTable: "customers", TargetColumns: []string{"id"}},
		},
		{
			name: "unknown column",
			fk:   models.ForeignKeyDef{Name: "fk_x", SourceTable: "orders", SourceColumns: []string{"buyer_id"}, TargetTable: "customers", TargetColumns: []string{"id"}},
		},
		{
			name: "column count mismatch",
			fk:   models.ForeignKeyDef{Name: "fk_x", SourceTable: "orders", SourceColumns: []string{"customer_id", "id"}, TargetTable: "customers", TargetColumns: []string{"id"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddRelationship(state, tc.fk)
			require.Error(t, err)
			assert.Equal(t, errs.Validation, errs.KindOf(err))
			assert.Len(t, state.Design.Relationships, 1)
		})
	}
}

func TestDesignService_AddRelationshipUsesStoredNames(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	require.NoError(t, svc.UpsertTable(state, models.TableDef{
		Name:    "customers",
		Columns: []models.ColumnDef{{Name: "id", Type: "BIGINT", PrimaryKey: true}},
	}))
	require.NoError(t, svc.UpsertTable(state, models.TableDef{
		Name:    "orders",
		Columns: []models.ColumnDef{{Name: "id", Type: "BIGINT", PrimaryKey: true}, {Name: "customer_id", Type: "BIGINT"}},
	}))

	fk, err := svc.AddRelationship(state, models.ForeignKeyDef{
		SourceTable:   "Orders",
		SourceColumns: []string{"Customer_ID"},
		TargetTable:   "CUSTOMERS",
		TargetColumns: []string{"ID"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fk_orders_customers", fk.Name)
	assert.Equal(t, "orders", fk.SourceTable)
	assert.Equal(t, []string{"customer_id"}, fk.SourceColumns)
	assert.Equal(t, "customers", fk.TargetTable)
	assert.Equal(t, []string{"id"}, fk.TargetColumns)

	g := GraphFromDesign("main", "sales", state.Design)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "orders", g.Edges[0].Source)
	assert.Equal(t, "customers", g.Edges[0].Target)

	orders, ok := g.Node("orders")
	require.True(t, ok)
	for _, c := range orders.Columns {
		assert.Equal(t, c.Name == "customer_id", c.IsFK, c.Name)
	}
	assert.Contains(t, render.DOT(&g), "fk_orders_customers")

	// Re-upserting with another spelling keeps the stored name.
	require.NoError(t, svc.UpsertTable(state, models.TableDef{
		Name:    "ORDERS",
		Columns: []models.ColumnDef{{Name: "id", Type: "BIGINT", PrimaryKey: true}, {Name: "customer_id", Type: "BIGINT"}},
	}))
	assert.Equal(t, "orders", state.Design.Tables[1].Name)
}

func TestDesignService_RemoveTableCascades(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	seedDesign(t, svc, state)

	require.NoError(t, svc.RemoveTable(state, "customers"))
	assert.Len(t, state.Design.Tables, 1)
	assert.Empty(t, state.Design.Relationships)

	err := svc.RemoveTable(state, "customers")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestDesignService_SQL(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	seedDesign(t, svc, state)

	_, err := svc.SQL(state, "main", "")
	require.Error(t, err)
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	stmts, err := svc.SQL(state, "main", "sales")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS `main`.`sales`.`customers`")
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS `main`.`sales`.`orders`")
	assert.Equal(t,
		"ALTER TABLE `main`.`sales`.`orders` ADD CONSTRAINT `fk_orders_customers` FOREIGN KEY (`customer_id`) REFERENCES `main`.`sales`.`customers` (`id`)",
		stmts[2])
}

func TestDesignService_ApplyContinuesAfterFailure(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	seedDesign(t, svc, state)

	wh, mock := newTestWarehouse(t, database.Databricks)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `main`.`sales`.`customers`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `main`.`sales`.`orders`").WillReturnError(assert.AnError)
	mock.ExpectExec("ALTER TABLE `main`.`sales`.`orders`").WillReturnResult(sqlmock.NewResult(0, 0))

	report, err := svc.Apply(context.Background(), wh, state, "main", "sales")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Statements, 3)
	assert.True(t, report.Statements[0].Success)
	assert.False(t, report.Statements[1].Success)
	assert.NotEmpty(t, report.Statements[1].Error)
	assert.True(t, report.Statements[2].Success)

	require.Len(t, state.History, 3)
	assert.Equal(t, models.KindForeignKey, state.History[2].Kind)
}

func TestDesignService_YAMLExportImport(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}
	seedDesign(t, svc, state)

	out, err := svc.ExportYAML(state)
	require.NoError(t, err)
	assert.Contains(t, string(out), "child_table: orders")
	assert.Contains(t, string(out), "parent_table: customers")

	other := &models.SessionState{}
	require.NoError(t, svc.ImportYAML(other, out))
	assert.Equal(t, state.Design, other.Design)

	err = svc.ImportYAML(other, []byte("tables: [oops"))
	require.Error(t, err)
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	err = svc.ImportYAML(other, []byte("tables:\n  - name: bad name\n    columns: []\n"))
	require.Error(t, err)
	assert.Equal(t, state.Design, other.Design)
}

func TestDesignService_ImportFromCatalog(t *testing.T) {
	svc := newTestDesignService()
	state := &models.SessionState{}

	wh, mock := newTestWarehouse(t, database.Databricks)
	expectOrdersCustomers(mock, true)

	require.NoError(t, svc.ImportFromCatalog(context.Background(), wh, state, "main", "sales"))
	require.Len(t, state.Design.Tables, 2)
	assert.Equal(t, "customers", state.Design.Tables[0].Name)
	assert.True(t, state.Design.Tables[0].Columns[0].PrimaryKey)
	require.Len(t, state.Design.Relationships, 1)
	assert.Equal(t, "fk_orders_customers", state.Design.Relationships[0].Name)

	g := svc.Graph(state, "main", "sales")
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
}
