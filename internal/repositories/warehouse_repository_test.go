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
)

func newMockWarehouse(t *testing.T, d database.Dialect) (*WarehouseRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWarehouseRepository(db, d), mock
}

func TestWarehouseRepository_Query(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		expectErr bool
		rows      int
	}{
		{
			name: "rows are collected by column name",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM t")).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
						AddRow(int64(1), []byte("alpha")).
						AddRow(int64(2), nil))
			},
			rows: 2,
		},
		{
			name: "warehouse error is an execution error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM t")).
					WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh, mock := newMockWarehouse(t, database.Databricks)
			tt.setupMock(mock)

			res, err := wh.Query(context.Background(), "SELECT id, name FROM t")
			if tt.expectErr {
				require.Error(t, err)
				assert.Equal(t, errs.Execution, errs.KindOf(err))
				assert.Contains(t, err.Error(), assert.AnError.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, []string{"id", "name"}, res.Columns)
				assert.Equal(t, tt.rows, res.RowCount)
				assert.Equal(t, "alpha", res.Rows[0]["name"])
				assert.Nil(t, res.Rows[1]["name"])
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWarehouseRepository_Exec(t *testing.T) {
	wh, mock := newMockWarehouse(t, database.Databricks)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE")).WillReturnError(assert.AnError)

	res, err := wh.Exec(context.Background(), "CREATE TABLE x (id INT)")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)

	_, err = wh.Exec(context.Background(), "ALTER TABLE x ADD CONSTRAINT")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Execution))

	assert.NoError(t, mock.ExpectationsWereMet())
}
