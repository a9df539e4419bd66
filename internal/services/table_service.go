package services

import (
	"context"

	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

// TableService builds DDL and sends it to the warehouse.
type TableService struct {
	runner *StatementRunner
}

func NewTableService(runner *StatementRunner) *TableService {
	return &TableService{runner: runner}
}

// CreateTable returns the statement it built, also when the warehouse
// rejects it, so the caller can show what was sent.
func (s *TableService) CreateTable(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, def models.TableDef) (string, error) {
	stmt, err := BuildCreateTable(wh.Dialect(), def)
	if err != nil {
		return "", err
	}

	_, err = s.runner.Exec(ctx, wh, state, models.KindCreateTable, stmt)

	return stmt, err
}

func (s *TableService) AddPrimaryKey(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, def models.PrimaryKeyDef) (string, error) {
	stmt, err := BuildAddPrimaryKey(wh.Dialect(), def)
	if err != nil {
		return "", err
	}

	_, err = s.runner.Exec(ctx, wh, state, models.KindPrimaryKey, stmt)

	return stmt, err
}

func (s *TableService) AddForeignKey(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, def models.ForeignKeyDef) (string, error) {
	stmt, err := BuildAddForeignKey(wh.Dialect(), def)
	if err != nil {
		return "", err
	}

	_, err = s.runner.Exec(ctx, wh, state, models.KindForeignKey, stmt)

	return stmt, err
}

func (s *TableService) DropTable(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, catalog, schema, table string) (string, error) {
	stmt, err := BuildDropTable(wh.Dialect(), catalog, schema, table)
	if err != nil {
		return "", err
	}

	_, err = s.runner.Exec(ctx, wh, state, models.KindDropTable, stmt)

	return stmt, err
}
