package services

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

// DesignService edits the table model kept in the session and turns it into
// DDL.
type DesignService struct {
	dialect database.Dialect
	schema  *SchemaService
	runner  *StatementRunner
}

func NewDesignService(dialect database.Dialect, schema *SchemaService, runner *StatementRunner) *DesignService {
	return &DesignService{dialect: dialect, schema: schema, runner: runner}
}

func (s *DesignService) validateTable(def models.TableDef) error {
	def.Catalog, def.Schema = "", ""
	_, err := BuildCreateTable(s.dialect, def)

	return err
}

// resolveRelationship checks the foreign key itself and that both ends exist
// in the model with the named columns. The returned key carries the table and
// column spellings stored in the model.
func resolveRelationship(m models.DesignModel, fk models.ForeignKeyDef) (models.ForeignKeyDef, error) {
	const op = "design.AddRelationship"

	if err := ValidateForeignKey(fk); err != nil {
		return models.ForeignKeyDef{}, err
	}

	ends := []struct {
		table   *string
		columns []string
	}{
		{&fk.SourceTable, fk.SourceColumns},
		{&fk.TargetTable, fk.TargetColumns},
	}
	for _, end := range ends {
		i := m.TableIndex(*end.table)
		if i < 0 {
			return models.ForeignKeyDef{}, errs.Newf(errs.Validation, op, "table %q is not in the design", *end.table)
		}
		table := m.Tables[i]
		resolved := make([]string, len(end.columns))
		for j, c := range end.columns {
			col, ok := table.Column(c)
			if !ok {
				return models.ForeignKeyDef{}, errs.Newf(errs.Validation, op, "table %q has no column %q", table.Name, c)
			}
			resolved[j] = col.Name
		}
		copy(end.columns, resolved)
		*end.table = table.Name
	}

	return fk, nil
}

// UpsertTable replaces the table of the same name or appends a new one.
func (s *DesignService) UpsertTable(state *models.SessionState, def models.TableDef) error {
	if err := s.validateTable(def); err != nil {
		return err
	}
	def.Catalog, def.Schema = "", ""
	state.Design.UpsertTable(def)

	return nil
}

// RemoveTable drops a table and every relationship that mentions it.
func (s *DesignService) RemoveTable(state *models.SessionState, name string) error {
	if !state.Design.RemoveTable(name) {
		return errs.Newf(errs.NotFound, "design.RemoveTable", "table %q is not in the design", name)
	}

	return nil
}

func (s *DesignService) AddRelationship(state *models.SessionState, fk models.ForeignKeyDef) (models.ForeignKeyDef, error) {
	fk.Catalog, fk.Schema, fk.TargetCatalog, fk.TargetSchema = "", "", "", ""
	fk.SourceColumns = append([]string(nil), fk.SourceColumns...)
	fk.TargetColumns = append([]string(nil), fk.TargetColumns...)
	fk, err := resolveRelationship(state.Design, fk)
	if err != nil {
		return models.ForeignKeyDef{}, err
	}

	fk = NormalizeForeignKey(fk)
	if state.Design.RelationshipIndex(fk.Name) >= 0 {
		return models.ForeignKeyDef{}, errs.Newf(errs.Validation, "design.AddRelationship", "relationship %q already exists", fk.Name)
	}
	state.Design.Relationships = append(state.Design.Relationships, fk)

	return fk, nil
}

func (s *DesignService) RemoveRelationship(state *models.SessionState, name string) error {
	if !state.Design.RemoveRelationship(name) {
		return errs.Newf(errs.NotFound, "design.RemoveRelationship", "relationship %q is not in the design", name)
	}

	return nil
}

func (s *DesignService) Clear(state *models.SessionState) {
	state.Design = models.DesignModel{}
}

// Replace validates a whole model and swaps it in.
func (s *DesignService) Replace(state *models.SessionState, m models.DesignModel) error {
	next := models.DesignModel{}
	for _, t := range m.Tables {
		if next.TableIndex(t.Name) >= 0 {
			return errs.Newf(errs.Validation, "design.Replace", "duplicate table %q", t.Name)
		}
		if err := s.validateTable(t); err != nil {
			return err
		}
		t.Catalog, t.Schema = "", ""
		next.Tables = append(next.Tables, t)
	}

	tmp := &models.SessionState{Design: next}
	for _, r := range m.Relationships {
		if _, err := s.AddRelationship(tmp, r); err != nil {
			return err
		}
	}

	state.Design = tmp.Design

	return nil
}

// ImportFromCatalog replaces the design with the tables and foreign keys of
// a live schema.
func (s *DesignService) ImportFromCatalog(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, catalog, schema string) error {
	meta, err := s.schema.FetchMetadata(ctx, wh, catalog, schema)
	if err != nil {
		return err
	}

	state.Design = DesignFromMetadata(*meta)

	return nil
}

// DesignFromMetadata converts catalog metadata into an editable model.
func DesignFromMetadata(meta models.Metadata) models.DesignModel {
	m := models.DesignModel{}

	for _, t := range meta.Tables {
		def := models.TableDef{Name: t.Name, IfNotExists: true}
		for _, c := range t.Columns {
			def.Columns = append(def.Columns, models.ColumnDef{
				Name:       c.Name,
				Type:       strings.ToUpper(c.DataType),
				Nullable:   c.Nullable,
				PrimaryKey: c.IsPK,
			})
		}
		m.Tables = append(m.Tables, def)
	}

	for _, r := range meta.Relationships {
		m.Relationships = append(m.Relationships, models.ForeignKeyDef{
			Name:          r.Name,
			SourceTable:   r.ChildTable,
			SourceColumns: append([]string(nil), r.ChildColumns...),
			TargetTable:   r.ParentTable,
			TargetColumns: append([]string(nil), r.ParentColumns...),
		})
	}

	return m
}

// SQL returns the statements that create the design: one CREATE TABLE per
// table in model order, then one ALTER TABLE per relationship.
func (s *DesignService) SQL(state *models.SessionState, catalog, schema string) ([]string, error) {
	const op = "design.SQL"

	if catalog == "" || schema == "" {
		return nil, errs.Newf(errs.Validation, op, "select a catalog and schema first")
	}

	stmts := make([]string, 0, len(state.Design.Tables)+len(state.Design.Relationships))
	for _, t := range state.Design.Tables {
		t.Catalog, t.Schema, t.IfNotExists = catalog, schema, true
		stmt, err := BuildCreateTable(s.dialect, t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	for _, r := range state.Design.Relationships {
		r.Catalog, r.Schema = catalog, schema
		r.TargetCatalog, r.TargetSchema = catalog, schema
		stmt, err := BuildAddForeignKey(s.dialect, r)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// Apply runs the design statements in order, one round trip each. A failed
// statement does not stop the run and earlier statements stay applied.
func (s *DesignService) Apply(ctx context.Context, wh *repositories.WarehouseRepository, state *models.SessionState, catalog, schema string) (*models.ApplyReport, error) {
	stmts, err := s.SQL(state, catalog, schema)
	if err != nil {
		return nil, err
	}

	report := &models.ApplyReport{Statements: make([]models.StatementOutcome, 0, len(stmts))}
	for _, stmt := range stmts {
		kind := models.KindCreateTable
		if strings.HasPrefix(stmt, "ALTER TABLE") {
			kind = models.KindForeignKey
		}

		outcome := models.StatementOutcome{Statement: stmt, Success: true}
		if _, err := s.runner.Exec(ctx, wh, state, kind, stmt); err != nil {
			outcome.Success = false
			outcome.Error = err.Error()
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Statements = append(report.Statements, outcome)
	}

	return report, nil
}

func (s *DesignService) Graph(state *models.SessionState, catalog, schema string) models.ERGraph {
	return GraphFromDesign(catalog, schema, state.Design)
}

func (s *DesignService) ExportYAML(state *models.SessionState) ([]byte, error) {
	out, err := yaml.Marshal(state.Design)
	if err != nil {
		return nil, errs.E(errs.Internal, "design.Export", err)
	}

	return out, nil
}

// ImportYAML parses a model exported by ExportYAML and replaces the design.
func (s *DesignService) ImportYAML(state *models.SessionState, data []byte) error {
	var m models.DesignModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return errs.E(errs.Validation, "design.Import", fmt.Errorf("parsing design: %w", err))
	}

	return s.Replace(state, m)
}
