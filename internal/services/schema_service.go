package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/metrics"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
)

// SchemaService browses catalogs and assembles schema metadata. Nothing is
// cached; every call queries the warehouse again.
type SchemaService struct {
	metrics *metrics.Metrics
}

func NewSchemaService(m *metrics.Metrics) *SchemaService {
	return &SchemaService{metrics: m}
}

func (s *SchemaService) observe(operation string, err error) {
	s.metrics.MetadataQueries.WithLabelValues(operation, metrics.Outcome(err)).Inc()
}

func (s *SchemaService) ListCatalogs(ctx context.Context, wh *repositories.WarehouseRepository) ([]string, error) {
	names, err := repositories.NewSchemaRepository(wh).ListCatalogs(ctx)
	s.observe("list_catalogs", err)

	return names, err
}

func (s *SchemaService) ListSchemas(ctx context.Context, wh *repositories.WarehouseRepository, catalog string) ([]string, error) {
	names, err := repositories.NewSchemaRepository(wh).ListSchemas(ctx, catalog)
	s.observe("list_schemas", err)

	return names, err
}

func (s *SchemaService) ListTables(ctx context.Context, wh *repositories.WarehouseRepository, catalog, schema string) ([]string, error) {
	names, err := repositories.NewSchemaRepository(wh).ListTables(ctx, catalog, schema)
	s.observe("list_tables", err)

	return names, err
}

// DescribeTable returns the columns of a table with their primary key flags.
func (s *SchemaService) DescribeTable(ctx context.Context, wh *repositories.WarehouseRepository, catalog, schema, table string) ([]models.ColumnDef, error) {
	repo := repositories.NewSchemaRepository(wh)

	cols, err := repo.GetColumns(ctx, catalog, schema, table)
	if err != nil {
		s.observe("describe_table", err)
		return nil, err
	}

	pks, err := repo.GetPrimaryKeyColumns(ctx, catalog, schema, table)
	s.observe("describe_table", err)
	if err != nil {
		return nil, err
	}

	if len(cols) == 0 {
		return nil, errs.Newf(errs.NotFound, "schema.DescribeTable", "table %s.%s.%s not found", catalog, schema, table)
	}

	isPK := make(map[string]bool, len(pks))
	for _, pk := range pks {
		isPK[pk] = true
	}

	defs := make([]models.ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, models.ColumnDef{
			Name:       c.Column,
			Type:       c.DataType,
			Nullable:   c.Nullable,
			PrimaryKey: isPK[c.Column],
		})
	}

	return defs, nil
}

// FetchMetadata reads the columns and key constraints of a schema and
// assembles them into tables and relationships.
func (s *SchemaService) FetchMetadata(ctx context.Context, wh *repositories.WarehouseRepository, catalog, schema string) (*models.Metadata, error) {
	repo := repositories.NewSchemaRepository(wh)

	var (
		cols []models.ColumnRow
		tcs  []models.TableConstraintRow
		kcus []models.KeyColumnRow
		rcs  []models.ReferentialConstraintRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cols, err = repo.GetSchemaColumns(gctx, catalog, schema)
		return err
	})
	g.Go(func() (err error) {
		tcs, err = repo.GetTableConstraints(gctx, catalog, schema)
		return err
	})
	g.Go(func() (err error) {
		kcus, err = repo.GetKeyColumnUsage(gctx, catalog, schema)
		return err
	})
	g.Go(func() (err error) {
		rcs, err = repo.GetReferentialConstraints(gctx, catalog, schema)
		return err
	})

	err := g.Wait()
	s.observe("fetch_metadata", err)
	if err != nil {
		return nil, err
	}

	meta := AssembleMetadata(catalog, schema, cols, tcs, kcus, rcs)

	return &meta, nil
}

func orderedColumns(rows []models.KeyColumnRow) []string {
	sorted := append([]models.KeyColumnRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	cols := make([]string, len(sorted))
	for i, r := range sorted {
		cols[i] = r.Column
	}

	return cols
}

// AssembleMetadata joins raw information_schema rows. Primary keys are
// grouped per table in key order. Each foreign key is resolved through its
// referential constraint to the referenced key's table and columns; foreign
// keys that cannot be resolved or whose column counts differ are dropped.
func AssembleMetadata(
	catalog, schema string,
	cols []models.ColumnRow,
	tcs []models.TableConstraintRow,
	kcus []models.KeyColumnRow,
	rcs []models.ReferentialConstraintRow,
) models.Metadata {
	pkConstraints := map[string]bool{}
	fkConstraints := map[string]bool{}
	tableByConstraint := map[string]string{}
	for _, tc := range tcs {
		switch strings.ToUpper(tc.ConstraintType) {
		case "PRIMARY KEY":
			pkConstraints[tc.ConstraintName] = true
		case "FOREIGN KEY":
			fkConstraints[tc.ConstraintName] = true
		}
		tableByConstraint[tc.ConstraintName] = tc.Table
	}

	kcuByConstraint := map[string][]models.KeyColumnRow{}
	pkRowsByTable := map[string][]models.KeyColumnRow{}
	for _, k := range kcus {
		kcuByConstraint[k.ConstraintName] = append(kcuByConstraint[k.ConstraintName], k)
		if pkConstraints[k.ConstraintName] {
			pkRowsByTable[k.Table] = append(pkRowsByTable[k.Table], k)
		}
	}

	pkByTable := make(map[string][]string, len(pkRowsByTable))
	for table, rows := range pkRowsByTable {
		pkByTable[table] = orderedColumns(rows)
	}

	relationships := []models.Relationship{}
	for _, rc := range rcs {
		if !fkConstraints[rc.ConstraintName] || rc.UniqueConstraintName == "" {
			continue
		}

		childRows := kcuByConstraint[rc.ConstraintName]
		parentRows := kcuByConstraint[rc.UniqueConstraintName]
		parentTable := tableByConstraint[rc.UniqueConstraintName]
		if len(childRows) == 0 || len(parentRows) == 0 || parentTable == "" || len(childRows) != len(parentRows) {
			continue
		}

		relationships = append(relationships, models.Relationship{
			Name:          rc.ConstraintName,
			ChildTable:    childRows[0].Table,
			ParentTable:   parentTable,
			ChildColumns:  orderedColumns(childRows),
			ParentColumns: orderedColumns(parentRows),
		})
	}

	sort.Slice(relationships, func(i, j int) bool {
		a, b := relationships[i], relationships[j]
		if a.ChildTable != b.ChildTable {
			return a.ChildTable < b.ChildTable
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ParentTable < b.ParentTable
	})

	fkColumns := map[string]map[string]bool{}
	for _, rel := range relationships {
		if fkColumns[rel.ChildTable] == nil {
			fkColumns[rel.ChildTable] = map[string]bool{}
		}
		for _, c := range rel.ChildColumns {
			fkColumns[rel.ChildTable][c] = true
		}
	}

	colsByTable := map[string][]models.ColumnRow{}
	for _, c := range cols {
		colsByTable[c.Table] = append(colsByTable[c.Table], c)
	}

	tableNames := make([]string, 0, len(colsByTable))
	for name := range colsByTable {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	tables := make([]models.TableMeta, 0, len(tableNames))
	for _, name := range tableNames {
		rows := colsByTable[name]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Ordinal < rows[j].Ordinal })

		pk := pkByTable[name]
		isPK := make(map[string]bool, len(pk))
		for _, c := range pk {
			isPK[c] = true
		}

		t := models.TableMeta{Name: name, Columns: make([]models.ColumnMeta, 0, len(rows)), PKColumns: append([]string{}, pk...)}
		for _, r := range rows {
			t.Columns = append(t.Columns, models.ColumnMeta{
				Name:     r.Column,
				DataType: r.DataType,
				Nullable: r.Nullable,
				IsPK:     isPK[r.Column],
				IsFK:     fkColumns[name][r.Column],
			})
		}
		tables = append(tables, t)
	}

	return models.Metadata{
		Catalog:       catalog,
		Schema:        schema,
		Tables:        tables,
		Relationships: relationships,
	}
}
