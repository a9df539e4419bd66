package services

import (
	"fmt"
	"regexp"
	"strings"

	"ucmodeler/internal/database"
	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

const maxIdentifierLength = 255

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isValidIdentifier checks a catalog, schema, table, column or constraint
// name before it is quoted into a statement.
func isValidIdentifier(name string) bool {
	if name == "" || len(name) > maxIdentifierLength {
		return false
	}

	return identifierPattern.MatchString(name)
}

func checkIdentifier(op, what, name string) error {
	if !isValidIdentifier(name) {
		return errs.Newf(errs.Validation, op, "invalid %s name %q", what, name)
	}

	return nil
}

// checkNamespace validates optional catalog and schema parts.
func checkNamespace(op, catalog, schema string) error {
	if catalog != "" {
		if err := checkIdentifier(op, "catalog", catalog); err != nil {
			return err
		}
	}
	if schema != "" {
		if err := checkIdentifier(op, "schema", schema); err != nil {
			return err
		}
	}

	return nil
}

func quoteList(d database.Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}

	return strings.Join(quoted, ", ")
}

// BuildCreateTable renders one column clause per column, in order, followed
// by a single primary key constraint when any column is flagged. Primary key
// columns are always NOT NULL.
func BuildCreateTable(d database.Dialect, t models.TableDef) (string, error) {
	const op = "builder.CreateTable"

	if err := checkNamespace(op, t.Catalog, t.Schema); err != nil {
		return "", err
	}
	if err := checkIdentifier(op, "table", t.Name); err != nil {
		return "", err
	}
	if len(t.Columns) == 0 {
		return "", errs.Newf(errs.Validation, op, "table %q needs at least one column", t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	clauses := make([]string, 0, len(t.Columns))
	for i, col := range t.Columns {
		if err := checkIdentifier(op, "column", col.Name); err != nil {
			return "", err
		}

		key := strings.ToLower(col.Name)
		if seen[key] {
			return "", errs.Newf(errs.Validation, op, "duplicate column name %q", col.Name)
		}
		seen[key] = true

		dataType := strings.TrimSpace(col.Type)
		if !d.ValidType(dataType) {
			return "", errs.Newf(errs.Validation, op, "invalid type %q for column %q at index %d", col.Type, col.Name, i)
		}

		clause := d.QuoteIdent(col.Name) + " " + dataType
		if !col.Nullable || col.PrimaryKey {
			clause += " NOT NULL"
		}
		clauses = append(clauses, clause)
	}

	var pk string
	if cols := t.PrimaryKeyColumns(); len(cols) > 0 {
		pk = fmt.Sprintf(", CONSTRAINT %s PRIMARY KEY (%s)",
			d.QuoteIdent(models.DefaultPrimaryKeyName(t.Name)), quoteList(d, cols))
	}

	ine := ""
	if t.IfNotExists {
		ine = "IF NOT EXISTS "
	}

	return fmt.Sprintf("CREATE TABLE %s%s (\n  %s%s\n)",
		ine,
		d.QualifiedName(t.Catalog, t.Schema, t.Name),
		strings.Join(clauses, ",\n  "),
		pk,
	), nil
}

// NormalizeForeignKey fills in the defaults of a foreign key: the target
// namespace falls back to the source one and the name to fk_<source>_<target>.
func NormalizeForeignKey(fk models.ForeignKeyDef) models.ForeignKeyDef {
	if fk.TargetCatalog == "" {
		fk.TargetCatalog = fk.Catalog
	}
	if fk.TargetSchema == "" {
		fk.TargetSchema = fk.Schema
	}
	if strings.TrimSpace(fk.Name) == "" {
		fk.Name = models.DefaultForeignKeyName(fk.SourceTable, fk.TargetTable)
	}

	return fk
}

// ValidateForeignKey checks names and column lists. Whether the target
// columns form a key is left to the warehouse.
func ValidateForeignKey(fk models.ForeignKeyDef) error {
	const op = "builder.AddForeignKey"

	fk = NormalizeForeignKey(fk)

	if err := checkNamespace(op, fk.Catalog, fk.Schema); err != nil {
		return err
	}
	if err := checkNamespace(op, fk.TargetCatalog, fk.TargetSchema); err != nil {
		return err
	}
	if err := checkIdentifier(op, "source table", fk.SourceTable); err != nil {
		return err
	}
	if err := checkIdentifier(op, "target table", fk.TargetTable); err != nil {
		return err
	}
	if err := checkIdentifier(op, "constraint", fk.Name); err != nil {
		return err
	}

	if len(fk.SourceColumns) == 0 || len(fk.TargetColumns) == 0 {
		return errs.Newf(errs.Validation, op, "foreign key %q needs source and target columns", fk.Name)
	}
	if len(fk.SourceColumns) != len(fk.TargetColumns) {
		return errs.Newf(errs.Validation, op,
			"foreign key %q has %d source columns but %d target columns",
			fk.Name, len(fk.SourceColumns), len(fk.TargetColumns))
	}

	for _, c := range fk.SourceColumns {
		if err := checkIdentifier(op, "source column", c); err != nil {
			return err
		}
	}
	for _, c := range fk.TargetColumns {
		if err := checkIdentifier(op, "target column", c); err != nil {
			return err
		}
	}

	return nil
}

// BuildAddForeignKey renders ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY
// with both tables fully qualified.
func BuildAddForeignKey(d database.Dialect, fk models.ForeignKeyDef) (string, error) {
	if err := ValidateForeignKey(fk); err != nil {
		return "", err
	}
	fk = NormalizeForeignKey(fk)

	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.QualifiedName(fk.Catalog, fk.Schema, fk.SourceTable),
		d.QuoteIdent(fk.Name),
		quoteList(d, fk.SourceColumns),
		d.QualifiedName(fk.TargetCatalog, fk.TargetSchema, fk.TargetTable),
		quoteList(d, fk.TargetColumns),
	), nil
}

// BuildAddPrimaryKey renders ALTER TABLE ... ADD CONSTRAINT ... PRIMARY KEY.
func BuildAddPrimaryKey(d database.Dialect, pk models.PrimaryKeyDef) (string, error) {
	const op = "builder.AddPrimaryKey"

	if err := checkNamespace(op, pk.Catalog, pk.Schema); err != nil {
		return "", err
	}
	if err := checkIdentifier(op, "table", pk.Table); err != nil {
		return "", err
	}

	name := strings.TrimSpace(pk.Name)
	if name == "" {
		name = models.DefaultPrimaryKeyName(pk.Table)
	}
	if err := checkIdentifier(op, "constraint", name); err != nil {
		return "", err
	}

	if len(pk.Columns) == 0 {
		return "", errs.Newf(errs.Validation, op, "primary key on %q needs at least one column", pk.Table)
	}

	seen := make(map[string]bool, len(pk.Columns))
	for _, c := range pk.Columns {
		if err := checkIdentifier(op, "column", c); err != nil {
			return "", err
		}
		if seen[strings.ToLower(c)] {
			return "", errs.Newf(errs.Validation, op, "duplicate primary key column %q", c)
		}
		seen[strings.ToLower(c)] = true
	}

	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)",
		d.QualifiedName(pk.Catalog, pk.Schema, pk.Table),
		d.QuoteIdent(name),
		quoteList(d, pk.Columns),
	), nil
}

// BuildDropTable renders DROP TABLE IF EXISTS for one table.
func BuildDropTable(d database.Dialect, catalog, schema, table string) (string, error) {
	const op = "builder.DropTable"

	if err := checkNamespace(op, catalog, schema); err != nil {
		return "", err
	}
	if err := checkIdentifier(op, "table", table); err != nil {
		return "", err
	}

	return "DROP TABLE IF EXISTS " + d.QualifiedName(catalog, schema, table), nil
}
