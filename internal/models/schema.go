package models

import "strings"

// ColumnDef is one column of a table definition.
type ColumnDef struct {
	Name       string `json:"name" yaml:"name" binding:"required"`
	Type       string `json:"type" yaml:"type" binding:"required"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	PrimaryKey bool   `json:"primary_key" yaml:"primary_key"`
}

// TableDef describes a table to create. Columns keep their order.
type TableDef struct {
	Catalog     string      `json:"catalog,omitempty" yaml:"-"`
	Schema      string      `json:"schema,omitempty" yaml:"-"`
	Name        string      `json:"name" yaml:"name"`
	Columns     []ColumnDef `json:"columns" yaml:"columns"`
	IfNotExists bool        `json:"if_not_exists" yaml:"-"`
}

// PrimaryKeyColumns returns the names of the columns flagged as primary key,
// in column order.
func (t TableDef) PrimaryKeyColumns() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}

	return pk
}

// Column returns the column with the given name, compared case-insensitively.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}

	return ColumnDef{}, false
}

// PrimaryKeyDef adds a primary key constraint to an existing table.
type PrimaryKeyDef struct {
	Catalog string   `json:"catalog,omitempty"`
	Schema  string   `json:"schema,omitempty"`
	Table   string   `json:"table,omitempty"`
	Columns []string `json:"columns" binding:"required,min=1"`
	Name    string   `json:"name"`
}

// ForeignKeyDef links source columns of one table to key columns of another.
type ForeignKeyDef struct {
	Name          string   `json:"name" yaml:"name"`
	Catalog       string   `json:"catalog,omitempty" yaml:"-"`
	Schema        string   `json:"schema,omitempty" yaml:"-"`
	SourceTable   string   `json:"source_table" yaml:"child_table"`
	SourceColumns []string `json:"source_columns" yaml:"child_columns"`
	TargetCatalog string   `json:"target_catalog,omitempty" yaml:"-"`
	TargetSchema  string   `json:"target_schema,omitempty" yaml:"-"`
	TargetTable   string   `json:"target_table" yaml:"parent_table"`
	TargetColumns []string `json:"target_columns" yaml:"parent_columns"`
}

// DefaultForeignKeyName is the constraint name used when none is given.
func DefaultForeignKeyName(source, target string) string {
	return "fk_" + source + "_" + target
}

// DefaultPrimaryKeyName is the constraint name used for a table's primary key.
func DefaultPrimaryKeyName(table string) string {
	return "pk_" + table
}
