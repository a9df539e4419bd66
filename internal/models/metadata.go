package models

// ColumnMeta is a column as read back from information_schema.
type ColumnMeta struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"is_nullable"`
	IsPK     bool   `json:"is_pk"`
	IsFK     bool   `json:"is_fk"`
}

type TableMeta struct {
	Name      string       `json:"name"`
	Columns   []ColumnMeta `json:"columns"`
	PKColumns []string     `json:"pk_columns"`
}

// Relationship is a foreign key resolved to the referenced table and columns.
type Relationship struct {
	Name          string   `json:"name"`
	ChildTable    string   `json:"child_table"`
	ParentTable   string   `json:"parent_table"`
	ChildColumns  []string `json:"child_columns"`
	ParentColumns []string `json:"parent_columns"`
}

// Metadata is the model of one schema read from the catalog.
type Metadata struct {
	Catalog       string         `json:"catalog"`
	Schema        string         `json:"schema"`
	Tables        []TableMeta    `json:"tables"`
	Relationships []Relationship `json:"relationships"`
}

// Table returns the table with the given name.
func (m Metadata) Table(name string) (TableMeta, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}

	return TableMeta{}, false
}

// Raw information_schema rows used to assemble Metadata.
type (
	ColumnRow struct {
		Table    string
		Column   string
		DataType string
		Nullable bool
		Ordinal  int64
	}

	TableConstraintRow struct {
		Table          string
		ConstraintName string
		ConstraintType string
	}

	KeyColumnRow struct {
		ConstraintName string
		Table          string
		Column         string
		Ordinal        int64
	}

	ReferentialConstraintRow struct {
		ConstraintName       string
		UniqueConstraintName string
	}
)
