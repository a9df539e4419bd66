package database

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect captures the differences between the warehouses the modeler can
// target: identifier quoting, parameter markers, type names and the catalog
// listing query.
type Dialect struct {
	Name       string
	DriverName string
	// CatalogsQuery lists catalog names in a single "name" column.
	CatalogsQuery string
	// SupportsShow enables the SHOW CATALOGS/SCHEMAS/TABLES fallbacks.
	SupportsShow bool
	// DataTypes are the choices offered by the table form.
	DataTypes []string

	quote       string
	placeholder func(n int) string
	typeNames   map[string]bool
	synonyms    map[string]string
}

var Databricks = Dialect{
	Name:          "databricks",
	DriverName:    "databricks",
	CatalogsQuery: "SELECT catalog_name AS name FROM system.information_schema.catalogs ORDER BY name",
	SupportsShow:  true,
	DataTypes: []string{
		"STRING", "BOOLEAN", "INT", "BIGINT", "DOUBLE", "DECIMAL(38,18)",
		"DATE", "TIMESTAMP", "BINARY",
	},
	quote:       "`",
	placeholder: func(int) string { return "?" },
	typeNames: set(
		"STRING", "VARCHAR", "CHAR", "BOOLEAN", "TINYINT", "BYTE", "SMALLINT", "SHORT",
		"INT", "INTEGER", "BIGINT", "LONG", "FLOAT", "REAL", "DOUBLE", "DECIMAL", "DEC",
		"NUMERIC", "DATE", "TIMESTAMP", "TIMESTAMP_NTZ", "TIMESTAMP_LTZ", "BINARY",
		"INTERVAL", "ARRAY", "MAP", "STRUCT", "VARIANT",
	),
	synonyms: map[string]string{
		"INTEGER":       "INT",
		"LONG":          "BIGINT",
		"SHORT":         "SMALLINT",
		"BYTE":          "TINYINT",
		"REAL":          "FLOAT",
		"DEC":           "DECIMAL",
		"NUMERIC":       "DECIMAL",
		"TIMESTAMP_LTZ": "TIMESTAMP",
	},
}

var Postgres = Dialect{
	Name:          "postgres",
	DriverName:    "pgx",
	CatalogsQuery: "SELECT datname AS name FROM pg_database WHERE NOT datistemplate ORDER BY name",
	SupportsShow:  false,
	DataTypes: []string{
		"TEXT", "BOOLEAN", "INTEGER", "BIGINT", "DOUBLE PRECISION", "NUMERIC(38,18)",
		"DATE", "TIMESTAMP", "BYTEA",
	},
	quote:       `"`,
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	typeNames: set(
		"TEXT", "VARCHAR", "CHARACTER", "CHAR", "BOOLEAN", "BOOL", "SMALLINT", "INT",
		"INTEGER", "BIGINT", "REAL", "DOUBLE", "NUMERIC", "DECIMAL", "DATE", "TIME",
		"TIMESTAMP", "TIMESTAMPTZ", "INTERVAL", "UUID", "JSON", "JSONB", "BYTEA",
		"INT2", "INT4", "INT8", "FLOAT4", "FLOAT8",
	),
	synonyms: map[string]string{
		"INT4":                        "INTEGER",
		"INT":                         "INTEGER",
		"INT8":                        "BIGINT",
		"INT2":                        "SMALLINT",
		"BOOL":                        "BOOLEAN",
		"FLOAT8":                      "DOUBLE PRECISION",
		"FLOAT4":                      "REAL",
		"DECIMAL":                     "NUMERIC",
		"CHARACTER VARYING":           "VARCHAR",
		"CHARACTER":                   "CHAR",
		"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
		"TIMESTAMP WITH TIME ZONE":    "TIMESTAMPTZ",
		"TIME WITHOUT TIME ZONE":      "TIME",
	},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case Databricks.Name:
		return Databricks, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unknown warehouse driver %q", name)
	}
}

// QuoteIdent quotes a single identifier, doubling embedded quote characters.
func (d Dialect) QuoteIdent(ident string) string {
	return d.quote + strings.ReplaceAll(ident, d.quote, d.quote+d.quote) + d.quote
}

// QualifiedName quotes and dot-joins the non-empty parts of a name.
func (d Dialect) QualifiedName(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, d.QuoteIdent(p))
	}

	return strings.Join(quoted, ".")
}

// Placeholder returns the parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

var typeNamePattern = regexp.MustCompile(`^[A-Za-z_]+(?: [A-Za-z_]+)*`)

// BaseType returns the upper-cased type name without parameters, e.g.
// "decimal(38,18)" -> "DECIMAL", "ARRAY<INT>" -> "ARRAY".
func BaseType(dataType string) string {
	return strings.ToUpper(typeNamePattern.FindString(strings.TrimSpace(dataType)))
}

var typeParamsPattern = regexp.MustCompile(`^\s*\d+\s*(?:,\s*\d+\s*)*$`)

// typeQualifiers are the words allowed after a type name, as in
// DOUBLE PRECISION, TIMESTAMP WITH TIME ZONE or INTERVAL DAY TO SECOND.
var typeQualifiers = set(
	"PRECISION", "VARYING", "WITH", "WITHOUT", "TIME", "ZONE",
	"YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND", "TO",
)

// ValidType reports whether dataType is a single type expression the dialect
// knows: a type name, optional numeric parameters or one balanced <...>
// element list, and nothing after it.
func (d Dialect) ValidType(dataType string) bool {
	s := strings.TrimSpace(dataType)
	if s == "" || strings.IndexFunc(s, invalidTypeRune) >= 0 {
		return false
	}

	name := typeNamePattern.FindString(s)
	words := strings.Fields(strings.ToUpper(name))
	if len(words) == 0 || !d.typeNames[words[0]] || !qualifiersOnly(words[1:]) {
		return false
	}

	rest := strings.TrimSpace(s[len(name):])
	switch {
	case rest == "":
		return true
	case rest[0] == '(':
		end := strings.IndexByte(rest, ')')
		if end < 0 || !typeParamsPattern.MatchString(rest[1:end]) {
			return false
		}
		return qualifiersOnly(strings.Fields(strings.ToUpper(rest[end+1:])))
	case rest[0] == '<':
		return balancedElements(rest)
	default:
		return false
	}
}

func invalidTypeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}

	return !strings.ContainsRune("_ :,()<>", r)
}

func qualifiersOnly(words []string) bool {
	for _, w := range words {
		if !typeQualifiers[w] {
			return false
		}
	}

	return true
}

// balancedElements reports whether s is one <...> group whose brackets nest
// properly and close at the last character.
func balancedElements(s string) bool {
	var stack []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<', '(':
			stack = append(stack, c)
		case '>', ')':
			open := byte('<')
			if c == ')' {
				open = '('
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i == len(s)-1
			}
		}
	}

	return false
}

// NormalizeType maps a type name to the spelling the warehouse reports back,
// dropping parameters, so definitions and described columns can be compared.
func (d Dialect) NormalizeType(dataType string) string {
	base := BaseType(dataType)
	if canonical, ok := d.synonyms[base]; ok {
		return canonical
	}

	return base
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}

	return m
}
