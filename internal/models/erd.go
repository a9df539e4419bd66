package models

import (
	"fmt"
	"strings"
)

// GraphColumn is a column line inside a table node.
type GraphColumn struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	IsPK     bool   `json:"is_pk"`
	IsFK     bool   `json:"is_fk"`
}

// Flags returns the " [PK, FK]" suffix shown after a column, or "".
func (c GraphColumn) Flags() string {
	var flags []string
	if c.IsPK {
		flags = append(flags, "PK")
	}
	if c.IsFK {
		flags = append(flags, "FK")
	}
	if len(flags) == 0 {
		return ""
	}

	return " [" + strings.Join(flags, ", ") + "]"
}

type Node struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Columns []GraphColumn `json:"columns"`
}

// Edge points from the referencing (child) table to the referenced one.
type Edge struct {
	Name          string   `json:"name"`
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	SourceColumns []string `json:"source_columns"`
	TargetColumns []string `json:"target_columns"`
}

// Pairs returns "c1->p1, c2->p2" for the edge's column mapping.
func (e Edge) Pairs() string {
	if len(e.SourceColumns) == 0 || len(e.SourceColumns) != len(e.TargetColumns) {
		return ""
	}

	pairs := make([]string, len(e.SourceColumns))
	for i := range e.SourceColumns {
		pairs[i] = e.SourceColumns[i] + "->" + e.TargetColumns[i]
	}

	return strings.Join(pairs, ", ")
}

// Label returns the constraint name followed by its column mapping.
func (e Edge) Label() string {
	if p := e.Pairs(); p != "" {
		return fmt.Sprintf("%s (%s)", e.Name, p)
	}

	return e.Name
}

// ERGraph is the read-only diagram model: tables as nodes, foreign keys as
// edges. It is rebuilt for every render.
type ERGraph struct {
	Catalog string `json:"catalog"`
	Schema  string `json:"schema"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

func (g *ERGraph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return Node{}, false
}
