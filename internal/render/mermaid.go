package render

import (
	"context"
	"fmt"
	"strings"

	"ucmodeler/internal/models"
)

// Mermaid exports the graph as a Mermaid erDiagram.
type Mermaid struct{}

func (Mermaid) Name() string { return NameMermaid }

func (Mermaid) Render(_ context.Context, g *models.ERGraph) (*Diagram, error) {
	return &Diagram{
		Renderer:    NameMermaid,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(MermaidText(g)),
		DOT:         DOT(g),
	}, nil
}

// MermaidText renders an erDiagram. A foreign key whose columns are exactly
// the child's primary key is one-to-one, anything else one-to-many.
func MermaidText(g *models.ERGraph) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	if len(g.Edges) > 0 {
		seen := make(map[string]bool)
		for _, e := range g.Edges {
			relType := "||--o{"
			if child, ok := g.Node(e.Source); ok && sameColumns(e.SourceColumns, pkColumns(child)) {
				relType = "||--||"
			}

			key := fmt.Sprintf("%s:%s:%s:%s", e.Target, relType, e.Source, e.Name)
			if seen[key] {
				continue
			}
			seen[key] = true

			sb.WriteString(fmt.Sprintf("    %s %s %s : %q\n",
				strings.ToUpper(e.Target),
				relType,
				strings.ToUpper(e.Source),
				e.Name))
		}
		sb.WriteString("\n")
	}

	for _, n := range g.Nodes {
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(n.ID)))

		for _, col := range n.Columns {
			var keys []string
			if col.IsPK {
				keys = append(keys, "PK")
			}
			if col.IsFK {
				keys = append(keys, "FK")
			}

			annotations := ""
			if len(keys) > 0 {
				annotations = " " + strings.Join(keys, ", ")
			}

			sb.WriteString(fmt.Sprintf("        %s %s%s\n", simplifyDataType(col.DataType), col.Name, annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func pkColumns(n models.Node) []string {
	var pk []string
	for _, c := range n.Columns {
		if c.IsPK {
			pk = append(pk, c.Name)
		}
	}

	return pk
}

func sameColumns(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}

	set := make(map[string]bool, len(b))
	for _, c := range b {
		set[strings.ToLower(c)] = true
	}
	for _, c := range a {
		if !set[strings.ToLower(c)] {
			return false
		}
	}

	return true
}

// simplifyDataType shortens a warehouse type to a single Mermaid token.
func simplifyDataType(dataType string) string {
	dt := strings.ToLower(strings.TrimSpace(dataType))

	switch {
	case dt == "":
		return "unknown"
	case dt == "integer":
		return "int"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case strings.HasPrefix(dt, "timestamp without time zone"), strings.HasPrefix(dt, "timestamp_ntz"):
		return "timestamp"
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case strings.HasPrefix(dt, "numeric"), strings.HasPrefix(dt, "decimal"):
		return "decimal"
	case dt == "double precision":
		return "double"
	case strings.HasPrefix(dt, "array"):
		return "array"
	case strings.HasPrefix(dt, "map"):
		return "map"
	case strings.HasPrefix(dt, "struct"):
		return "struct"
	default:
		return strings.NewReplacer(" ", "_", "(", "", ")", "", ",", "_").Replace(dt)
	}
}
