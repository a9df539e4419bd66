// Package render turns an ER graph into a diagram artifact.
package render

import (
	"context"
	"strings"

	"ucmodeler/internal/models"
)

// Formats accepted by the ERD endpoints.
const (
	FormatAuto    = "auto"
	FormatSVG     = "svg"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
	FormatNetwork = "network"
	FormatJSON    = "json"
)

// Renderer names reported in Diagram.Renderer.
const (
	NameGraphviz = "graphviz"
	NameNetwork  = "network"
	NameDOT      = "dot"
	NameMermaid  = "mermaid"
	NameJSON     = "json"
)

// Diagram is a rendered artifact. DOT carries the DOT source the artifact was
// built from, whichever renderer produced it.
type Diagram struct {
	Renderer    string `json:"renderer"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	DOT         string `json:"dot,omitempty"`
}

type Renderer interface {
	Name() string
	Render(ctx context.Context, g *models.ERGraph) (*Diagram, error)
}

// ParseFormat returns the canonical format for s, treating "" as auto.
func ParseFormat(s string) (string, bool) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return FormatAuto, true
	case FormatAuto, FormatSVG, FormatDOT, FormatMermaid, FormatNetwork, FormatJSON:
		return f, true
	default:
		return "", false
	}
}
