package render

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/emicklei/dot"

	"ucmodeler/internal/models"
)

const (
	headerColor = "#e8e8e8"
	edgeColor   = "#4b8bbe"
)

// DOT builds the Graphviz source for g: one HTML-table node per table and
// one edge per foreign key, child to parent.
func DOT(g *models.ERGraph) string {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")
	graph.Attr("bgcolor", "white")

	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = graph.Node(nodeID(g.Schema, n.ID)).
			Attr("shape", "plain").
			Attr("fontname", "Helvetica").
			Attr("label", dot.HTML(tableLabel(n)))
	}

	for _, e := range g.Edges {
		from, ok := nodes[e.Source]
		if !ok {
			continue
		}
		to, ok := nodes[e.Target]
		if !ok {
			continue
		}
		graph.Edge(from, to).
			Attr("color", edgeColor).
			Attr("arrowsize", "0.8").
			Attr("label", e.Label())
	}

	return graph.String()
}

func nodeID(schema, table string) string {
	return strings.ReplaceAll(schema+"_"+table, "-", "_")
}

func tableLabel(n models.Node) string {
	var sb strings.Builder

	sb.WriteString(`<table border="0" cellborder="1" cellspacing="0">`)
	fmt.Fprintf(&sb, `<tr><td bgcolor="%s"><b>%s</b></td></tr>`, headerColor, html.EscapeString(n.Label))
	for _, c := range n.Columns {
		fmt.Fprintf(&sb, `<tr><td align="left">%s</td></tr>`,
			html.EscapeString(c.Name+": "+c.DataType+c.Flags()))
	}
	sb.WriteString(`</table>`)

	return sb.String()
}

// DOTText returns the DOT source itself as the artifact.
type DOTText struct{}

func (DOTText) Name() string { return NameDOT }

func (DOTText) Render(_ context.Context, g *models.ERGraph) (*Diagram, error) {
	src := DOT(g)

	return &Diagram{
		Renderer:    NameDOT,
		ContentType: "text/vnd.graphviz; charset=utf-8",
		Body:        []byte(src),
		DOT:         src,
	}, nil
}
