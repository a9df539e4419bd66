package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// Network renders a self-contained HTML page with a force-directed view of
// the graph. It needs nothing installed on the server.
type Network struct {
	tmpl *template.Template
}

func NewNetwork() *Network {
	return &Network{tmpl: template.Must(template.New("network").Parse(networkTemplate))}
}

func (n *Network) Name() string { return NameNetwork }

type networkNode struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

type networkLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

type networkPayload struct {
	Title string        `json:"title"`
	Nodes []networkNode `json:"nodes"`
	Links []networkLink `json:"links"`
}

func (n *Network) Render(_ context.Context, g *models.ERGraph) (*Diagram, error) {
	const op = "render.Network"

	payload := networkPayload{
		Title: g.Catalog + "." + g.Schema,
		Nodes: make([]networkNode, 0, len(g.Nodes)),
		Links: make([]networkLink, 0, len(g.Edges)),
	}
	for _, node := range g.Nodes {
		cols := make([]string, 0, len(node.Columns))
		for _, c := range node.Columns {
			cols = append(cols, c.Name+": "+c.DataType+c.Flags())
		}
		payload.Nodes = append(payload.Nodes, networkNode{ID: node.ID, Label: node.Label, Columns: cols})
	}
	for _, e := range g.Edges {
		payload.Links = append(payload.Links, networkLink{Source: e.Source, Target: e.Target, Label: e.Label()})
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.E(errs.RenderFailed, op, fmt.Errorf("marshal payload: %w", err))
	}

	data := struct {
		Title   string
		Payload template.JS
	}{
		Title:   payload.Title,
		Payload: template.JS(jsonBytes),
	}

	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, data); err != nil {
		return nil, errs.E(errs.RenderFailed, op, fmt.Errorf("execute template: %w", err))
	}

	return &Diagram{
		Renderer:    NameNetwork,
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
		DOT:         DOT(g),
	}, nil
}

const networkTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>ER diagram {{ .Title }}</title>
  <style>
    html, body { margin: 0; height: 100%; font-family: Helvetica, Arial, sans-serif; background: #fff; }
    #graph { width: 100%; height: 100%; }
    .table-node rect { fill: #fff; stroke: #888; }
    .table-node .header { fill: #e8e8e8; }
    .table-node text { font-size: 12px; }
    .link { stroke: #4b8bbe; stroke-width: 1.5px; }
    .link-label { font-size: 10px; fill: #555; }
  </style>
</head>
<body>
  <svg id="graph"></svg>
  <script src="https://cdnjs.cloudflare.com/ajax/libs/d3/7.8.5/d3.min.js"></script>
  <script>
    const payload = {{ .Payload }};
    const width = window.innerWidth;
    const height = window.innerHeight;
    const rowHeight = 16;

    const svg = d3.select("#graph").attr("viewBox", [0, 0, width, height]);
    svg.append("defs").append("marker")
      .attr("id", "arrow").attr("viewBox", "0 -5 10 10")
      .attr("refX", 10).attr("markerWidth", 8).attr("markerHeight", 8).attr("orient", "auto")
      .append("path").attr("d", "M0,-5L10,0L0,5").attr("fill", "#4b8bbe");

    const root = svg.append("g");
    svg.call(d3.zoom().on("zoom", (event) => root.attr("transform", event.transform)));

    const nodes = payload.nodes.map(n => Object.assign({}, n, {
      w: 12 + 7 * Math.max(n.label.length, ...n.columns.map(c => c.length), 4),
      h: rowHeight * (n.columns.length + 1) + 6,
    }));
    const links = payload.links.map(l => Object.assign({}, l));

    const simulation = d3.forceSimulation(nodes)
      .force("link", d3.forceLink(links).id(d => d.id).distance(220))
      .force("charge", d3.forceManyBody().strength(-900))
      .force("center", d3.forceCenter(width / 2, height / 2))
      .force("collide", d3.forceCollide(d => Math.max(d.w, d.h) / 2 + 10));

    const link = root.append("g").selectAll("line").data(links).join("line")
      .attr("class", "link").attr("marker-end", "url(#arrow)");
    const linkLabel = root.append("g").selectAll("text").data(links).join("text")
      .attr("class", "link-label").text(d => d.label);

    const node = root.append("g").selectAll("g").data(nodes).join("g")
      .attr("class", "table-node")
      .call(d3.drag()
        .on("start", (event, d) => { if (!event.active) simulation.alphaTarget(0.3).restart(); d.fx = d.x; d.fy = d.y; })
        .on("drag", (event, d) => { d.fx = event.x; d.fy = event.y; })
        .on("end", (event, d) => { if (!event.active) simulation.alphaTarget(0); d.fx = null; d.fy = null; }));

    node.append("rect").attr("width", d => d.w).attr("height", d => d.h).attr("rx", 3);
    node.append("rect").attr("class", "header").attr("width", d => d.w).attr("height", rowHeight + 2);
    node.append("text").attr("x", 6).attr("y", rowHeight - 2).style("font-weight", "bold").text(d => d.label);
    node.each(function (d) {
      const g = d3.select(this);
      d.columns.forEach((c, i) => {
        g.append("text").attr("x", 6).attr("y", rowHeight * (i + 2)).text(c);
      });
    });

    simulation.on("tick", () => {
      link
        .attr("x1", d => d.source.x).attr("y1", d => d.source.y)
        .attr("x2", d => d.target.x).attr("y2", d => d.target.y);
      linkLabel
        .attr("x", d => (d.source.x + d.target.x) / 2)
        .attr("y", d => (d.source.y + d.target.y) / 2);
      node.attr("transform", d => "translate(" + (d.x - d.w / 2) + "," + (d.y - d.h / 2) + ")");
    });
  </script>
</body>
</html>
`
