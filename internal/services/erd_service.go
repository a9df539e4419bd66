package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/metrics"
	"ucmodeler/internal/models"
	"ucmodeler/internal/render"
	"ucmodeler/internal/repositories"
)

// BuildGraph derives the diagram model from metadata. Nodes are sorted by
// table name and edges by source, name and target, so equal metadata always
// yields an equal graph.
func BuildGraph(meta models.Metadata) models.ERGraph {
	g := models.ERGraph{
		Catalog: meta.Catalog,
		Schema:  meta.Schema,
		Nodes:   make([]models.Node, 0, len(meta.Tables)),
		Edges:   make([]models.Edge, 0, len(meta.Relationships)),
	}

	for _, t := range meta.Tables {
		n := models.Node{ID: t.Name, Label: nodeLabel(meta.Schema, t.Name)}
		for _, c := range t.Columns {
			n.Columns = append(n.Columns, models.GraphColumn{
				Name:     c.Name,
				DataType: c.DataType,
				Nullable: c.Nullable,
				IsPK:     c.IsPK,
				IsFK:     c.IsFK,
			})
		}
		g.Nodes = append(g.Nodes, n)
	}

	for _, r := range meta.Relationships {
		g.Edges = append(g.Edges, models.Edge{
			Name:          r.Name,
			Source:        r.ChildTable,
			Target:        r.ParentTable,
			SourceColumns: append([]string(nil), r.ChildColumns...),
			TargetColumns: append([]string(nil), r.ParentColumns...),
		})
	}

	sortGraph(&g)

	return g
}

// GraphFromDesign derives the diagram model of an unapplied design.
func GraphFromDesign(catalog, schema string, m models.DesignModel) models.ERGraph {
	g := models.ERGraph{Catalog: catalog, Schema: schema, Nodes: []models.Node{}, Edges: []models.Edge{}}

	fkCols := map[string]map[string]bool{}
	for _, r := range m.Relationships {
		r = NormalizeForeignKey(r)
		if fkCols[r.SourceTable] == nil {
			fkCols[r.SourceTable] = map[string]bool{}
		}
		for _, c := range r.SourceColumns {
			fkCols[r.SourceTable][c] = true
		}
		g.Edges = append(g.Edges, models.Edge{
			Name:          r.Name,
			Source:        r.SourceTable,
			Target:        r.TargetTable,
			SourceColumns: append([]string(nil), r.SourceColumns...),
			TargetColumns: append([]string(nil), r.TargetColumns...),
		})
	}

	for _, t := range m.Tables {
		n := models.Node{ID: t.Name, Label: nodeLabel(schema, t.Name)}
		for _, c := range t.Columns {
			n.Columns = append(n.Columns, models.GraphColumn{
				Name:     c.Name,
				DataType: c.Type,
				Nullable: c.Nullable && !c.PrimaryKey,
				IsPK:     c.PrimaryKey,
				IsFK:     fkCols[t.Name][c.Name],
			})
		}
		g.Nodes = append(g.Nodes, n)
	}

	sortGraph(&g)

	return g
}

func nodeLabel(schema, table string) string {
	if schema == "" {
		return table
	}

	return schema + "." + table
}

func sortGraph(g *models.ERGraph) {
	sort.SliceStable(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	sort.SliceStable(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Target < b.Target
	})
}

// ERDService renders diagrams. The primary renderer is chosen once at
// startup; when it turns out to be unavailable at call time the fallback
// renders the same graph.
type ERDService struct {
	schema   *SchemaService
	primary  render.Renderer
	fallback render.Renderer
	byFormat map[string]render.Renderer
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewERDService(
	schema *SchemaService,
	primary render.Renderer,
	graphviz *render.Graphviz,
	network *render.Network,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ERDService {
	return &ERDService{
		schema:   schema,
		primary:  primary,
		fallback: network,
		byFormat: map[string]render.Renderer{
			render.FormatSVG:     graphviz,
			render.FormatNetwork: network,
			render.FormatDOT:     render.DOTText{},
			render.FormatMermaid: render.Mermaid{},
			render.FormatJSON:    render.JSON{},
		},
		metrics: m,
		log:     log,
	}
}

// Render reads the schema metadata and renders it. A metadata failure is
// returned as is and never reaches a renderer.
func (s *ERDService) Render(ctx context.Context, wh *repositories.WarehouseRepository, catalog, schema, format string) (*render.Diagram, error) {
	meta, err := s.schema.FetchMetadata(ctx, wh, catalog, schema)
	if err != nil {
		return nil, err
	}

	g := BuildGraph(*meta)

	return s.RenderGraph(ctx, &g, format)
}

// RenderGraph renders an already built graph in the requested format.
func (s *ERDService) RenderGraph(ctx context.Context, g *models.ERGraph, format string) (*render.Diagram, error) {
	const op = "erd.Render"

	f, ok := render.ParseFormat(format)
	if !ok {
		return nil, errs.Newf(errs.Validation, op, "unknown diagram format %q", format)
	}

	if f != render.FormatAuto {
		return s.renderWith(ctx, s.byFormat[f], g)
	}

	d, err := s.renderWith(ctx, s.primary, g)
	if err == nil {
		return d, nil
	}
	if !errs.Is(err, errs.RenderUnavailable) || s.primary.Name() == s.fallback.Name() {
		return nil, errs.E(errs.RenderFailed, op, err)
	}

	s.log.Warn().Err(err).Str("fallback", s.fallback.Name()).Msg("primary renderer unavailable")
	s.metrics.RenderFallbacks.Inc()

	d, err = s.renderWith(ctx, s.fallback, g)
	if err != nil {
		return nil, errs.E(errs.RenderFailed, op, err)
	}

	return d, nil
}

func (s *ERDService) renderWith(ctx context.Context, r render.Renderer, g *models.ERGraph) (*render.Diagram, error) {
	d, err := r.Render(ctx, g)
	s.metrics.Renders.WithLabelValues(r.Name(), metrics.Outcome(err)).Inc()

	return d, err
}
