package render

import (
	"context"
	"encoding/json"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// JSON returns the graph itself together with its DOT source.
type JSON struct{}

func (JSON) Name() string { return NameJSON }

func (JSON) Render(_ context.Context, g *models.ERGraph) (*Diagram, error) {
	src := DOT(g)

	body, err := json.Marshal(struct {
		Graph *models.ERGraph `json:"graph"`
		DOT   string          `json:"dot"`
	}{Graph: g, DOT: src})
	if err != nil {
		return nil, errs.E(errs.RenderFailed, "render.JSON", err)
	}

	return &Diagram{
		Renderer:    NameJSON,
		ContentType: "application/json; charset=utf-8",
		Body:        body,
		DOT:         src,
	}, nil
}
