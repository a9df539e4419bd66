package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// Graphviz lays the DOT source out with the dot binary and returns SVG.
type Graphviz struct {
	bin      string
	lookPath func(string) (string, error)
}

func NewGraphviz(bin string) *Graphviz {
	if bin == "" {
		bin = "dot"
	}

	return &Graphviz{bin: bin, lookPath: exec.LookPath}
}

func (g *Graphviz) Name() string { return NameGraphviz }

// Available reports whether the dot binary can be found.
func (g *Graphviz) Available() bool {
	_, err := g.lookPath(g.bin)

	return err == nil
}

func (g *Graphviz) Render(ctx context.Context, graph *models.ERGraph) (*Diagram, error) {
	const op = "render.Graphviz"

	path, err := g.lookPath(g.bin)
	if err != nil {
		return nil, errs.E(errs.RenderUnavailable, op, err)
	}

	src := DOT(graph)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-Tsvg")
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, errs.E(errs.RenderUnavailable, op, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, errs.E(errs.RenderFailed, op, err)
	}

	return &Diagram{
		Renderer:    NameGraphviz,
		ContentType: "image/svg+xml",
		Body:        stdout.Bytes(),
		DOT:         src,
	}, nil
}
