package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

func sampleGraph() *models.ERGraph {
	return &models.ERGraph{
		Catalog: "main",
		Schema:  "sales",
		Nodes: []models.Node{
			{ID: "customers", Label: "sales.customers", Columns: []models.GraphColumn{
				{Name: "id", DataType: "BIGINT", IsPK: true},
				{Name: "tags", DataType: "ARRAY<STRING>", Nullable: true},
			}},
			{ID: "orders", Label: "sales.orders", Columns: []models.GraphColumn{
				{Name: "id", DataType: "BIGINT", IsPK: true},
				{Name: "customer_id", DataType: "BIGINT", IsFK: true},
			}},
		},
		Edges: []models.Edge{{
			Name:          "fk_orders_customers",
			Source:        "orders",
			Target:        "customers",
			SourceColumns: []string{"customer_id"},
			TargetColumns: []string{"id"},
		}},
	}
}

func TestDOT(t *testing.T) {
	src := DOT(sampleGraph())

	assert.True(t, strings.HasPrefix(strings.TrimSpace(src), "digraph"))
	assert.Contains(t, src, "rankdir")
	assert.Contains(t, src, "<b>sales.customers</b>")
	assert.Contains(t, src, "customer_id: BIGINT [FK]")
	assert.Contains(t, src, "ARRAY&lt;STRING&gt;")
	assert.Contains(t, src, "fk_orders_customers (customer_id->id)")
	assert.Contains(t, src, edgeColor)
}

func TestDOT_Deterministic(t *testing.T) {
	assert.Equal(t, DOT(sampleGraph()), DOT(sampleGraph()))
}

func TestGraphviz_Unavailable(t *testing.T) {
	gv := NewGraphviz("dot")
	gv.lookPath = func(string) (string, error) { return "", errors.New("executable file not found in $PATH") }

	assert.False(t, gv.Available())

	_, err := gv.Render(context.Background(), sampleGraph())
	require.Error(t, err)
	assert.Equal(t, errs.RenderUnavailable, errs.KindOf(err))
}

func fakeDot(t *testing.T, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for dot")
	}

	path := filepath.Join(t.TempDir(), "dot")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	return path
}

func TestGraphviz_Render(t *testing.T) {
	gv := NewGraphviz(fakeDot(t, "cat > /dev/null\necho '<svg>ok</svg>'\n"))

	d, err := gv.Render(context.Background(), sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, NameGraphviz, d.Renderer)
	assert.Equal(t, "image/svg+xml", d.ContentType)
	assert.Contains(t, string(d.Body), "<svg>ok</svg>")
	assert.Contains(t, d.DOT, "digraph")
}

func TestGraphviz_RenderFailed(t *testing.T) {
	gv := NewGraphviz(fakeDot(t, "cat > /dev/null\necho 'syntax error in line 1' >&2\nexit 1\n"))

	_, err := gv.Render(context.Background(), sampleGraph())
	require.Error(t, err)
	assert.Equal(t, errs.RenderFailed, errs.KindOf(err))
	assert.Contains(t, err.Error(), "syntax error in line 1")
}

func TestNetwork_Render(t *testing.T) {
	d, err := NewNetwork().Render(context.Background(), sampleGraph())
	require.NoError(t, err)

	body := string(d.Body)
	assert.Equal(t, NameNetwork, d.Renderer)
	assert.Contains(t, d.ContentType, "text/html")
	assert.Contains(t, body, "<title>ER diagram main.sales</title>")
	assert.Contains(t, body, `"id":"orders"`)
	assert.Contains(t, body, `"source":"orders","target":"customers"`)
	assert.Contains(t, body, "d3.forceSimulation")
}

func TestMermaidText(t *testing.T) {
	g := sampleGraph()
	g.Nodes = append(g.Nodes, models.Node{ID: "order_details", Label: "sales.order_details", Columns: []models.GraphColumn{
		{Name: "order_id", DataType: "BIGINT", IsPK: true, IsFK: true},
		{Name: "note", DataType: "character varying"},
	}})
	g.Edges = append(g.Edges, models.Edge{
		Name: "fk_details_orders", Source: "order_details", Target: "orders",
		SourceColumns: []string{"order_id"}, TargetColumns: []string{"id"},
	})

	expected := `erDiagram
    CUSTOMERS ||--o{ ORDERS : "fk_orders_customers"
    ORDERS ||--|| ORDER_DETAILS : "fk_details_orders"

    CUSTOMERS {
        bigint id PK
        array tags
    }

    ORDERS {
        bigint id PK
        bigint customer_id FK
    }

    ORDER_DETAILS {
        bigint order_id PK, FK
        varchar note
    }

`
	assert.Equal(t, expected, MermaidText(g))
}

func TestJSON_Render(t *testing.T) {
	d, err := JSON{}.Render(context.Background(), sampleGraph())
	require.NoError(t, err)
	assert.Contains(t, string(d.Body), `"graph":{"catalog":"main","schema":"sales"`)
	assert.Contains(t, string(d.Body), `"dot":"`)
	assert.Contains(t, d.DOT, "digraph")
}

func TestSelect(t *testing.T) {
	network := NewNetwork()

	missing := NewGraphviz("dot")
	missing.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	assert.Equal(t, NameNetwork, Select(missing, network, zerolog.Nop()).Name())

	present := NewGraphviz("dot")
	present.lookPath = func(string) (string, error) { return "/usr/bin/dot", nil }
	assert.Equal(t, NameGraphviz, Select(present, network, zerolog.Nop()).Name())
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatAuto, f)

	f, ok = ParseFormat("Mermaid")
	assert.True(t, ok)
	assert.Equal(t, FormatMermaid, f)

	_, ok = ParseFormat("png")
	assert.False(t, ok)
}
