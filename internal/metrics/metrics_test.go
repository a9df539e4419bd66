package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	m := New()
	reg := Registry(m.Collectors()...)

	m.Statements.WithLabelValues("query", Outcome(nil)).Inc()
	m.Statements.WithLabelValues("query", Outcome(errors.New("boom"))).Inc()
	m.RenderFallbacks.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Statements.WithLabelValues("query", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Statements.WithLabelValues("query", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderFallbacks))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
