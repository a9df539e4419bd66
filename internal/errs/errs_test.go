package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect Kind
	}{
		{
			name:   "plain error is internal",
			err:    errors.New("boom"),
			expect: Internal,
		},
		{
			name:   "direct kind",
			err:    E(Execution, "run", errors.New("syntax error")),
			expect: Execution,
		},
		{
			name:   "wrapped kind",
			err:    fmt.Errorf("create table: %w", E(Validation, "build", errors.New("bad name"))),
			expect: Validation,
		},
		{
			name:   "missing settings",
			err:    Missing("resolve", "DATABRICKS_TOKEN"),
			expect: Configuration,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, KindOf(tc.err))
		})
	}
}

func TestE_NilIsNil(t *testing.T) {
	assert.NoError(t, E(Internal, "noop", nil))
}

func TestError_Message(t *testing.T) {
	err := E(Execution, "query", errors.New("PERMISSION_DENIED"))
	assert.Equal(t, "query: PERMISSION_DENIED", err.Error())

	missing := Missing("resolve connection", "DATABRICKS_HOST", "DATABRICKS_TOKEN")
	assert.Contains(t, missing.Error(), "DATABRICKS_HOST, DATABRICKS_TOKEN")
	assert.Equal(t, []string{"DATABRICKS_HOST", "DATABRICKS_TOKEN"}, MissingOf(missing))
	assert.True(t, errors.Is(fmt.Errorf("outer: %w", missing), missing))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Configuration))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Execution))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(MetadataQuery))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(RenderUnavailable))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(RenderFailed))
}
