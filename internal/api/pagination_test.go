package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(45), p.TotalCount)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.Equal(t, 20, p.Offset())
}

func TestNewPaginationFirstAndLastPage(t *testing.T) {
	first := NewPagination(1, 20, 45)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)
	assert.Equal(t, 0, first.Offset())

	last := NewPagination(3, 20, 45)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
}

func TestNewPaginationNormalizesInput(t *testing.T) {
	p := NewPagination(0, -5, 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PerPage)
}

func TestListResponseResultsAlias(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"}, NewPagination(1, 20, 2))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, string(decoded["data"]), string(decoded["results"]))
}

func TestListResponseNilData(t *testing.T) {
	resp := NewListResponse[string](nil, NewPagination(1, 20, 0))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}
