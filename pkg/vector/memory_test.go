package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_UpsertRejectsWrongDimension(t *testing.T) {
	idx := NewMemoryIndex(4)

	err := idx.Upsert(context.Background(), []Record{
		{ID: "a", Values: []float32{1, 0, 0}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestMemoryIndex_UpsertReplacesExisting(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]string{MetaFilePath: "Old.java"}},
	}))
	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "a", Values: []float32{0, 1}, Metadata: map[string]string{MetaFilePath: "New.java"}},
	}))

	got, err := idx.FetchByIDs(ctx, []string{"a", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New.java", got["a"].Metadata[MetaFilePath])
}

func TestMemoryIndex_SearchFiltersAndRanks(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "close", Values: []float32{1, 0.1}, Metadata: map[string]string{MetaRepoName: "billing"}},
		{ID: "far", Values: []float32{0, 1}, Metadata: map[string]string{MetaRepoName: "billing"}},
		{ID: "other-repo", Values: []float32{1, 0}, Metadata: map[string]string{MetaRepoName: "orders"}},
	}))

	matches, err := idx.Search(ctx, Query{
		Vector: []float32{1, 0},
		TopK:   10,
		Filter: Filter{MetaRepoName: "billing"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "close", matches[0].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryIndex_DeleteByFilter(t *testing.T) {
	idx := NewMemoryIndex(1)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "a", Values: []float32{1}, Metadata: map[string]string{MetaFilePath: "A.java", MetaRepoName: "billing"}},
		{ID: "b", Values: []float32{1}, Metadata: map[string]string{MetaFilePath: "A.java", MetaRepoName: "orders"}},
		{ID: "c", Values: []float32{1}, Metadata: map[string]string{MetaFilePath: "B.java", MetaRepoName: "billing"}},
	}))

	deleted, err := idx.DeleteByFilter(ctx, Filter{MetaRepoName: "billing", MetaFilePath: "A.java"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	got, err := idx.FetchByIDs(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.NotContains(t, got, "a")
	assert.Contains(t, got, "b")
	assert.Contains(t, got, "c")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&StatusError{Code: 503, Message: "overloaded"}))
	assert.False(t, IsTransient(&StatusError{Code: 404, Message: "not found"}))
	assert.False(t, IsTransient(context.DeadlineExceeded))
}
