package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeNode(id, repo, fqn string) Node {
	return Node{
		ID:         id,
		Label:      LabelType,
		Repository: repo,
		Properties: map[string]any{"fqn": fqn, "file_path": "src/main/java/" + fqn + ".java"},
	}
}

func TestMemoryStore_MergeEdgeDropsDanglingEndpoints(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeNode(ctx, typeNode("a", "billing", "com.acme.A")))

	// "b" was never merged, so the edge must not be created.
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "a", ToID: "b", Kind: RelExtends, Repository: "billing"}))
	assert.Equal(t, 0, s.EdgeCount())

	require.NoError(t, s.MergeNode(ctx, typeNode("b", "billing", "com.acme.B")))
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "a", ToID: "b", Kind: RelExtends, Repository: "billing"}))
	assert.Equal(t, 1, s.EdgeCount())

	// Merging the same edge again is a no-op.
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "a", ToID: "b", Kind: RelExtends, Repository: "billing"}))
	assert.Equal(t, 1, s.EdgeCount())
}

func TestMemoryStore_MergeEdgeRejectsUnknownKind(t *testing.T) {
	s := NewMemoryStore()
	err := s.MergeEdge(context.Background(), Edge{FromID: "a", ToID: "b", Kind: "FRIENDS_WITH"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestMemoryStore_NeighborQueryBothDirections(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeNode(ctx, typeNode("base", "billing", "com.acme.Base")))
	require.NoError(t, s.MergeNode(ctx, typeNode("child1", "billing", "com.acme.Child1")))
	require.NoError(t, s.MergeNode(ctx, typeNode("child2", "billing", "com.acme.Child2")))
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "child1", ToID: "base", Kind: RelExtends, Repository: "billing"}))
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "child2", ToID: "base", Kind: RelExtends, Repository: "billing"}))

	q, err := NeighborQuery(RelExtends, DirectionOut)
	require.NoError(t, err)
	rows, err := s.Run(ctx, q, map[string]any{"id": "child1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "base", rows[0]["id"])

	q, err = NeighborQuery(RelExtends, DirectionIn)
	require.NoError(t, err)
	rows, err = s.Run(ctx, q, map[string]any{"id": "base"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "child1", rows[0]["id"])
	assert.Equal(t, "child2", rows[1]["id"])
}

func TestNeighborQuery_RejectsUnknownKind(t *testing.T) {
	_, err := NeighborQuery("DROP_ALL", DirectionOut)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestMemoryStore_DeleteRepositoryScopesToRepo(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeNode(ctx, typeNode("a", "billing", "com.acme.A")))
	require.NoError(t, s.MergeNode(ctx, typeNode("b", "billing", "com.acme.B")))
	require.NoError(t, s.MergeNode(ctx, typeNode("x", "orders", "com.acme.X")))
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "a", ToID: "b", Kind: RelUses, Repository: "billing"}))

	require.NoError(t, s.DeleteRepository(ctx, "billing"))

	assert.Equal(t, 1, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())
}

func TestMemoryStore_DeleteNodesDropsAttachedEdges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeNode(ctx, typeNode("a", "billing", "com.acme.A")))
	require.NoError(t, s.MergeNode(ctx, typeNode("b", "billing", "com.acme.B")))
	require.NoError(t, s.MergeEdge(ctx, Edge{FromID: "a", ToID: "b", Kind: RelCalls, Repository: "billing"}))

	require.NoError(t, s.DeleteNodes(ctx, "billing", []string{"b"}))

	assert.Equal(t, 1, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())
}

func TestMemoryStore_NodeIDsByFileScopesToRepoAndPath(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.MergeNode(ctx, typeNode("a", "billing", "com.acme.A")))
	require.NoError(t, s.MergeNode(ctx, typeNode("b", "billing", "com.acme.B")))
	require.NoError(t, s.MergeNode(ctx, typeNode("x", "orders", "com.acme.A")))
	// Annotation nodes carry no file_path and are never file-scoped.
	require.NoError(t, s.MergeNode(ctx, Node{
		ID: "ann", Label: LabelAnnotation, Repository: "billing",
		Properties: map[string]any{"fqn": "com.acme.Service"},
	}))

	ids, err := s.NodeIDsByFile(ctx, "billing", "src/main/java/com.acme.A.java")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	ids, err = s.NodeIDsByFile(ctx, "billing", "src/main/java/com.acme.Missing.java")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
