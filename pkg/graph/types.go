// Package graph defines the code-knowledge-graph abstraction. Nodes mirror
// the entities extracted from source files; edges carry the structural
// relationships between them. The production backend is an external graph
// database; tests use the in-memory implementation.
package graph

import (
	"context"
	"fmt"
)

// NodeLabel enumerates the node kinds stored in the graph.
type NodeLabel string

const (
	LabelRepository NodeLabel = "Repository"
	LabelType       NodeLabel = "Type"
	LabelMethod     NodeLabel = "Method"
	LabelField      NodeLabel = "Field"
	LabelAnnotation NodeLabel = "Annotation"
)

// RelationshipKind is the closed set of edge kinds. Query text never embeds
// user input; the relationship kind is the only value interpolated into a
// query, and Valid gates it first.
type RelationshipKind string

const (
	RelExtends        RelationshipKind = "EXTENDS"
	RelImplements     RelationshipKind = "IMPLEMENTS"
	RelDeclares       RelationshipKind = "DECLARES"
	RelCalls          RelationshipKind = "CALLS"
	RelInjects        RelationshipKind = "INJECTS"
	RelReturns        RelationshipKind = "RETURNS"
	RelAccepts        RelationshipKind = "ACCEPTS"
	RelThrows         RelationshipKind = "THROWS"
	RelUses           RelationshipKind = "USES"
	RelAnnotatedBy    RelationshipKind = "ANNOTATED_BY"
	RelTypeDependency RelationshipKind = "TYPE_DEPENDENCY"
)

var relationshipKinds = map[RelationshipKind]struct{}{
	RelExtends: {}, RelImplements: {}, RelDeclares: {}, RelCalls: {},
	RelInjects: {}, RelReturns: {}, RelAccepts: {}, RelThrows: {},
	RelUses: {}, RelAnnotatedBy: {}, RelTypeDependency: {},
}

// Valid reports whether k is one of the known relationship kinds.
func (k RelationshipKind) Valid() bool {
	_, ok := relationshipKinds[k]
	return ok
}

// ErrUnknownRelationship is returned for relationship kinds outside the
// closed set.
var ErrUnknownRelationship = fmt.Errorf("graph: unknown relationship kind")

// Node is one graph node keyed by ID within a repository.
type Node struct {
	ID         string
	Label      NodeLabel
	Repository string
	Properties map[string]any
}

// Edge connects two nodes by ID.
type Edge struct {
	FromID     string
	ToID       string
	Kind       RelationshipKind
	Repository string
}

// Row is one result row of a graph query, keyed by return alias.
type Row map[string]any

// Store is the graph database client surface.
type Store interface {
	// MergeNode creates the node or updates its properties if it exists.
	MergeNode(ctx context.Context, n Node) error
	// MergeEdge creates the edge if both endpoints exist. Edges referencing
	// missing nodes are dropped, not created half-dangling.
	MergeEdge(ctx context.Context, e Edge) error
	// DeleteRepository removes all nodes and edges belonging to a repository.
	DeleteRepository(ctx context.Context, repository string) error
	// DeleteNodes removes the given nodes and their attached edges.
	DeleteNodes(ctx context.Context, repository string, ids []string) error
	// NodeIDsByFile returns the IDs of nodes extracted from the given source
	// file. Nodes without a file_path property (annotations, the repository
	// node) are never returned.
	NodeIDsByFile(ctx context.Context, repository, filePath string) ([]string, error)
	// Run executes a parameterized query and returns result rows.
	Run(ctx context.Context, query string, params map[string]any) ([]Row, error)
}
