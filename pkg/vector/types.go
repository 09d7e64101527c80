// Package vector defines the vector-index abstraction used for semantic code
// search. The production backend is an external vector database reached over
// HTTP; tests and local development use the in-memory implementation.
package vector

import "context"

// Metadata keys present on code-chunk records.
const (
	MetaRepoName   = "repo_name"
	MetaFilePath   = "file_path"
	MetaChunkType  = "chunk_type"
	MetaClassName  = "class_name"
	MetaMethodName = "method_name"
	MetaContent    = "content"
	MetaType       = "type"
)

// Record is one vector with its metadata payload.
type Record struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// Filter selects records by exact metadata match. All entries must match.
type Filter map[string]string

// Query is a similarity search request.
type Query struct {
	Vector []float32
	TopK   int
	Filter Filter
	// IncludeValues requests the stored vectors in matches, not only metadata.
	IncludeValues bool
}

// Match is one similarity result.
type Match struct {
	ID       string
	Score    float64
	Values   []float32
	Metadata map[string]string
}

// Index is the vector database client surface.
type Index interface {
	// Upsert writes records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, records []Record) error
	// FetchByIDs returns the records that exist, keyed by ID. Missing IDs are
	// simply absent from the result.
	FetchByIDs(ctx context.Context, ids []string) (map[string]Record, error)
	// DeleteByFilter removes every record whose metadata matches the filter
	// and returns how many were removed.
	DeleteByFilter(ctx context.Context, filter Filter) (int, error)
	// DeleteByIDs removes the given records if present.
	DeleteByIDs(ctx context.Context, ids []string) error
	// Search runs a similarity query.
	Search(ctx context.Context, q Query) ([]Match, error)
}
