package models

import "time"

// Repository identifies a target source repository. Identity is the pair
// (canonical URL, branch); Name is the derived stable key used in vector
// metadata and graph nodes.
type Repository struct {
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	Branch        string    `json:"branch"`
	LocalPath     string    `json:"local_path,omitempty"`
	Language      string    `json:"language,omitempty"`
	DomainTags    []string  `json:"domain_tags,omitempty"`
	LastIndexedAt time.Time `json:"last_indexed_at,omitempty"`
}

// ChangeType enumerates file-level change kinds. Renames are modeled as
// DELETE(old) + ADD(new).
type ChangeType string

const (
	ChangeAdd    ChangeType = "ADD"
	ChangeModify ChangeType = "MODIFY"
	ChangeDelete ChangeType = "DELETE"
)

// ChangedFile drives incremental sync.
type ChangedFile struct {
	RelativePath string     `json:"relative_path"`
	ChangeType   ChangeType `json:"change_type"`
}

// IndexState is the per-repository marker recording the last synced commit.
// Persisted inside the vector index as a distinguished metadata vector so a
// fresh process recovers without consulting any other store.
type IndexState struct {
	LastIndexedCommit string    `json:"last_indexed_commit"`
	LastIndexedAt     time.Time `json:"last_indexed_at"`
	VectorCount       int       `json:"vector_count"`
}
