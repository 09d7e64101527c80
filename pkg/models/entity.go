package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// EntityKind is the tagged variant of a code entity.
type EntityKind string

const (
	EntityType       EntityKind = "TYPE"
	EntityMethod     EntityKind = "METHOD"
	EntityField      EntityKind = "FIELD"
	EntityAnnotation EntityKind = "ANNOTATION"
)

// CodeEntity is a parsed code element stored in the vector index and mirrored
// into the code graph. Methods and fields always belong to a declaring type.
type CodeEntity struct {
	ID           string     `json:"id"`
	RepositoryID string     `json:"repository_id"`
	Kind         EntityKind `json:"kind"`
	Name         string     `json:"name"`
	FQN          string     `json:"fqn"`
	FilePath     string     `json:"file_path"`
	StartLine    int        `json:"start_line"`
	EndLine      int        `json:"end_line"`
	Source       string     `json:"source,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Annotations  []string   `json:"annotations,omitempty"`
	Embedding    []float32  `json:"-"`
}

// EntityID derives the stable content-addressed entity ID from repository,
// fully-qualified name, and kind.
func EntityID(repositoryID, fqn string, kind EntityKind) string {
	h := sha256.Sum256([]byte(repositoryID + "|" + fqn + "|" + string(kind)))
	return hex.EncodeToString(h[:16])
}
