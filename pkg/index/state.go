package index

import (
	"fmt"
	"strconv"
	"time"

	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/vector"
)

// MetaTypeIndexState marks the per-repository metadata vector. It survives
// repository-scoped code deletes; it is the only trustworthy record of the
// last sync.
const MetaTypeIndexState = "INDEX_METADATA"

const (
	metaLastIndexedCommit = "last_indexed_commit"
	metaLastIndexedAt     = "last_indexed_at"
	metaVectorCount       = "vector_count"
)

// StateID returns the deterministic vector ID of a repository's index state.
func StateID(repo string) string {
	return "__metadata__:" + repo + ":index_state"
}

// stateRecord builds the metadata vector. The body is a non-zero placeholder
// of the index dimension; some vector stores reject all-zero vectors.
func stateRecord(repo string, dim int, st models.IndexState) vector.Record {
	values := make([]float32, dim)
	values[0] = 1
	return vector.Record{
		ID:     StateID(repo),
		Values: values,
		Metadata: map[string]string{
			vector.MetaType:       MetaTypeIndexState,
			vector.MetaRepoName:   repo,
			metaLastIndexedCommit: st.LastIndexedCommit,
			metaLastIndexedAt:     st.LastIndexedAt.UTC().Format(time.RFC3339),
			metaVectorCount:       strconv.Itoa(st.VectorCount),
		},
	}
}

// parseState reads an index state back out of its metadata vector.
func parseState(rec vector.Record) (models.IndexState, error) {
	if rec.Metadata[vector.MetaType] != MetaTypeIndexState {
		return models.IndexState{}, fmt.Errorf("record %s is not an index state vector", rec.ID)
	}
	st := models.IndexState{
		LastIndexedCommit: rec.Metadata[metaLastIndexedCommit],
	}
	if raw := rec.Metadata[metaLastIndexedAt]; raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.IndexState{}, fmt.Errorf("invalid last_indexed_at on %s: %w", rec.ID, err)
		}
		st.LastIndexedAt = at
	}
	if raw := rec.Metadata[metaVectorCount]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.IndexState{}, fmt.Errorf("invalid vector_count on %s: %w", rec.ID, err)
		}
		st.VectorCount = n
	}
	return st, nil
}
