package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory Index used by tests and local development.
// It enforces a fixed dimension and scores by cosine similarity, matching
// the behavior the production backend is configured with.
type MemoryIndex struct {
	dim     int
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryIndex creates an empty index with the given dimension.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{
		dim:     dim,
		records: make(map[string]Record),
	}
}

// Len returns the number of stored records.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryIndex) Upsert(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if len(r.Values) != m.dim {
			return fmt.Errorf("%w: record %s has %d values, index dimension is %d",
				ErrDimensionMismatch, r.ID, len(r.Values), m.dim)
		}
	}
	for _, r := range records {
		m.records[r.ID] = cloneRecord(r)
	}
	return nil
}

func (m *MemoryIndex) FetchByIDs(_ context.Context, ids []string) (map[string]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Record, len(ids))
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out[id] = cloneRecord(r)
		}
	}
	return out, nil
}

func (m *MemoryIndex) DeleteByFilter(_ context.Context, filter Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, r := range m.records {
		if matchesFilter(r.Metadata, filter) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryIndex) DeleteByIDs(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, q Query) ([]Match, error) {
	if len(q.Vector) != m.dim {
		return nil, fmt.Errorf("%w: query has %d values, index dimension is %d",
			ErrDimensionMismatch, len(q.Vector), m.dim)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, r := range m.records {
		if !matchesFilter(r.Metadata, q.Filter) {
			continue
		}
		match := Match{
			ID:       r.ID,
			Score:    cosine(q.Vector, r.Values),
			Metadata: cloneMetadata(r.Metadata),
		}
		if q.IncludeValues {
			match.Values = append([]float32(nil), r.Values...)
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	return matches, nil
}

func matchesFilter(metadata map[string]string, filter Filter) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cloneRecord(r Record) Record {
	return Record{
		ID:       r.ID,
		Values:   append([]float32(nil), r.Values...),
		Metadata: cloneMetadata(r.Metadata),
	}
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
