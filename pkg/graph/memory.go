package graph

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development. Run
// understands the query shapes produced by NeighborQuery.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]Node
	edges []Edge
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[string]Node)}
}

// NodeCount returns the number of stored nodes.
func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of stored edges.
func (s *MemoryStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

func (s *MemoryStore) MergeNode(_ context.Context, n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.nodes[n.ID]; ok {
		if existing.Properties == nil {
			existing.Properties = map[string]any{}
		}
		for k, v := range n.Properties {
			existing.Properties[k] = v
		}
		existing.Label = n.Label
		existing.Repository = n.Repository
		s.nodes[n.ID] = existing
		return nil
	}
	props := make(map[string]any, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	n.Properties = props
	s.nodes[n.ID] = n
	return nil
}

func (s *MemoryStore) MergeEdge(_ context.Context, e Edge) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRelationship, e.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[e.FromID]; !ok {
		return nil
	}
	if _, ok := s.nodes[e.ToID]; !ok {
		return nil
	}
	for _, existing := range s.edges {
		if existing == e {
			return nil
		}
	}
	s.edges = append(s.edges, e)
	return nil
}

func (s *MemoryStore) DeleteRepository(_ context.Context, repository string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.nodes {
		if n.Repository == repository {
			delete(s.nodes, id)
		}
	}
	s.edges = s.filterEdgesLocked()
	return nil
}

func (s *MemoryStore) DeleteNodes(_ context.Context, repository string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok && n.Repository == repository {
			delete(s.nodes, id)
		}
	}
	s.edges = s.filterEdgesLocked()
	return nil
}

func (s *MemoryStore) NodeIDsByFile(_ context.Context, repository, filePath string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, n := range s.nodes {
		if n.Repository == repository && n.Properties["file_path"] == filePath {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// filterEdgesLocked drops edges whose endpoints no longer exist.
func (s *MemoryStore) filterEdgesLocked() []Edge {
	kept := s.edges[:0]
	for _, e := range s.edges {
		if _, ok := s.nodes[e.FromID]; !ok {
			continue
		}
		if _, ok := s.nodes[e.ToID]; !ok {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

var neighborQueryRe = regexp.MustCompile(
	`^MATCH \(a \{id: \$id\}\)(<-|-)\[:([A-Z_]+)\](->|-)\(b\) RETURN `)

func (s *MemoryStore) Run(_ context.Context, query string, params map[string]any) ([]Row, error) {
	m := neighborQueryRe.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("graph: unsupported query: %s", query)
	}
	kind := RelationshipKind(m[2])
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRelationship, kind)
	}
	outgoing := m[1] == "-" && m[3] == "->"

	anchor, _ := params["id"].(string)
	if anchor == "" {
		return nil, fmt.Errorf("graph: query requires an id parameter")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []Row
	for _, e := range s.edges {
		if e.Kind != kind {
			continue
		}
		var neighborID string
		switch {
		case outgoing && e.FromID == anchor:
			neighborID = e.ToID
		case !outgoing && e.ToID == anchor:
			neighborID = e.FromID
		default:
			continue
		}
		n, ok := s.nodes[neighborID]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			"id":        n.ID,
			"label":     string(n.Label),
			"fqn":       n.Properties["fqn"],
			"file_path": n.Properties["file_path"],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["id"].(string) < rows[j]["id"].(string)
	})
	return rows, nil
}
