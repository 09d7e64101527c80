// Package index implements the knowledge indexer: it keeps the vector index
// and the code graph in step with a repository's working copy, incrementally
// when possible.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/parser"
	"github.com/patchwright/patchwright/pkg/vector"
)

// SyncKind classifies what a sync run did.
type SyncKind string

const (
	SyncInitialFull SyncKind = "InitialFull"
	SyncIncremental SyncKind = "Incremental"
	SyncNoChanges   SyncKind = "NoChanges"
	SyncForcedFull  SyncKind = "ForcedFull"
)

// SyncResult reports the outcome of one sync run.
type SyncResult struct {
	Kind          SyncKind
	HeadCommit    string
	FilesAnalyzed int
	FilesChanged  int
	ChunksDeleted int
	ChunksCreated int
	EmbedElapsed  time.Duration
	TotalElapsed  time.Duration
}

// WorkingCopy is the view of a checked-out repository the indexer needs.
type WorkingCopy interface {
	// Head returns the current HEAD commit ID.
	Head(ctx context.Context) (string, error)
	// Diff lists the files changed between two commits, renames already
	// expanded to delete-plus-add.
	Diff(ctx context.Context, fromCommit, toCommit string) ([]models.ChangedFile, error)
	// ListFiles returns all tracked files as repository-relative paths.
	ListFiles(ctx context.Context) ([]string, error)
	// ReadFile reads one file by repository-relative path.
	ReadFile(relPath string) ([]byte, error)
}

// Embedder turns texts into vectors. Satisfied by the llm provider.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// stateFetchBackoff is the delay schedule for retrying transient failures
// while fetching the index state vector.
var stateFetchBackoff = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// Indexer synchronizes one repository's knowledge stores with its sources.
type Indexer struct {
	vec      vector.Index
	graph    graph.Store
	parser   parser.SourceParser
	embedder Embedder
	cfg      config.IndexConfig
	logger   *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewIndexer wires the indexer against its stores.
func NewIndexer(vec vector.Index, gr graph.Store, p parser.SourceParser, emb Embedder, cfg config.IndexConfig, logger *slog.Logger) *Indexer {
	return &Indexer{
		vec:      vec,
		graph:    gr,
		parser:   p,
		embedder: emb,
		cfg:      cfg,
		logger:   logger.With("service", "indexer"),
		sleep:    time.Sleep,
	}
}

// Sync brings the vector index and code graph up to date with the working
// copy's HEAD. force discards all code vectors first and reindexes from
// scratch; the index state vector is preserved either way.
func (i *Indexer) Sync(ctx context.Context, wc WorkingCopy, repo string, force bool) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{}

	head, err := wc.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	result.HeadCommit = head

	state, found, err := i.fetchState(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index state: %w", err)
	}

	var changed []models.ChangedFile
	switch {
	case force:
		result.Kind = SyncForcedFull
		deleted, err := i.deleteRepoVectors(ctx, repo)
		if err != nil {
			return nil, err
		}
		result.ChunksDeleted = deleted
		changed, err = i.allFilesAsAdds(ctx, wc)
		if err != nil {
			return nil, err
		}
	case !found:
		result.Kind = SyncInitialFull
		changed, err = i.allFilesAsAdds(ctx, wc)
		if err != nil {
			return nil, err
		}
	case state.LastIndexedCommit == head:
		result.Kind = SyncNoChanges
		result.TotalElapsed = time.Since(start)
		i.logger.InfoContext(ctx, "index up to date", "repo", repo, "commit", head)
		return result, nil
	default:
		result.Kind = SyncIncremental
		diff, err := wc.Diff(ctx, state.LastIndexedCommit, head)
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s..%s: %w", state.LastIndexedCommit, head, err)
		}
		for _, cf := range diff {
			if i.isSourceFile(cf.RelativePath) {
				changed = append(changed, cf)
			}
		}
	}

	if err := i.apply(ctx, wc, repo, changed, result); err != nil {
		return nil, err
	}

	newState := models.IndexState{
		LastIndexedCommit: head,
		LastIndexedAt:     time.Now(),
		VectorCount:       state.VectorCount - result.ChunksDeleted + result.ChunksCreated,
	}
	if newState.VectorCount < 0 {
		newState.VectorCount = result.ChunksCreated
	}
	if err := i.vec.Upsert(ctx, []vector.Record{stateRecord(repo, i.cfg.EmbeddingDim, newState)}); err != nil {
		return nil, fmt.Errorf("failed to persist index state: %w", err)
	}
	i.confirmState(ctx, repo, head)

	result.TotalElapsed = time.Since(start)
	i.logger.InfoContext(ctx, "sync completed",
		"repo", repo,
		"kind", string(result.Kind),
		"commit", head,
		"files", result.FilesAnalyzed,
		"chunks_created", result.ChunksCreated,
		"chunks_deleted", result.ChunksDeleted,
		"embed_elapsed", result.EmbedElapsed,
		"total_elapsed", result.TotalElapsed)
	return result, nil
}

// apply processes the changed files: per-file delete-then-upsert against the
// vector index, with the graph mirror written in parallel.
func (i *Indexer) apply(ctx context.Context, wc WorkingCopy, repo string, changed []models.ChangedFile, result *SyncResult) error {
	result.FilesChanged = len(changed)

	var records []vector.Record
	var nodes []graph.Node
	var edges []graph.Edge
	var staleNodes []string

	for _, cf := range changed {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.FilesAnalyzed++

		// Nodes recorded from a previous version of the file; entities that
		// do not reappear in the new parse are pruned from the graph.
		var prevNodes []string
		if cf.ChangeType == models.ChangeDelete || cf.ChangeType == models.ChangeModify {
			prev, err := i.graph.NodeIDsByFile(ctx, repo, cf.RelativePath)
			if err != nil {
				return fmt.Errorf("failed to list graph nodes for %s: %w", cf.RelativePath, err)
			}
			prevNodes = prev

			deleted, err := i.vec.DeleteByFilter(ctx, vector.Filter{
				vector.MetaType:     ChunkTypeCode,
				vector.MetaRepoName: repo,
				vector.MetaFilePath: cf.RelativePath,
			})
			if err != nil {
				return fmt.Errorf("failed to delete chunks for %s: %w", cf.RelativePath, err)
			}
			result.ChunksDeleted += deleted
		}
		if cf.ChangeType == models.ChangeDelete {
			staleNodes = append(staleNodes, prevNodes...)
			continue
		}

		content, err := wc.ReadFile(cf.RelativePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", cf.RelativePath, err)
		}
		parsed, err := i.parser.Parse(ctx, cf.RelativePath, content)
		if err != nil {
			i.logger.WarnContext(ctx, "skipping unparseable file", "repo", repo, "path", cf.RelativePath, "error", err)
			continue
		}

		chunks := BuildChunks(repo, parsed)
		if len(chunks) == 0 {
			staleNodes = append(staleNodes, prevNodes...)
			continue
		}

		texts := make([]string, len(chunks))
		for j, c := range chunks {
			texts[j] = c.EmbedText()
		}
		embStart := time.Now()
		vectors, err := i.embedder.Embed(ctx, texts)
		result.EmbedElapsed += time.Since(embStart)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", cf.RelativePath, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks in %s", len(vectors), len(chunks), cf.RelativePath)
		}
		for j, v := range vectors {
			if len(v) != i.cfg.EmbeddingDim {
				return fmt.Errorf("%w: embedder returned dimension %d, index is %d",
					vector.ErrDimensionMismatch, len(v), i.cfg.EmbeddingDim)
			}
			records = append(records, chunks[j].Record(repo, v))
		}

		fileNodes, fileEdges := ExtractGraph(repo, parsed)
		kept := make(map[string]struct{}, len(fileNodes))
		for _, n := range fileNodes {
			kept[n.ID] = struct{}{}
		}
		for _, id := range prevNodes {
			if _, ok := kept[id]; !ok {
				staleNodes = append(staleNodes, id)
			}
		}
		nodes = append(nodes, fileNodes...)
		edges = append(edges, fileEdges...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for start := 0; start < len(records); start += i.cfg.UpsertBatchSize {
			end := start + i.cfg.UpsertBatchSize
			if end > len(records) {
				end = len(records)
			}
			if err := i.vec.Upsert(gctx, records[start:end]); err != nil {
				return fmt.Errorf("failed to upsert chunk batch: %w", err)
			}
		}
		return nil
	})
	g.Go(func() error {
		return i.mirrorGraph(gctx, repo, staleNodes, nodes, edges)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	result.ChunksCreated = len(records)
	return nil
}

// mirrorGraph prunes stale nodes, then merges nodes and finally edges.
// Deleting only the entities that vanished keeps incoming edges from
// unchanged files intact. Edges whose endpoints are missing are dropped by
// the store; only structural errors abort.
func (i *Indexer) mirrorGraph(ctx context.Context, repo string, stale []string, nodes []graph.Node, edges []graph.Edge) error {
	if len(stale) > 0 {
		if err := i.graph.DeleteNodes(ctx, repo, stale); err != nil {
			return fmt.Errorf("failed to delete stale graph nodes: %w", err)
		}
	}
	for _, n := range nodes {
		if err := i.graph.MergeNode(ctx, n); err != nil {
			return fmt.Errorf("failed to merge graph node %s: %w", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := i.graph.MergeEdge(ctx, e); err != nil {
			i.logger.WarnContext(ctx, "dropping graph edge",
				"repo", repo, "from", e.FromID, "to", e.ToID, "kind", string(e.Kind), "error", err)
		}
	}
	return nil
}

// fetchState loads the index state vector, retrying transient store faults
// on the fixed backoff schedule. A missing record is absence, not an error.
func (i *Indexer) fetchState(ctx context.Context, repo string) (models.IndexState, bool, error) {
	id := StateID(repo)
	var lastErr error
	for attempt := 0; ; attempt++ {
		recs, err := i.vec.FetchByIDs(ctx, []string{id})
		if err == nil {
			rec, ok := recs[id]
			if !ok {
				return models.IndexState{}, false, nil
			}
			st, err := parseState(rec)
			if err != nil {
				return models.IndexState{}, false, err
			}
			return st, true, nil
		}
		if !vector.IsTransient(err) {
			return models.IndexState{}, false, err
		}
		lastErr = err
		if attempt >= len(stateFetchBackoff) {
			break
		}
		i.logger.WarnContext(ctx, "transient error fetching index state, retrying",
			"repo", repo, "attempt", attempt+1, "backoff", stateFetchBackoff[attempt], "error", err)
		i.sleep(stateFetchBackoff[attempt])
	}
	return models.IndexState{}, false, lastErr
}

// confirmState refetches the state vector after writing it. Visibility lag
// is tolerated; the next sync corrects any drift.
func (i *Indexer) confirmState(ctx context.Context, repo, head string) {
	id := StateID(repo)
	recs, err := i.vec.FetchByIDs(ctx, []string{id})
	if err != nil {
		i.logger.WarnContext(ctx, "could not confirm index state durability", "repo", repo, "error", err)
		return
	}
	rec, ok := recs[id]
	if !ok || rec.Metadata[metaLastIndexedCommit] != head {
		i.logger.WarnContext(ctx, "index state not yet visible after write", "repo", repo, "commit", head)
	}
}

// deleteRepoVectors removes all code chunks for a repository. The index
// state vector carries a different type and is preserved.
func (i *Indexer) deleteRepoVectors(ctx context.Context, repo string) (int, error) {
	deleted, err := i.vec.DeleteByFilter(ctx, vector.Filter{
		vector.MetaType:     ChunkTypeCode,
		vector.MetaRepoName: repo,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete repository vectors: %w", err)
	}
	if err := i.graph.DeleteRepository(ctx, repo); err != nil {
		return deleted, fmt.Errorf("failed to delete repository graph: %w", err)
	}
	return deleted, nil
}

// CascadeDelete is the administrative wipe of a repository's code knowledge.
// The index state vector is preserved.
func (i *Indexer) CascadeDelete(ctx context.Context, repo string) (int, error) {
	return i.deleteRepoVectors(ctx, repo)
}

func (i *Indexer) allFilesAsAdds(ctx context.Context, wc WorkingCopy) ([]models.ChangedFile, error) {
	files, err := wc.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list working copy files: %w", err)
	}
	var out []models.ChangedFile
	for _, f := range files {
		if i.isSourceFile(f) {
			out = append(out, models.ChangedFile{RelativePath: f, ChangeType: models.ChangeAdd})
		}
	}
	return out, nil
}

// isSourceFile keeps files under the source root with the configured suffix,
// excluding test roots.
func (i *Indexer) isSourceFile(path string) bool {
	if !strings.HasSuffix(path, i.cfg.SourceSuffix) {
		return false
	}
	for _, tr := range i.cfg.TestRoots {
		if strings.HasPrefix(path, tr+"/") {
			return false
		}
	}
	return i.cfg.SourceRoot == "" || strings.HasPrefix(path, i.cfg.SourceRoot+"/")
}
