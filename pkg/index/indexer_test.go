package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/parser"
	"github.com/patchwright/patchwright/pkg/vector"
)

const testDim = 8

type fakeWorkingCopy struct {
	head  string
	files map[string]string
	diffs map[string][]models.ChangedFile
}

func (f *fakeWorkingCopy) Head(context.Context) (string, error) { return f.head, nil }

func (f *fakeWorkingCopy) Diff(_ context.Context, from, to string) ([]models.ChangedFile, error) {
	return f.diffs[from+".."+to], nil
}

func (f *fakeWorkingCopy) ListFiles(context.Context) ([]string, error) {
	var out []string
	for p := range f.files {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeWorkingCopy) ReadFile(relPath string) ([]byte, error) {
	content, ok := f.files[relPath]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(inputs))
	for i := range inputs {
		v := make([]float32, testDim)
		v[0] = float32(len(inputs[i]))
		out[i] = v
	}
	return out, nil
}

// flakyIndex fails FetchByIDs a fixed number of times before delegating.
type flakyIndex struct {
	vector.Index
	failures int
	failWith error
}

func (f *flakyIndex) FetchByIDs(ctx context.Context, ids []string) (map[string]vector.Record, error) {
	if f.failures > 0 {
		f.failures--
		return nil, f.failWith
	}
	return f.Index.FetchByIDs(ctx, ids)
}

func testConfig() config.IndexConfig {
	return config.IndexConfig{
		EmbeddingDim:    testDim,
		SourceRoot:      "src/main/java",
		TestRoots:       []string{"src/test"},
		SourceSuffix:    ".java",
		UpsertBatchSize: 100,
	}
}

func newTestIndexer(vec vector.Index, gr graph.Store) *Indexer {
	idx := NewIndexer(vec, gr, parser.NewJavaParser(), &fakeEmbedder{}, testConfig(), slog.Default())
	idx.sleep = func(time.Duration) {}
	return idx
}

const invoiceV1 = `package com.acme;

public class Invoice {

    private String id;

    public String getId() {
        return id;
    }
}
`

const invoiceV2 = `package com.acme;

public class Invoice {

    private String id;

    private long total;

    public String getId() {
        return id;
    }

    public long getTotal() {
        return total;
    }
}
`

func workingCopyAt(commit string) *fakeWorkingCopy {
	return &fakeWorkingCopy{
		head: commit,
		files: map[string]string{
			"src/main/java/com/acme/Invoice.java":         invoiceV1,
			"src/test/java/com/acme/InvoiceTest.java":     "package com.acme; public class InvoiceTest {}",
			"src/main/java/com/acme/notes.txt":            "not source",
			"src/main/java/com/acme/InvoiceService.java":  "package com.acme;\n\npublic class InvoiceService {\n\n    public Invoice load(String id) {\n        return find(id);\n    }\n}\n",
		},
		diffs: map[string][]models.ChangedFile{},
	}
}

func TestSync_InitialFullIndexesSourceFilesOnly(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	gr := graph.NewMemoryStore()
	idx := newTestIndexer(vec, gr)
	wc := workingCopyAt("commit-a")

	res, err := idx.Sync(context.Background(), wc, "billing", false)
	require.NoError(t, err)

	assert.Equal(t, SyncInitialFull, res.Kind)
	assert.Equal(t, "commit-a", res.HeadCommit)
	assert.Equal(t, 2, res.FilesAnalyzed)
	// Invoice: class + field + getter. InvoiceService: class + method.
	assert.Equal(t, 5, res.ChunksCreated)
	assert.Equal(t, 0, res.ChunksDeleted)

	// Code chunks plus the index state vector.
	assert.Equal(t, 6, vec.Len())
	assert.Greater(t, gr.NodeCount(), 0)

	recs, err := vec.FetchByIDs(context.Background(), []string{StateID("billing")})
	require.NoError(t, err)
	state, err := parseState(recs[StateID("billing")])
	require.NoError(t, err)
	assert.Equal(t, "commit-a", state.LastIndexedCommit)
	assert.Equal(t, 5, state.VectorCount)
}

func TestSync_SecondSyncReportsNoChanges(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	idx := newTestIndexer(vec, graph.NewMemoryStore())
	wc := workingCopyAt("commit-a")

	_, err := idx.Sync(context.Background(), wc, "billing", false)
	require.NoError(t, err)
	before := vec.Len()

	res, err := idx.Sync(context.Background(), wc, "billing", false)
	require.NoError(t, err)

	assert.Equal(t, SyncNoChanges, res.Kind)
	assert.Equal(t, 0, res.ChunksCreated)
	assert.Equal(t, 0, res.ChunksDeleted)
	assert.Equal(t, 0, res.FilesAnalyzed)
	assert.Equal(t, before, vec.Len())
}

func TestSync_IncrementalReplacesFileChunks(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	idx := newTestIndexer(vec, graph.NewMemoryStore())
	ctx := context.Background()

	wc := workingCopyAt("commit-a")
	_, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	const path = "src/main/java/com/acme/Invoice.java"
	wc.head = "commit-b"
	wc.files[path] = invoiceV2
	wc.diffs["commit-a..commit-b"] = []models.ChangedFile{
		{RelativePath: path, ChangeType: models.ChangeModify},
	}

	res, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	assert.Equal(t, SyncIncremental, res.Kind)
	assert.Equal(t, 1, res.FilesChanged)
	assert.Equal(t, 3, res.ChunksDeleted)
	// v2: class + 2 fields + 2 getters.
	assert.Equal(t, 5, res.ChunksCreated)

	// The chunks for the file now match exactly the new parse: no orphans.
	matches, err := vec.Search(ctx, vector.Query{
		Vector: make([]float32, testDim),
		TopK:   100,
		Filter: vector.Filter{vector.MetaRepoName: "billing", vector.MetaFilePath: path},
	})
	require.NoError(t, err)
	assert.Len(t, matches, 5)

	recs, err := vec.FetchByIDs(ctx, []string{StateID("billing")})
	require.NoError(t, err)
	state, err := parseState(recs[StateID("billing")])
	require.NoError(t, err)
	assert.Equal(t, "commit-b", state.LastIndexedCommit)
}

func TestSync_IncrementalPrunesStaleGraphNodes(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	gr := graph.NewMemoryStore()
	idx := newTestIndexer(vec, gr)
	ctx := context.Background()

	const path = "src/main/java/com/acme/Invoice.java"
	wc := workingCopyAt("commit-a")
	wc.files[path] = invoiceV2
	_, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	getTotalID := models.EntityID("billing", "com.acme.Invoice#getTotal()", models.EntityMethod)
	totalID := models.EntityID("billing", "com.acme.Invoice#total", models.EntityField)
	getIdID := models.EntityID("billing", "com.acme.Invoice#getId()", models.EntityMethod)

	ids, err := gr.NodeIDsByFile(ctx, "billing", path)
	require.NoError(t, err)
	require.Contains(t, ids, getTotalID)
	require.Contains(t, ids, totalID)

	wc.head = "commit-b"
	wc.files[path] = invoiceV1
	wc.diffs["commit-a..commit-b"] = []models.ChangedFile{
		{RelativePath: path, ChangeType: models.ChangeModify},
	}

	_, err = idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	ids, err = gr.NodeIDsByFile(ctx, "billing", path)
	require.NoError(t, err)
	assert.NotContains(t, ids, getTotalID, "removed method must leave the graph")
	assert.NotContains(t, ids, totalID, "removed field must leave the graph")
	assert.Contains(t, ids, getIdID, "surviving method stays")
	assert.Contains(t, ids, models.EntityID("billing", "com.acme.Invoice", models.EntityType))
}

func TestSync_DeleteRemovesGraphNodes(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	gr := graph.NewMemoryStore()
	idx := newTestIndexer(vec, gr)
	ctx := context.Background()

	wc := workingCopyAt("commit-a")
	_, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	const path = "src/main/java/com/acme/InvoiceService.java"
	ids, err := gr.NodeIDsByFile(ctx, "billing", path)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	wc.head = "commit-b"
	delete(wc.files, path)
	wc.diffs["commit-a..commit-b"] = []models.ChangedFile{
		{RelativePath: path, ChangeType: models.ChangeDelete},
	}

	_, err = idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	ids, err = gr.NodeIDsByFile(ctx, "billing", path)
	require.NoError(t, err)
	assert.Empty(t, ids, "deleted file's entities must leave the graph")

	// The other file's entities are untouched.
	ids, err = gr.NodeIDsByFile(ctx, "billing", "src/main/java/com/acme/Invoice.java")
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestSync_DeleteRemovesFileChunks(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	idx := newTestIndexer(vec, graph.NewMemoryStore())
	ctx := context.Background()

	wc := workingCopyAt("commit-a")
	_, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	const path = "src/main/java/com/acme/InvoiceService.java"
	wc.head = "commit-b"
	delete(wc.files, path)
	wc.diffs["commit-a..commit-b"] = []models.ChangedFile{
		{RelativePath: path, ChangeType: models.ChangeDelete},
	}

	res, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ChunksDeleted)
	assert.Equal(t, 0, res.ChunksCreated)
}

func TestSync_ForcedFullPreservesIndexState(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	idx := newTestIndexer(vec, graph.NewMemoryStore())
	ctx := context.Background()

	wc := workingCopyAt("commit-a")
	_, err := idx.Sync(ctx, wc, "billing", false)
	require.NoError(t, err)

	res, err := idx.Sync(ctx, wc, "billing", true)
	require.NoError(t, err)

	assert.Equal(t, SyncForcedFull, res.Kind)
	assert.Equal(t, 5, res.ChunksDeleted)
	assert.Equal(t, 5, res.ChunksCreated)

	recs, err := vec.FetchByIDs(ctx, []string{StateID("billing")})
	require.NoError(t, err)
	require.Contains(t, recs, StateID("billing"))
}

func TestSync_RetriesTransientStateFetch(t *testing.T) {
	mem := vector.NewMemoryIndex(testDim)
	flaky := &flakyIndex{Index: mem, failures: 2, failWith: &vector.StatusError{Code: 503, Message: "overloaded"}}

	var slept []time.Duration
	idx := NewIndexer(flaky, graph.NewMemoryStore(), parser.NewJavaParser(), &fakeEmbedder{}, testConfig(), slog.Default())
	idx.sleep = func(d time.Duration) { slept = append(slept, d) }

	res, err := idx.Sync(context.Background(), workingCopyAt("commit-a"), "billing", false)
	require.NoError(t, err)
	assert.Equal(t, SyncInitialFull, res.Kind)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
}

func TestSync_PermanentStateFetchErrorSurfacesWithoutRetry(t *testing.T) {
	mem := vector.NewMemoryIndex(testDim)
	flaky := &flakyIndex{Index: mem, failures: 1, failWith: &vector.StatusError{Code: 404, Message: "no such index"}}

	var slept []time.Duration
	idx := NewIndexer(flaky, graph.NewMemoryStore(), parser.NewJavaParser(), &fakeEmbedder{}, testConfig(), slog.Default())
	idx.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := idx.Sync(context.Background(), workingCopyAt("commit-a"), "billing", false)
	require.Error(t, err)
	assert.Empty(t, slept)
}

func TestSync_GivesUpAfterBackoffScheduleExhausted(t *testing.T) {
	mem := vector.NewMemoryIndex(testDim)
	flaky := &flakyIndex{Index: mem, failures: 10, failWith: &vector.StatusError{Code: 500, Message: "down"}}

	var slept []time.Duration
	idx := NewIndexer(flaky, graph.NewMemoryStore(), parser.NewJavaParser(), &fakeEmbedder{}, testConfig(), slog.Default())
	idx.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := idx.Sync(context.Background(), workingCopyAt("commit-a"), "billing", false)
	require.Error(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, slept)
}

func TestCascadeDelete_PreservesStateVector(t *testing.T) {
	vec := vector.NewMemoryIndex(testDim)
	gr := graph.NewMemoryStore()
	idx := newTestIndexer(vec, gr)
	ctx := context.Background()

	_, err := idx.Sync(ctx, workingCopyAt("commit-a"), "billing", false)
	require.NoError(t, err)

	deleted, err := idx.CascadeDelete(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, 5, deleted)
	assert.Equal(t, 1, vec.Len())
	assert.Equal(t, 0, gr.NodeCount())

	recs, err := vec.FetchByIDs(ctx, []string{StateID("billing")})
	require.NoError(t, err)
	require.Contains(t, recs, StateID("billing"))
}

func TestSync_ManyChunksAreBatched(t *testing.T) {
	vec := &countingIndex{Index: vector.NewMemoryIndex(testDim)}
	cfg := testConfig()
	cfg.UpsertBatchSize = 2
	idx := NewIndexer(vec, graph.NewMemoryStore(), parser.NewJavaParser(), &fakeEmbedder{}, cfg, slog.Default())
	idx.sleep = func(time.Duration) {}

	res, err := idx.Sync(context.Background(), workingCopyAt("commit-a"), "billing", false)
	require.NoError(t, err)
	require.Equal(t, 5, res.ChunksCreated)

	// 5 chunks in batches of 2 is 3 calls, plus one for the state vector.
	assert.Equal(t, 4, vec.upserts)
	for _, size := range vec.sizes {
		assert.LessOrEqual(t, size, 2)
	}
}

type countingIndex struct {
	vector.Index
	upserts int
	sizes   []int
}

func (c *countingIndex) Upsert(ctx context.Context, records []vector.Record) error {
	c.upserts++
	c.sizes = append(c.sizes, len(records))
	return c.Index.Upsert(ctx, records)
}

func TestStateRecord_RoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := stateRecord("billing", testDim, models.IndexState{
		LastIndexedCommit: "abc123",
		LastIndexedAt:     at,
		VectorCount:       42,
	})

	assert.Equal(t, "__metadata__:billing:index_state", rec.ID)
	require.Len(t, rec.Values, testDim)
	assert.NotZero(t, rec.Values[0], "placeholder vector must be non-zero")

	state, err := parseState(rec)
	require.NoError(t, err)
	assert.Equal(t, "abc123", state.LastIndexedCommit)
	assert.Equal(t, at, state.LastIndexedAt)
	assert.Equal(t, 42, state.VectorCount)
}

func TestParseState_RejectsCodeChunk(t *testing.T) {
	_, err := parseState(vector.Record{
		ID:       "not-state",
		Metadata: map[string]string{vector.MetaType: ChunkTypeCode},
	})
	require.Error(t, err)
}

func ExampleStateID() {
	fmt.Println(StateID("billing"))
	// Output: __metadata__:billing:index_state
}
