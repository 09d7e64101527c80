package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/index"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/vector"
)

const testDim = 4

// stubProvider answers chat with a canned plan and embeds queries onto a
// fixed axis so similarity ordering is predictable.
type stubProvider struct {
	planJSON string
	chatErr  error
	axis     []float32
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &llm.ChatResponse{Content: s.planJSON}, nil
}

func (s *stubProvider) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = s.axis
	}
	return out, nil
}

func (s *stubProvider) Close() error { return nil }

func chunkRecord(id string, values []float32, class, method, path, content string) vector.Record {
	return vector.Record{
		ID:     id,
		Values: values,
		Metadata: map[string]string{
			vector.MetaType:       index.ChunkTypeCode,
			vector.MetaRepoName:   "billing",
			vector.MetaChunkType:  "METHOD",
			vector.MetaClassName:  class,
			vector.MetaMethodName: method,
			vector.MetaFilePath:   path,
			vector.MetaContent:    content,
		},
	}
}

func seededIndex(t *testing.T) *vector.MemoryIndex {
	t.Helper()
	vec := vector.NewMemoryIndex(testDim)
	require.NoError(t, vec.Upsert(context.Background(), []vector.Record{
		chunkRecord("inv-create", []float32{1, 0, 0, 0}, "InvoiceService", "create",
			"src/main/java/com/acme/billing/InvoiceService.java", "@Transactional public Invoice create() {}"),
		chunkRecord("inv-find", []float32{0.9, 0.1, 0, 0}, "InvoiceService", "find",
			"src/main/java/com/acme/billing/InvoiceService.java", "public Invoice find(String id) {}"),
		chunkRecord("pay-charge", []float32{0, 1, 0, 0}, "PaymentController", "charge",
			"src/main/java/com/acme/payment/PaymentController.java", "@PostMapping public Receipt charge() {}"),
	}))
	return vec
}

func testEngine(provider llm.Provider, vec vector.Index, gr graph.Store) *Engine {
	return NewEngine(provider, vec, gr, config.RetrievalConfig{DefaultTopK: 20, BundleCap: 50}, testDim, slog.Default())
}

func TestParsePlan_ToleratesCodeFences(t *testing.T) {
	raw := "```json\n{\"strategies\":[{\"type\":\"semantic\",\"query\":\"invoices\",\"priority\":1}]}\n```"
	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Strategies, 1)
	assert.Equal(t, models.StrategySemantic, plan.Strategies[0].Type)
	assert.Equal(t, "invoices", plan.Strategies[0].Query)
}

func TestParsePlan_RejectsUnknownStrategyType(t *testing.T) {
	_, err := ParsePlan(`{"strategies":[{"type":"psychic","priority":1}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psychic")
}

func TestParsePlan_RejectsEmptyAndGarbage(t *testing.T) {
	_, err := ParsePlan(`{"strategies":[]}`)
	require.Error(t, err)

	_, err = ParsePlan("I could not produce a plan, sorry.")
	require.Error(t, err)
}

func TestRetrieve_SemanticOrdersByScore(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[{"type":"semantic","query":"invoice creation","priority":1,"max_results":10}]}`,
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	plan, bundle, err := engine.Retrieve(context.Background(), "conv-1", "add invoice creation", nil, "billing")
	require.NoError(t, err)
	require.Len(t, plan.Strategies, 1)

	require.GreaterOrEqual(t, len(bundle), 2)
	assert.Equal(t, "inv-create", bundle[0].ID)
	assert.Equal(t, "inv-find", bundle[1].ID)
	assert.Equal(t, "InvoiceService", bundle[0].ClassName)
	assert.NotEmpty(t, bundle[0].Content)
}

func TestRetrieve_FallsBackOnUnparseablePlan(t *testing.T) {
	provider := &stubProvider{
		planJSON: "sorry, no JSON today",
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	plan, bundle, err := engine.Retrieve(context.Background(), "conv-1", "invoice creation", nil, "billing")
	require.NoError(t, err)
	require.Len(t, plan.Strategies, 1)
	assert.Equal(t, models.StrategySemantic, plan.Strategies[0].Type)
	assert.Equal(t, "invoice creation", plan.Strategies[0].Query)
	assert.Equal(t, 20, plan.Strategies[0].MaxResults)
	assert.NotEmpty(t, bundle)
}

func TestRetrieve_FallsBackOnChatError(t *testing.T) {
	provider := &stubProvider{
		chatErr: errors.New("model unavailable"),
		axis:    []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	plan, _, err := engine.Retrieve(context.Background(), "conv-1", "invoice creation", nil, "billing")
	require.NoError(t, err)
	assert.Equal(t, "fallback after unparseable plan", plan.Strategies[0].Reasoning)
}

func TestRetrieve_MetadataStrategy(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[{"type":"metadata","class_name_contains":"controller","annotations":["PostMapping"],"priority":1}]}`,
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	_, bundle, err := engine.Retrieve(context.Background(), "conv-1", "payments", nil, "billing")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "pay-charge", bundle[0].ID)
}

func TestRetrieve_FilePathStrategy(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[{"type":"filePath","path_pattern":"payment/.*\\.java$","priority":1}]}`,
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	_, bundle, err := engine.Retrieve(context.Background(), "conv-1", "payments", nil, "billing")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "pay-charge", bundle[0].ID)
}

func TestRetrieve_FullTextStrategy(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[{"type":"fullText","query":"@Transactional","priority":1}]}`,
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	_, bundle, err := engine.Retrieve(context.Background(), "conv-1", "transactions", nil, "billing")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "inv-create", bundle[0].ID)
}

func TestRetrieve_GraphStrategyHydratesFromVectorIndex(t *testing.T) {
	gr := graph.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, gr.MergeNode(ctx, graph.Node{ID: "inv-create", Label: graph.LabelMethod, Repository: "billing", Properties: map[string]any{"fqn": "InvoiceService#create()"}}))
	require.NoError(t, gr.MergeNode(ctx, graph.Node{ID: "inv-find", Label: graph.LabelMethod, Repository: "billing", Properties: map[string]any{"fqn": "InvoiceService#find(String)"}}))
	require.NoError(t, gr.MergeEdge(ctx, graph.Edge{FromID: "inv-create", ToID: "inv-find", Kind: graph.RelCalls, Repository: "billing"}))

	provider := &stubProvider{
		planJSON: `{"strategies":[{"type":"graph","relationship_kind":"CALLS","graph_params":{"id":"inv-create"},"priority":1}]}`,
		axis:     []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), gr)

	_, bundle, err := engine.Retrieve(ctx, "conv-1", "what does create call", nil, "billing")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "inv-find", bundle[0].ID)
	assert.Equal(t, "find", bundle[0].MethodName)
}

func TestRetrieve_FailedStrategyDegradesToPartialResults(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[
			{"type":"graph","relationship_kind":"NOT_A_KIND","priority":1},
			{"type":"semantic","query":"invoice","priority":2,"max_results":1}
		]}`,
		axis: []float32{1, 0, 0, 0},
	}
	engine := testEngine(provider, seededIndex(t), graph.NewMemoryStore())

	_, bundle, err := engine.Retrieve(context.Background(), "conv-1", "invoice", nil, "billing")
	require.NoError(t, err)
	require.Len(t, bundle, 1)
	assert.Equal(t, "inv-create", bundle[0].ID)
}

func TestRetrieve_MergeKeepsHighestScoreAndCaps(t *testing.T) {
	provider := &stubProvider{
		planJSON: `{"strategies":[
			{"type":"fullText","query":"invoice","priority":1},
			{"type":"semantic","query":"invoice creation","priority":2}
		]}`,
		axis: []float32{1, 0, 0, 0},
	}
	vec := seededIndex(t)
	engine := NewEngine(provider, vec, graph.NewMemoryStore(),
		config.RetrievalConfig{DefaultTopK: 20, BundleCap: 2}, testDim, slog.Default())

	_, bundle, err := engine.Retrieve(context.Background(), "conv-1", "invoice", nil, "billing")
	require.NoError(t, err)

	// inv-create appears in both strategies; the semantic score (1.0) wins
	// over the fixed filter score.
	require.Len(t, bundle, 2)
	assert.Equal(t, "inv-create", bundle[0].ID)
	assert.InDelta(t, 1.0, bundle[0].Score, 0.001)
}
