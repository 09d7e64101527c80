// Package retrieval turns a change request into a ranked bundle of code
// context. A model-emitted plan selects the strategies; each strategy runs
// against the vector index or the code graph, and the results are merged.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/index"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/vector"
)

// filterScore is the score assigned to exact-filter hits (metadata, graph,
// fullText, filePath), which have no similarity score of their own.
const filterScore = 0.5

// Engine executes retrieval plans.
type Engine struct {
	provider llm.Provider
	vec      vector.Index
	graph    graph.Store
	cfg      config.RetrievalConfig
	dim      int
	logger   *slog.Logger
}

// NewEngine wires the retrieval engine. dim is the index's embedding
// dimension, needed for filter-only scans.
func NewEngine(provider llm.Provider, vec vector.Index, gr graph.Store, cfg config.RetrievalConfig, dim int, logger *slog.Logger) *Engine {
	return &Engine{
		provider: provider,
		vec:      vec,
		graph:    gr,
		cfg:      cfg,
		dim:      dim,
		logger:   logger.With("service", "retrieval"),
	}
}

// Retrieve plans and executes retrieval for one request. The returned bundle
// is ordered by score descending, deduplicated by entity ID, and capped.
// Individual strategy failures degrade to partial results.
func (e *Engine) Retrieve(ctx context.Context, conversationID, question string, analysis *models.RequirementAnalysis, repo string) (*models.RetrievalPlan, []models.CodeContext, error) {
	plan := e.plan(ctx, conversationID, question, analysis, repo)

	strategies := append([]models.RetrievalStrategy(nil), plan.Strategies...)
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Priority < strategies[j].Priority
	})

	merged := map[string]models.CodeContext{}
	for _, st := range strategies {
		results, err := e.execute(ctx, st, repo)
		if err != nil {
			e.logger.WarnContext(ctx, "retrieval strategy failed",
				"conversation_id", conversationID, "strategy", string(st.Type), "error", err)
			continue
		}
		for _, cc := range results {
			if prev, ok := merged[cc.ID]; !ok || cc.Score > prev.Score {
				merged[cc.ID] = cc
			}
		}
	}

	bundle := make([]models.CodeContext, 0, len(merged))
	for _, cc := range merged {
		bundle = append(bundle, cc)
	}
	sort.Slice(bundle, func(i, j int) bool {
		if bundle[i].Score != bundle[j].Score {
			return bundle[i].Score > bundle[j].Score
		}
		return bundle[i].ID < bundle[j].ID
	})
	if len(bundle) > e.cfg.BundleCap {
		bundle = bundle[:e.cfg.BundleCap]
	}

	e.logger.InfoContext(ctx, "retrieval completed",
		"conversation_id", conversationID, "strategies", len(strategies), "results", len(bundle))
	return plan, bundle, nil
}

// plan asks the model for a retrieval plan and falls back to a single
// semantic search when the response cannot be parsed.
func (e *Engine) plan(ctx context.Context, conversationID, question string, analysis *models.RequirementAnalysis, repo string) *models.RetrievalPlan {
	resp, err := e.provider.Chat(ctx, llm.ChatRequest{
		ConversationID: conversationID,
		Agent:          models.AgentRetrievalPlanner,
		Tier:           llm.TierRoutine,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: "You plan code retrieval. Respond with strict JSON."},
			{Role: "user", Content: BuildPlanPrompt(question, analysis, repo)},
		},
	})
	if err != nil {
		e.logger.WarnContext(ctx, "plan call failed, using fallback plan",
			"conversation_id", conversationID, "error", err)
		return FallbackPlan(question, repo, e.cfg.DefaultTopK)
	}

	plan, err := ParsePlan(resp.Content)
	if err != nil {
		e.logger.WarnContext(ctx, "unparseable plan, using fallback plan",
			"conversation_id", conversationID, "error", err)
		return FallbackPlan(question, repo, e.cfg.DefaultTopK)
	}
	return plan
}

func (e *Engine) execute(ctx context.Context, st models.RetrievalStrategy, repo string) ([]models.CodeContext, error) {
	limit := st.MaxResults
	if limit <= 0 {
		limit = e.cfg.DefaultTopK
	}
	repos := st.TargetRepos
	if len(repos) == 0 {
		repos = []string{repo}
	}

	var out []models.CodeContext
	for _, r := range repos {
		var results []models.CodeContext
		var err error
		switch st.Type {
		case models.StrategySemantic:
			results, err = e.semantic(ctx, st, r, limit)
		case models.StrategyMetadata:
			results, err = e.scanFiltered(ctx, r, limit, metadataMatcher(st))
		case models.StrategyGraph:
			results, err = e.graphSearch(ctx, st, r, limit)
		case models.StrategyFullText:
			results, err = e.scanFiltered(ctx, r, limit, fullTextMatcher(st.Query))
		case models.StrategyFilePath:
			results, err = e.filePath(ctx, st, r, limit)
		default:
			err = fmt.Errorf("unknown strategy type %q", st.Type)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}

func (e *Engine) semantic(ctx context.Context, st models.RetrievalStrategy, repo string, limit int) ([]models.CodeContext, error) {
	vectors, err := e.provider.Embed(ctx, []string{st.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := e.vec.Search(ctx, vector.Query{
		Vector: vectors[0],
		TopK:   limit,
		Filter: vector.Filter{
			vector.MetaType:     index.ChunkTypeCode,
			vector.MetaRepoName: repo,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	out := make([]models.CodeContext, len(matches))
	for i, m := range matches {
		out[i] = matchToContext(m.ID, m.Score, m.Metadata)
	}
	return out, nil
}

// scanFiltered walks the repository's chunks and keeps those the matcher
// accepts. The backing store has no server-side contains queries, so the
// filter runs client-side over metadata.
func (e *Engine) scanFiltered(ctx context.Context, repo string, limit int, match func(map[string]string) bool) ([]models.CodeContext, error) {
	matches, err := e.vec.Search(ctx, vector.Query{
		Vector: make([]float32, e.dim),
		TopK:   0,
		Filter: vector.Filter{
			vector.MetaType:     index.ChunkTypeCode,
			vector.MetaRepoName: repo,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chunk scan failed: %w", err)
	}
	var out []models.CodeContext
	for _, m := range matches {
		if !match(m.Metadata) {
			continue
		}
		out = append(out, matchToContext(m.ID, filterScore, m.Metadata))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func metadataMatcher(st models.RetrievalStrategy) func(map[string]string) bool {
	packagePath := strings.ReplaceAll(st.PackageEquals, ".", "/")
	return func(meta map[string]string) bool {
		if st.ClassNameContains != "" &&
			!strings.Contains(strings.ToLower(meta[vector.MetaClassName]), strings.ToLower(st.ClassNameContains)) {
			return false
		}
		if packagePath != "" && !strings.Contains(meta[vector.MetaFilePath], packagePath+"/") {
			return false
		}
		for _, ann := range st.Annotations {
			if !strings.Contains(meta[vector.MetaContent], "@"+ann) {
				return false
			}
		}
		return true
	}
}

func fullTextMatcher(query string) func(map[string]string) bool {
	needle := strings.ToLower(query)
	return func(meta map[string]string) bool {
		return needle != "" && strings.Contains(strings.ToLower(meta[vector.MetaContent]), needle)
	}
}

func (e *Engine) filePath(ctx context.Context, st models.RetrievalStrategy, repo string, limit int) ([]models.CodeContext, error) {
	re, err := regexp.Compile(st.PathPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid path pattern %q: %w", st.PathPattern, err)
	}
	return e.scanFiltered(ctx, repo, limit, func(meta map[string]string) bool {
		return re.MatchString(meta[vector.MetaFilePath])
	})
}

// graphSearch runs either the plan's parameterized query or a one-hop
// traversal built from the relationship kind. Result rows are hydrated with
// chunk content from the vector index.
func (e *Engine) graphSearch(ctx context.Context, st models.RetrievalStrategy, repo string, limit int) ([]models.CodeContext, error) {
	params := map[string]any{"repoName": repo}
	for k, v := range st.GraphParams {
		params[k] = v
	}

	query := st.GraphQuery
	if query == "" {
		kind := graph.RelationshipKind(st.RelationshipKind)
		built, err := graph.NeighborQuery(kind, graph.DirectionOut)
		if err != nil {
			return nil, err
		}
		query = built
	}

	rows, err := e.graph.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	recs, err := e.vec.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate graph results: %w", err)
	}

	var out []models.CodeContext
	for _, id := range ids {
		if rec, ok := recs[id]; ok {
			out = append(out, matchToContext(id, filterScore, rec.Metadata))
		}
	}
	return out, nil
}

func matchToContext(id string, score float64, meta map[string]string) models.CodeContext {
	return models.CodeContext{
		ID:         id,
		Score:      score,
		ChunkType:  meta[vector.MetaChunkType],
		ClassName:  meta[vector.MetaClassName],
		MethodName: meta[vector.MetaMethodName],
		FilePath:   meta[vector.MetaFilePath],
		Content:    meta[vector.MetaContent],
	}
}
