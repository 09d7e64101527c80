package retrieval

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patchwright/patchwright/pkg/models"
)

// planPromptTemplate is the fixed instruction for the planning call. The
// model must answer with strict JSON; ParsePlan still tolerates code fences.
const planPromptTemplate = `You are planning code retrieval for a change request against the repository %q.

Task type: %s
Domain: %s
Summary: %s

Request:
%s

Produce a JSON object with a "strategies" array. Each strategy has:
- "type": one of "semantic", "metadata", "graph", "fullText", "filePath"
- "query": search text (semantic, fullText)
- "annotations", "class_name_contains", "package_equals": metadata filters
- "graph_query", "graph_params", "relationship_kind": graph traversal
- "path_pattern": regular expression over file paths (filePath)
- "target_repos": repositories to search, default [%q]
- "priority": integer, lower runs first
- "max_results": per-strategy cap
- "reasoning": one sentence

Order strategies from most to least promising. Respond with JSON only.`

// BuildPlanPrompt renders the planning prompt.
func BuildPlanPrompt(question string, analysis *models.RequirementAnalysis, repo string) string {
	taskType, domain, summary := "", "", ""
	if analysis != nil {
		taskType = analysis.TaskType
		domain = analysis.Domain
		summary = analysis.Summary
	}
	return fmt.Sprintf(planPromptTemplate, repo, taskType, domain, summary, question, repo)
}

// ParsePlan decodes a retrieval plan from model output. Models often wrap
// JSON in markdown fences; everything before the first brace and after the
// last brace is discarded.
func ParsePlan(raw string) (*models.RetrievalPlan, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in plan response")
	}

	var plan models.RetrievalPlan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err != nil {
		return nil, fmt.Errorf("invalid plan JSON: %w", err)
	}
	if len(plan.Strategies) == 0 {
		return nil, fmt.Errorf("plan has no strategies")
	}
	for i, st := range plan.Strategies {
		switch st.Type {
		case models.StrategySemantic, models.StrategyMetadata, models.StrategyGraph,
			models.StrategyFullText, models.StrategyFilePath:
		default:
			return nil, fmt.Errorf("strategy %d has unknown type %q", i, st.Type)
		}
	}
	return &plan, nil
}

// FallbackPlan is used when the model's plan cannot be parsed: a single
// semantic search with the literal question.
func FallbackPlan(question, repo string, topK int) *models.RetrievalPlan {
	return &models.RetrievalPlan{
		Strategies: []models.RetrievalStrategy{{
			Type:        models.StrategySemantic,
			Query:       question,
			TargetRepos: []string{repo},
			Priority:    1,
			MaxResults:  topK,
			Reasoning:   "fallback after unparseable plan",
		}},
	}
}
