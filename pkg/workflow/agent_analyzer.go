package workflow

import (
	"context"
	"fmt"

	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/workspace"
)

const analyzerSystemPrompt = `You are the requirement analyzer of an autonomous code-modification service.
Classify the user's requirement against the target repository.

Reply with only a JSON object:
{
  "task_type": "feature" | "bugfix" | "refactor" | "scaffold",
  "domain": "<the business domain the change touches, one or two words>",
  "summary": "<one sentence restating what must be built or changed>",
  "question": "<a clarifying question if the requirement is too ambiguous to act on, else empty>"
}

Ask a question only when the requirement cannot be acted on at all; prefer a
reasonable interpretation over a question.`

// analyzerReply is the analyzer's JSON contract.
type analyzerReply struct {
	TaskType string `json:"task_type"`
	Domain   string `json:"domain"`
	Summary  string `json:"summary"`
	Question string `json:"question"`
}

// RequirementAnalyzer prepares the conversation: it clones the working copy,
// brings the repository index up to date, and classifies the requirement.
// An unanswerable requirement suspends the workflow for user input.
type RequirementAnalyzer struct{}

func (*RequirementAnalyzer) Name() string { return models.AgentRequirementAnalyzer }

func (a *RequirementAnalyzer) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()

	// First entry clones and indexes; a resume after suspension skips both.
	if next.WorkingDir == "" {
		ws, err := svcs.Workspaces.Clone(ctx, next.ConversationID, next.RepoURL)
		if err != nil {
			return next, errorDecision(fmt.Errorf("failed to prepare working copy: %w", err))
		}
		next.WorkingDir = ws.Dir()

		cleanURL, _ := workspace.SplitRepoURL(next.RepoURL)
		next.RepoURL = cleanURL
		base, err := ws.CurrentBranch(ctx)
		if err != nil {
			return next, errorDecision(fmt.Errorf("failed to resolve base branch: %w", err))
		}
		next.BaseBranch = base

		if next.Mode == models.ModeMaintain {
			repo := workspace.RepoName(cleanURL)
			if _, err := svcs.Indexer.Sync(ctx, ws, repo, false); err != nil {
				return next, errorDecision(fmt.Errorf("failed to index repository: %w", err))
			}
		}
	}

	var reply analyzerReply
	if err := chatJSON(ctx, svcs, next, a.Name(), llm.TierRoutine, analyzerSystemPrompt, "", &reply); err != nil {
		return next, errorDecision(fmt.Errorf("requirement analysis failed: %w", err))
	}

	if reply.Question != "" {
		return next, models.AgentDecision{
			Kind:    models.DecisionSuspendForInput,
			Message: reply.Question,
		}
	}

	if next.Mode == models.ModeScaffold {
		reply.TaskType = "scaffold"
	}
	next.Analysis = &models.RequirementAnalysis{
		TaskType: reply.TaskType,
		Domain:   reply.Domain,
		Summary:  reply.Summary,
	}
	next = next.AppendMessage(models.RoleAssistant, reply.Summary)

	return next, continueDecision(models.AgentRetrievalPlanner, reply.Summary)
}
