package workflow

import (
	"context"
	"fmt"

	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/workspace"
)

// RetrievalPlanner asks the retrieval engine for a plan and the resulting
// context bundle. Scaffold conversations have nothing to retrieve and pass
// straight through.
type RetrievalPlanner struct{}

func (*RetrievalPlanner) Name() string { return models.AgentRetrievalPlanner }

func (p *RetrievalPlanner) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()

	if next.Mode == models.ModeScaffold {
		next.Context = nil
		return next, continueDecision(models.AgentCodeGenerator, "scaffold mode, skipping retrieval")
	}

	repo := workspace.RepoName(next.RepoURL)
	plan, contexts, err := svcs.Retrieval.Retrieve(ctx, next.ConversationID, latestUserMessage(next), next.Analysis, repo)
	if err != nil {
		return next, errorDecision(fmt.Errorf("retrieval failed: %w", err))
	}

	next.RetrievalPlan = plan
	next.Context = contexts
	return next, continueDecision(models.AgentCodeGenerator,
		fmt.Sprintf("retrieved %d code chunks across %d strategies", len(contexts), len(plan.Strategies)))
}
