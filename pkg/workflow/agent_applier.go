package workflow

import (
	"context"
	"fmt"

	"github.com/patchwright/patchwright/pkg/models"
)

// PatchApplier writes the current patch into the working copy. On the first
// application it also creates the working branch off the base branch.
type PatchApplier struct{}

func (*PatchApplier) Name() string { return models.AgentPatchApplier }

func (p *PatchApplier) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()
	if next.Patch == nil {
		return next, errorDecision(fmt.Errorf("no patch to apply"))
	}

	ws, err := svcs.Workspaces.Open(next.ConversationID, next.RepoURL, next.BaseBranch)
	if err != nil {
		return next, errorDecision(fmt.Errorf("failed to open working copy: %w", err))
	}

	if next.BranchName == "" {
		taskType := ""
		if next.Analysis != nil {
			taskType = next.Analysis.TaskType
		}
		name := branchName(next.Patch.BranchName, taskType, next.ConversationID)
		if err := ws.CreateBranch(ctx, name, next.BaseBranch); err != nil {
			return next, errorDecision(fmt.Errorf("failed to create branch: %w", err))
		}
		next.BranchName = name
	}

	applied, err := ws.Apply(next.Patch)
	if err != nil {
		return next, errorDecision(fmt.Errorf("failed to apply patch: %w", err))
	}
	next.AppliedFiles = applied

	return next, continueDecision(models.AgentBuildVerifier,
		fmt.Sprintf("applied %d files on %s", len(applied), next.BranchName))
}
