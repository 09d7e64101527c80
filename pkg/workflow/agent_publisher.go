package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/patchwright/patchwright/pkg/hosting"
	"github.com/patchwright/patchwright/pkg/models"
)

// Publisher commits the working tree, pushes the branch, and opens the pull
// request. Terminal on success.
type Publisher struct{}

func (*Publisher) Name() string { return models.AgentPublisher }

func (p *Publisher) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()
	if next.BranchName == "" {
		return next, errorDecision(fmt.Errorf("no branch to publish"))
	}

	ws, err := svcs.Workspaces.Open(next.ConversationID, next.RepoURL, next.BaseBranch)
	if err != nil {
		return next, errorDecision(fmt.Errorf("failed to open working copy: %w", err))
	}

	title, body := prDescription(next)
	if err := ws.CommitAll(ctx, title); err != nil {
		return next, errorDecision(fmt.Errorf("failed to commit changes: %w", err))
	}
	if err := ws.Push(ctx, next.BranchName); err != nil {
		return next, errorDecision(fmt.Errorf("failed to push branch: %w", err))
	}

	pr, err := svcs.Hosting.CreatePullRequest(ctx, next.RepoURL, hosting.PullRequest{
		Title: title,
		Body:  body,
		Head:  next.BranchName,
		Base:  next.BaseBranch,
	})
	if err != nil {
		return next, errorDecision(fmt.Errorf("failed to open pull request: %w", err))
	}
	next.PRURL = pr.URL
	next = next.AppendMessage(models.RoleAssistant, fmt.Sprintf("Opened pull request %s", pr.URL))

	return next, models.AgentDecision{
		Kind:    models.DecisionComplete,
		Message: fmt.Sprintf("pull request opened: %s", pr.URL),
	}
}

// prDescription derives the PR title and body from the analysis and patch.
func prDescription(state *models.WorkflowState) (title, body string) {
	title = requirement(state)
	if state.Analysis != nil && state.Analysis.Summary != "" {
		title = state.Analysis.Summary
	}
	if idx := strings.IndexByte(title, '\n'); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 72 {
		title = title[:72]
	}

	var b strings.Builder
	b.WriteString("Requirement:\n")
	b.WriteString(requirement(state))
	if state.Patch != nil && state.Patch.Explanation != "" {
		b.WriteString("\n\nChange:\n")
		b.WriteString(state.Patch.Explanation)
	}
	if state.BuildResult != nil && state.BuildResult.Success {
		fmt.Fprintf(&b, "\n\nBuild verified in %d attempt(s).", state.BuildAttempts)
	}
	return title, b.String()
}
