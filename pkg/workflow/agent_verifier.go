package workflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/patchwright/patchwright/pkg/models"
)

// BuildVerifier compiles the working copy. Success hands off to the
// publisher; failure enters the repair loop, bounded by the attempt budget
// and a no-progress check on the structured-error signatures.
type BuildVerifier struct{}

func (*BuildVerifier) Name() string { return models.AgentBuildVerifier }

func (v *BuildVerifier) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()

	result, err := svcs.Compiler.Build(ctx, next.WorkingDir)
	if err != nil {
		return next, errorDecision(fmt.Errorf("failed to run build: %w", err))
	}

	next.BuildAttempts++
	next.BuildResult = result
	if err := svcs.Persistence.RecordBuildAttempt(ctx, next.ConversationID, next.BuildAttempts, result); err != nil {
		svcs.Logger.WarnContext(ctx, "failed to record build attempt",
			"conversation_id", next.ConversationID, "error", err)
	}

	if result.Success {
		next.LastErrorSignatures = nil
		return next, continueDecision(models.AgentPublisher,
			fmt.Sprintf("build succeeded on attempt %d", next.BuildAttempts))
	}

	signatures := result.ErrorSignatures()
	if len(next.LastErrorSignatures) > 0 && slices.Equal(signatures, next.LastErrorSignatures) {
		return next, models.AgentDecision{
			Kind:    models.DecisionFail,
			Message: fmt.Sprintf("build failed with identical errors two attempts in a row (%d errors)", len(result.Errors)),
		}
	}
	next.LastErrorSignatures = signatures

	maxAttempts := svcs.BuildCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if next.BuildAttempts >= maxAttempts {
		return next, models.AgentDecision{
			Kind:    models.DecisionFail,
			Message: fmt.Sprintf("build failed after %d attempts (%d errors)", next.BuildAttempts, len(result.Errors)),
		}
	}

	return next, continueDecision(models.AgentFixGenerator,
		fmt.Sprintf("build failed with %d errors, attempting repair", len(result.Errors)))
}
