package workflow

import (
	"context"
	"fmt"

	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
)

const fixerSystemPrompt = `You are the build-repair step of an autonomous code-modification service.
The previous patch broke the Java/Maven build. Produce a corrective patch.

Reply with only a JSON object:
{
  "explanation": "<one sentence describing the fix>",
  "file_edits": [{"path": "<repo-relative path>", "op": "modify", "content": "<full corrected file content>"}]
}

Rules:
- Modify only the files named in the compiler errors. Do not regenerate the
  project and do not touch unrelated files.
- "content" is always the complete corrected file.`

const fixerTask = `Original requirement:
%s

Compiler errors (file:line:col [kind] message):
%s

Raw build log tail:
%s`

// logTailLimit bounds how much raw log reaches the fix prompt.
const logTailLimit = 6000

// FixGenerator turns structured compiler errors into a corrective patch for
// the repair loop.
type FixGenerator struct{}

func (*FixGenerator) Name() string { return models.AgentFixGenerator }

func (f *FixGenerator) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()
	if next.BuildResult == nil || next.BuildResult.Success {
		return next, errorDecision(fmt.Errorf("no failed build to repair"))
	}

	tail := next.BuildResult.RawLog
	if len(tail) > logTailLimit {
		tail = tail[len(tail)-logTailLimit:]
	}
	task := fmt.Sprintf(fixerTask, requirement(next), renderBuildErrors(next.BuildResult), tail)

	var env patchEnvelope
	if err := chatJSON(ctx, svcs, next, f.Name(), llm.TierFinal, fixerSystemPrompt, task, &env); err != nil {
		return next, errorDecision(fmt.Errorf("fix generation failed: %w", err))
	}
	if err := validatePatch(env); err != nil {
		return next, errorDecision(fmt.Errorf("corrective patch is invalid: %w", err))
	}

	// Keep the original branch; the fix rides the same patch cycle.
	fix := promotePatch(env)
	fix.BranchName = next.BranchName
	next.Patch = fix
	next = next.AppendMessage(models.RoleAssistant, fix.Explanation)

	return next, continueDecision(models.AgentPatchApplier,
		fmt.Sprintf("generated corrective patch touching %d files", len(fix.FileEdits)))
}
