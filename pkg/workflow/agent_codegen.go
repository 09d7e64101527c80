package workflow

import (
	"context"
	"fmt"

	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
)

const codegenSystemPrompt = `You are the code generator of an autonomous code-modification service
working on a Java/Maven repository.

Reply with only a JSON object describing a patch:
{
  "branch_name": "<short kebab-case branch name for this change>",
  "explanation": "<one paragraph describing the change>",
  "file_edits": [{"path": "<repo-relative path>", "op": "create" | "modify" | "delete", "content": "<full new file content>"}],
  "tests_added": [{"path": "<repo-relative path>", "content": "<full test file content>"}]
}

Rules:
- "content" is always the complete file, never a diff.
- Paths are relative to the repository root; never use absolute paths or "..".
- In maintain mode, touch only the files the change requires.
- In scaffold mode, emit a complete buildable project: build manifest,
  application entrypoint, and the entities, repositories, services, and
  controllers the requirement implies.`

const codegenScaffoldTask = `Mode: scaffold (the repository is empty).

Requirement:
%s`

const codegenMaintainTask = `Mode: maintain.

Requirement:
%s

Relevant existing code:
%s`

// CodeGenerator turns the requirement plus retrieved context into a
// JSON-validated patch.
type CodeGenerator struct{}

func (*CodeGenerator) Name() string { return models.AgentCodeGenerator }

func (g *CodeGenerator) Execute(ctx context.Context, state *models.WorkflowState, svcs *Services) (*models.WorkflowState, models.AgentDecision) {
	next := state.Clone()

	var task string
	if next.Mode == models.ModeScaffold {
		task = fmt.Sprintf(codegenScaffoldTask, requirement(next))
	} else {
		task = fmt.Sprintf(codegenMaintainTask, requirement(next), renderContext(next.Context))
	}

	var env patchEnvelope
	if err := chatJSON(ctx, svcs, next, g.Name(), llm.TierFinal, codegenSystemPrompt, task, &env); err != nil {
		return next, errorDecision(fmt.Errorf("code generation failed: %w", err))
	}
	if err := validatePatch(env); err != nil {
		return next, errorDecision(fmt.Errorf("generated patch is invalid: %w", err))
	}

	next.Patch = promotePatch(env)
	next = next.AppendMessage(models.RoleAssistant, next.Patch.Explanation)

	return next, continueDecision(models.AgentPatchApplier,
		fmt.Sprintf("generated patch with %d file edits", len(next.Patch.FileEdits)))
}
