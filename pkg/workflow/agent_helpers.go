package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
)

// latestUserMessage returns the most recent user message content; the first
// one is always the original requirement.
func latestUserMessage(state *models.WorkflowState) string {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == models.RoleUser {
			return state.Messages[i].Content
		}
	}
	return ""
}

// requirement returns the original requirement: the first user message.
func requirement(state *models.WorkflowState) string {
	for _, m := range state.Messages {
		if m.Role == models.RoleUser {
			return m.Content
		}
	}
	return ""
}

// chatJSON sends the conversation to the model and decodes a JSON object
// from the reply. A malformed reply gets exactly one corrective re-prompt
// before the error surfaces.
func chatJSON(ctx context.Context, svcs *Services, state *models.WorkflowState, agent string, tier llm.Tier, system, user string, v any) error {
	messages := []llm.ChatMessage{{Role: "system", Content: system}}
	for _, m := range state.Messages {
		messages = append(messages, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	if user != "" {
		messages = append(messages, llm.ChatMessage{Role: "user", Content: user})
	}

	resp, err := svcs.Provider.Chat(ctx, llm.ChatRequest{
		ConversationID: state.ConversationID,
		Agent:          agent,
		Tier:           tier,
		Messages:       messages,
	})
	if err != nil {
		return err
	}

	if decodeErr := decodeJSON(resp.Content, v); decodeErr != nil {
		messages = append(messages,
			llm.ChatMessage{Role: "assistant", Content: resp.Content},
			llm.ChatMessage{Role: "user", Content: fmt.Sprintf(
				"The previous reply could not be parsed: %v. Reply again with only the JSON object, no prose and no markdown fences.", decodeErr)})
		resp, err = svcs.Provider.Chat(ctx, llm.ChatRequest{
			ConversationID: state.ConversationID,
			Agent:          agent,
			Tier:           tier,
			Messages:       messages,
		})
		if err != nil {
			return err
		}
		return decodeJSON(resp.Content, v)
	}
	return nil
}

// promotePatch converts a validated envelope into the domain patch.
func promotePatch(env patchEnvelope) *models.Patch {
	p := &models.Patch{
		BranchName:  env.BranchName,
		Explanation: env.Explanation,
	}
	for _, e := range env.FileEdits {
		p.FileEdits = append(p.FileEdits, models.FileEdit{Path: e.Path, Op: models.FileOp(e.Op), Content: e.Content})
	}
	for _, e := range env.TestsAdded {
		p.TestsAdded = append(p.TestsAdded, models.FileEdit{Path: e.Path, Op: models.FileOp(e.Op), Content: e.Content})
	}
	return p
}

var branchCleanRe = regexp.MustCompile(`[^a-z0-9._/-]+`)

// branchName picks the working branch: the model's suggestion sanitized, or
// a generated name. Feature work gets feat/, everything else fix/.
func branchName(suggested, taskType, conversationID string) string {
	name := strings.ToLower(strings.TrimSpace(suggested))
	name = branchCleanRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-/")

	prefix := "fix/"
	if taskType == "feature" || taskType == "scaffold" {
		prefix = "feat/"
	}
	if name == "" {
		short := conversationID
		if len(short) > 8 {
			short = short[:8]
		}
		return prefix + short
	}
	if strings.HasPrefix(name, "feat/") || strings.HasPrefix(name, "fix/") {
		return name
	}
	return prefix + name
}

// renderContext flattens the retrieved bundle into a prompt section.
func renderContext(contexts []models.CodeContext) string {
	if len(contexts) == 0 {
		return "(no existing code retrieved)"
	}
	var b strings.Builder
	for _, c := range contexts {
		fmt.Fprintf(&b, "--- %s (%s", c.FilePath, c.ChunkType)
		if c.ClassName != "" {
			fmt.Fprintf(&b, ", class %s", c.ClassName)
		}
		if c.MethodName != "" {
			fmt.Fprintf(&b, ", method %s", c.MethodName)
		}
		b.WriteString(") ---\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderBuildErrors flattens structured errors for the fix prompt.
func renderBuildErrors(result *models.BuildResult) string {
	var b strings.Builder
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "%s:%d:%d [%s] %s\n", e.File, e.Line, e.Column, e.Kind, e.Message)
	}
	return b.String()
}

func errorDecision(err error) models.AgentDecision {
	return models.AgentDecision{Kind: models.DecisionError, Message: err.Error()}
}

func continueDecision(next, message string) models.AgentDecision {
	return models.AgentDecision{Kind: models.DecisionContinue, NextAgent: next, Message: message}
}
