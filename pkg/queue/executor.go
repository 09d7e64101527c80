package queue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/services"
	"github.com/patchwright/patchwright/pkg/workflow"
)

// WorkflowExecutor runs claimed conversations through the agent runtime.
//
// A fresh conversation gets its state seeded from the conversation row; a
// resumed one continues from the latest snapshot, with any user messages
// posted while it was suspended folded back into the state.
type WorkflowExecutor struct {
	runtime       *workflow.Runtime
	conversations *services.ConversationService
	messages      *services.MessageService
	logger        *slog.Logger
}

// NewWorkflowExecutor creates the executor used by the worker pool.
func NewWorkflowExecutor(runtime *workflow.Runtime, conversations *services.ConversationService, messages *services.MessageService, logger *slog.Logger) *WorkflowExecutor {
	return &WorkflowExecutor{
		runtime:       runtime,
		conversations: conversations,
		messages:      messages,
		logger:        logger.With("service", "workflow_executor"),
	}
}

// Execute drives one conversation until it completes, fails, suspends, or is
// cancelled. Snapshots, transcript rows, and the terminal status are written
// by the runtime as it goes.
func (e *WorkflowExecutor) Execute(ctx context.Context, conv *ent.Conversation) *ExecutionResult {
	state, err := e.loadState(ctx, conv)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to load conversation state",
			"conversation_id", conv.ID, "error", err)
		return &ExecutionResult{Status: conversation.StatusFailed, Error: err}
	}

	final, err := e.runtime.Run(ctx, state)
	if err != nil {
		return &ExecutionResult{Status: conversation.StatusFailed, Error: err}
	}

	// Workflow status values match the conversation status enum.
	return &ExecutionResult{Status: conversation.Status(final.Status)}
}

// loadState restores the latest snapshot, or seeds a fresh state from the
// conversation row when none exists yet.
func (e *WorkflowExecutor) loadState(ctx context.Context, conv *ent.Conversation) (*models.WorkflowState, error) {
	state, err := e.conversations.LatestState(ctx, conv.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return e.seedState(ctx, conv)
		}
		return nil, err
	}
	return e.reconcileMessages(ctx, state)
}

// seedState builds the initial workflow state for a never-run conversation.
// The requirement becomes the first user message.
func (e *WorkflowExecutor) seedState(ctx context.Context, conv *ent.Conversation) (*models.WorkflowState, error) {
	state := &models.WorkflowState{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		RepoURL:        conv.RepoURL,
		Mode:           models.Mode(conv.Mode),
		Status:         models.StatusRunning,
	}

	msgs, err := e.messages.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return state.AppendMessage(models.RoleUser, conv.Requirement), nil
	}
	for _, m := range msgs {
		state.Messages = append(state.Messages, models.ConversationMessage{
			Role:      models.MessageRole(m.Role),
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return state, nil
}

// reconcileMessages folds transcript rows appended after the snapshot was
// taken (user replies posted while the conversation was suspended) into the
// restored state. The runtime mirrors state messages into the transcript in
// order, so the transcript is always a prefix-compatible superset.
func (e *WorkflowExecutor) reconcileMessages(ctx context.Context, state *models.WorkflowState) (*models.WorkflowState, error) {
	msgs, err := e.messages.ListMessages(ctx, state.ConversationID)
	if err != nil {
		return nil, err
	}
	for i := len(state.Messages); i < len(msgs); i++ {
		state.Messages = append(state.Messages, models.ConversationMessage{
			Role:      models.MessageRole(msgs[i].Role),
			Content:   msgs[i].Content,
			Timestamp: msgs[i].CreatedAt,
		})
	}
	return state, nil
}
