package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/llminteraction"
	"github.com/patchwright/patchwright/pkg/llm"
)

// InteractionService persists completed LLM calls for the audit trail.
// Implements llm.InteractionRecorder.
type InteractionService struct {
	client *ent.Client
	logger *slog.Logger
}

// NewInteractionService creates a new InteractionService.
func NewInteractionService(client *ent.Client, logger *slog.Logger) *InteractionService {
	return &InteractionService{
		client: client,
		logger: logger.With("service", "interactions"),
	}
}

// RecordInteraction writes one interaction row. Recording is best-effort: a
// failed write is logged, never surfaced to the model call path.
func (s *InteractionService) RecordInteraction(ctx context.Context, interaction llm.Interaction) {
	builder := s.client.LLMInteraction.Create().
		SetID(uuid.New().String()).
		SetConversationID(interaction.ConversationID).
		SetProvider(interaction.Provider).
		SetOp(llminteraction.Op(interaction.Op)).
		SetLatencyMs(interaction.LatencyMS).
		SetOutcome(llminteraction.Outcome(interaction.Outcome)).
		SetInputTokens(interaction.InputTokens).
		SetOutputTokens(interaction.OutputTokens)
	if interaction.Agent != "" {
		builder.SetAgent(interaction.Agent)
	}
	if interaction.ErrorMessage != "" {
		builder.SetErrorMessage(interaction.ErrorMessage)
	}

	if err := builder.Exec(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to record LLM interaction",
			"conversation_id", interaction.ConversationID,
			"op", interaction.Op,
			"error", err)
	}
}

// ListInteractions returns the audit trail for a conversation, oldest first.
func (s *InteractionService) ListInteractions(ctx context.Context, conversationID string) ([]*ent.LLMInteraction, error) {
	return s.client.LLMInteraction.Query().
		Where(llminteraction.ConversationID(conversationID)).
		Order(ent.Asc(llminteraction.FieldCreatedAt)).
		All(ctx)
}
