package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/message"
	"github.com/patchwright/patchwright/pkg/models"
)

// MessageService manages the append-only conversation transcript.
type MessageService struct {
	client *ent.Client
}

// NewMessageService creates a new MessageService.
func NewMessageService(client *ent.Client) *MessageService {
	return &MessageService{client: client}
}

// AppendMessage appends a message with the next sequence number. The unique
// (conversation_id, sequence) index turns a writer race into
// ErrConcurrentModification instead of an interleaved transcript.
func (s *MessageService) AppendMessage(ctx context.Context, conversationID string, role models.MessageRole, agent, content string) (*ent.Message, error) {
	if content == "" {
		return nil, NewValidationError("content", "required")
	}

	next, err := s.nextSequence(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	builder := s.client.Message.Create().
		SetID(uuid.New().String()).
		SetConversationID(conversationID).
		SetSequence(next).
		SetRole(message.Role(role)).
		SetContent(content)
	if agent != "" {
		builder.SetAgent(agent)
	}

	msg, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the transcript in sequence order.
func (s *MessageService) ListMessages(ctx context.Context, conversationID string) ([]*ent.Message, error) {
	msgs, err := s.client.Message.Query().
		Where(message.ConversationID(conversationID)).
		Order(ent.Asc(message.FieldSequence)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *MessageService) nextSequence(ctx context.Context, conversationID string) (int, error) {
	last, err := s.client.Message.Query().
		Where(message.ConversationID(conversationID)).
		Order(ent.Desc(message.FieldSequence)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find last message sequence: %w", err)
	}
	return last.Sequence + 1, nil
}
