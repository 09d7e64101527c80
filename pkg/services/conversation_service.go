package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/ent/message"
	"github.com/patchwright/patchwright/ent/snapshot"
	"github.com/patchwright/patchwright/pkg/models"
)

// writeTimeout bounds critical writes that must survive HTTP context
// cancellation (the client going away must not lose a snapshot).
const writeTimeout = 10 * time.Second

// allowedTransitions is the conversation lifecycle. Terminal statuses have no
// entry; awaiting_user may resume (back through pending so a worker re-claims
// it) or be cancelled.
var allowedTransitions = map[conversation.Status][]conversation.Status{
	conversation.StatusPending:      {conversation.StatusRunning, conversation.StatusCancelled},
	conversation.StatusRunning:      {conversation.StatusAwaitingUser, conversation.StatusCompleted, conversation.StatusFailed, conversation.StatusCancelled},
	conversation.StatusAwaitingUser: {conversation.StatusPending, conversation.StatusRunning, conversation.StatusCancelled},
}

// ConversationService manages conversation lifecycle and state snapshots.
type ConversationService struct {
	client *ent.Client
}

// NewConversationService creates a new ConversationService.
func NewConversationService(client *ent.Client) *ConversationService {
	return &ConversationService{client: client}
}

// CreateConversation registers a new conversation in pending status. The
// worker pool picks it up from there.
func (s *ConversationService) CreateConversation(httpCtx context.Context, req models.CreateConversationRequest) (*ent.Conversation, error) {
	if req.Requirement == "" {
		return nil, NewValidationError("requirement", "required")
	}
	if req.RepoURL == "" {
		return nil, NewValidationError("repo_url", "required")
	}
	mode := conversation.Mode(req.Mode)
	if mode == "" {
		mode = conversation.ModeMaintain
	}
	if err := conversation.ModeValidator(mode); err != nil {
		return nil, NewValidationError("mode", "must be scaffold or maintain")
	}

	id := req.ConversationID
	if id == "" {
		id = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	builder := s.client.Conversation.Create().
		SetID(id).
		SetRequirement(req.Requirement).
		SetRepoURL(req.RepoURL).
		SetMode(mode).
		SetStatus(conversation.StatusPending)
	if req.UserID != "" {
		builder.SetUserID(req.UserID)
	}

	conv, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	// The requirement is the first transcript entry; the workflow seeds its
	// message log from the transcript.
	err = s.client.Message.Create().
		SetID(uuid.New().String()).
		SetConversationID(conv.ID).
		SetSequence(0).
		SetRole(message.RoleUser).
		SetContent(req.Requirement).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record requirement message: %w", err)
	}
	return conv, nil
}

// GetConversation returns a conversation by ID.
func (s *ConversationService) GetConversation(ctx context.Context, id string) (*ent.Conversation, error) {
	conv, err := s.client.Conversation.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns non-deleted conversations, newest first,
// optionally filtered by status.
func (s *ConversationService) ListConversations(ctx context.Context, status string, limit int) ([]*ent.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.client.Conversation.Query().
		Where(conversation.DeletedAtIsNil()).
		Order(ent.Desc(conversation.FieldCreatedAt)).
		Limit(limit)
	if status != "" {
		q = q.Where(conversation.StatusEQ(conversation.Status(status)))
	}
	convs, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// UpdateStatus moves the conversation to next, enforcing the lifecycle. The
// update is conditional on the current status so two racing writers cannot
// both win.
func (s *ConversationService) UpdateStatus(ctx context.Context, id string, next conversation.Status) error {
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(conv.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, conv.Status, next)
	}

	builder := s.client.Conversation.Update().
		Where(conversation.ID(id), conversation.StatusEQ(conv.Status)).
		SetStatus(next).
		SetLastInteractionAt(time.Now())
	if next == conversation.StatusCompleted || next == conversation.StatusFailed || next == conversation.StatusCancelled {
		builder.SetCompletedAt(time.Now())
	}
	n, err := builder.Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func transitionAllowed(from, to conversation.Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MarkStarted records that a worker claimed the conversation.
func (s *ConversationService) MarkStarted(ctx context.Context, id, podID string) error {
	if err := s.UpdateStatus(ctx, id, conversation.StatusRunning); err != nil {
		return err
	}
	err := s.client.Conversation.UpdateOneID(id).
		SetStartedAt(time.Now()).
		SetPodID(podID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark conversation started: %w", err)
	}
	return nil
}

// Requeue puts an awaiting_user conversation back into pending so a worker
// can re-claim it after the user replied.
func (s *ConversationService) Requeue(ctx context.Context, id string) error {
	return s.UpdateStatus(ctx, id, conversation.StatusPending)
}

// Heartbeat refreshes last_interaction_at so the orphan detector leaves the
// conversation alone.
func (s *ConversationService) Heartbeat(ctx context.Context, id string) error {
	err := s.client.Conversation.UpdateOneID(id).
		SetLastInteractionAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to heartbeat conversation: %w", err)
	}
	return nil
}

// FinishConversation records the terminal outcome of a conversation.
func (s *ConversationService) FinishConversation(ctx context.Context, id string, status conversation.Status, errorMessage, prURL, branchName string) error {
	if err := s.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	builder := s.client.Conversation.UpdateOneID(id)
	if errorMessage != "" {
		builder.SetErrorMessage(errorMessage)
	}
	if prURL != "" {
		builder.SetPrURL(prURL)
	}
	if branchName != "" {
		builder.SetBranchName(branchName)
	}
	if err := builder.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record conversation outcome: %w", err)
	}
	return nil
}

// SaveSnapshot persists the workflow state after a transition and mirrors the
// lifecycle fields onto the conversation row. The snapshot sequence is unique
// per conversation; a duplicate means another worker is driving the same
// conversation.
func (s *ConversationService) SaveSnapshot(httpCtx context.Context, agent string, state *models.WorkflowState) error {
	stateJSON, err := models.MarshalState(state)
	if err != nil {
		return fmt.Errorf("failed to serialize workflow state: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Snapshot.Create().
		SetID(uuid.New().String()).
		SetConversationID(state.ConversationID).
		SetSequence(state.Sequence).
		SetAgent(agent).
		SetStatus(string(state.Status)).
		SetState(stateJSON).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	convUpdate := tx.Conversation.UpdateOneID(state.ConversationID).
		SetLastInteractionAt(time.Now())
	if state.CurrentAgent != "" {
		convUpdate.SetCurrentAgent(state.CurrentAgent)
	}
	if state.BranchName != "" {
		convUpdate.SetBranchName(state.BranchName)
	}
	if state.PRURL != "" {
		convUpdate.SetPrURL(state.PRURL)
	}
	if err := convUpdate.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror state onto conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestState restores the newest persisted workflow state.
func (s *ConversationService) LatestState(ctx context.Context, conversationID string) (*models.WorkflowState, error) {
	row, err := s.client.Snapshot.Query().
		Where(snapshot.ConversationID(conversationID)).
		Order(ent.Desc(snapshot.FieldSequence)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	state, err := models.UnmarshalState(row.State)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize workflow state: %w", err)
	}
	return state, nil
}

// SoftDeleteOldConversations marks settled conversations past the retention
// window for cleanup: terminal conversations whose completion is older than
// the cutoff, plus pending ones nothing ever claimed. Returns the number of
// rows marked. Idempotent and safe to run from multiple pods.
func (s *ConversationService) SoftDeleteOldConversations(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	n, err := s.client.Conversation.Update().
		Where(
			conversation.DeletedAtIsNil(),
			conversation.Or(
				conversation.And(
					conversation.StatusIn(
						conversation.StatusCompleted,
						conversation.StatusFailed,
						conversation.StatusCancelled,
					),
					conversation.CompletedAtLT(cutoff),
				),
				conversation.And(
					conversation.StatusEQ(conversation.StatusPending),
					conversation.CreatedAtLT(cutoff),
				),
			),
		).
		SetDeletedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to soft-delete old conversations: %w", err)
	}
	return n, nil
}

// SoftDelete marks the conversation for retention cleanup.
func (s *ConversationService) SoftDelete(ctx context.Context, id string) error {
	err := s.client.Conversation.UpdateOneID(id).
		SetDeletedAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to soft-delete conversation: %w", err)
	}
	return nil
}
