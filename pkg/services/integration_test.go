package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/models"
	testdb "github.com/patchwright/patchwright/test/database"
)

func newConversation(t *testing.T, svc *ConversationService) string {
	t.Helper()
	conv, err := svc.CreateConversation(context.Background(), models.CreateConversationRequest{
		ConversationID: uuid.New().String(),
		Requirement:    "add pagination to the invoice listing endpoint",
		RepoURL:        "https://github.com/acme/billing",
		Mode:           models.ModeMaintain,
	})
	require.NoError(t, err)
	return conv.ID
}

func TestConversationLifecycle(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	svc := NewConversationService(client.Client)

	t.Run("create and get", func(t *testing.T) {
		id := newConversation(t, svc)
		conv, err := svc.GetConversation(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, conversation.StatusPending, conv.Status)
		assert.Equal(t, "https://github.com/acme/billing", conv.RepoURL)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		id := newConversation(t, svc)
		_, err := svc.CreateConversation(ctx, models.CreateConversationRequest{
			ConversationID: id,
			Requirement:    "anything",
			RepoURL:        "https://github.com/acme/billing",
		})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("missing requirement is rejected", func(t *testing.T) {
		_, err := svc.CreateConversation(ctx, models.CreateConversationRequest{
			RepoURL: "https://github.com/acme/billing",
		})
		assert.True(t, IsValidationError(err))
	})

	t.Run("get unknown conversation", func(t *testing.T) {
		_, err := svc.GetConversation(ctx, "no-such-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConversationStatusTransitions(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	svc := NewConversationService(client.Client)

	t.Run("pending to running to completed", func(t *testing.T) {
		id := newConversation(t, svc)
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusRunning))
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusCompleted))

		conv, err := svc.GetConversation(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, conv.CompletedAt)
	})

	t.Run("awaiting_user resumes to running", func(t *testing.T) {
		id := newConversation(t, svc)
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusRunning))
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusAwaitingUser))
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusRunning))
	})

	t.Run("terminal status never changes", func(t *testing.T) {
		id := newConversation(t, svc)
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusRunning))
		require.NoError(t, svc.UpdateStatus(ctx, id, conversation.StatusFailed))
		err := svc.UpdateStatus(ctx, id, conversation.StatusRunning)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("pending cannot complete directly", func(t *testing.T) {
		id := newConversation(t, svc)
		err := svc.UpdateStatus(ctx, id, conversation.StatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSnapshotPersistence(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	svc := NewConversationService(client.Client)

	id := newConversation(t, svc)
	state := &models.WorkflowState{
		ConversationID: id,
		RepoURL:        "https://github.com/acme/billing",
		Mode:           models.ModeMaintain,
		Status:         models.StatusRunning,
		CurrentAgent:   models.AgentRequirementAnalyzer,
		Sequence:       0,
		Analysis: &models.RequirementAnalysis{
			TaskType: "feature",
			Domain:   "billing",
			Summary:  "pagination for invoices",
		},
	}

	t.Run("save and restore round-trips the state", func(t *testing.T) {
		require.NoError(t, svc.SaveSnapshot(ctx, models.AgentRequirementAnalyzer, state))

		restored, err := svc.LatestState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, state.ConversationID, restored.ConversationID)
		assert.Equal(t, state.Status, restored.Status)
		require.NotNil(t, restored.Analysis)
		assert.Equal(t, "billing", restored.Analysis.Domain)
	})

	t.Run("latest snapshot wins", func(t *testing.T) {
		next := state.Clone()
		next.Sequence = 1
		next.CurrentAgent = models.AgentRetrievalPlanner
		require.NoError(t, svc.SaveSnapshot(ctx, models.AgentRetrievalPlanner, next))

		restored, err := svc.LatestState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, restored.Sequence)
		assert.Equal(t, models.AgentRetrievalPlanner, restored.CurrentAgent)
	})

	t.Run("duplicate sequence means a racing writer", func(t *testing.T) {
		dup := state.Clone()
		dup.Sequence = 1
		err := svc.SaveSnapshot(ctx, models.AgentRetrievalPlanner, dup)
		assert.ErrorIs(t, err, ErrConcurrentModification)
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		other := newConversation(t, svc)
		_, err := svc.LatestState(ctx, other)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMessageService(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := NewConversationService(client.Client)
	msgSvc := NewMessageService(client.Client)

	id := newConversation(t, convSvc)

	// Creating the conversation seeds the requirement as sequence 0.
	msgs, err := msgSvc.ListMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 0, msgs[0].Sequence)
	assert.Equal(t, "add pagination to the invoice listing endpoint", msgs[0].Content)

	_, err = msgSvc.AppendMessage(ctx, id, models.RoleAssistant, models.AgentRequirementAnalyzer, "analyzing the requirement")
	require.NoError(t, err)
	_, err = msgSvc.AppendMessage(ctx, id, models.RoleUser, "", "use cursor pagination")
	require.NoError(t, err)

	msgs, err = msgSvc.ListMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, 1, msgs[1].Sequence)
	assert.Equal(t, 2, msgs[2].Sequence)
	assert.Equal(t, "use cursor pagination", msgs[2].Content)

	_, err = msgSvc.AppendMessage(ctx, id, models.RoleUser, "", "")
	assert.True(t, IsValidationError(err))
}

func TestEventService(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := NewConversationService(client.Client)
	eventSvc := NewEventService(client.DB())

	id := newConversation(t, convSvc)

	for _, msg := range []string{"first", "second", "third"} {
		err := eventSvc.RecordEvent(ctx, events.StreamEvent{
			ConversationID: id,
			Status:         events.StatusRunning,
			Message:        msg,
		})
		require.NoError(t, err)
	}

	all, err := eventSvc.GetEventsSince(ctx, id, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Payload.Message)
	assert.Equal(t, "third", all[2].Payload.Message)

	tail, err := eventSvc.GetEventsSince(ctx, id, all[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "second", tail[0].Payload.Message)
}

func TestInteractionService(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := NewConversationService(client.Client)
	svc := NewInteractionService(client.Client, slog.Default())

	id := newConversation(t, convSvc)

	svc.RecordInteraction(ctx, llm.Interaction{
		ConversationID: id,
		Provider:       "openai",
		Op:             "chat",
		Agent:          models.AgentCodeGenerator,
		LatencyMS:      812,
		Outcome:        "success",
		InputTokens:    1200,
		OutputTokens:   450,
	})

	rows, err := svc.ListInteractions(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "openai", rows[0].Provider)
	assert.EqualValues(t, 812, rows[0].LatencyMs)
}

func TestBuildService(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := NewConversationService(client.Client)
	svc := NewBuildService(client.Client)

	id := newConversation(t, convSvc)

	row, err := svc.RecordAttempt(ctx, id, 1, &models.BuildResult{
		Success:    false,
		DurationMS: 30500,
		RawLog:     "[ERROR] /w/A.java:[1,2] cannot find symbol",
		Errors: []models.BuildError{
			{File: "/w/A.java", Line: 1, Column: 2, Message: "cannot find symbol", Kind: models.ErrorKindSymbolNotFound},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, row.Attempt)
	assert.Equal(t, 1, row.ErrorCount)

	attempts, err := svc.ListAttempts(ctx, id)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}
