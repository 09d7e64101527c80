package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/services"
	testdb "github.com/patchwright/patchwright/test/database"
)

func retentionConfig() *config.RetentionConfig {
	return &config.RetentionConfig{
		ConversationRetentionDays: 90,
		EventTTL:                  1 * time.Hour,
		CleanupInterval:           1 * time.Hour,
	}
}

func createConversation(t *testing.T, svc *services.ConversationService) string {
	t.Helper()
	conv, err := svc.CreateConversation(context.Background(), models.CreateConversationRequest{
		ConversationID: uuid.New().String(),
		Requirement:    "add pagination",
		RepoURL:        "https://github.com/acme/billing",
	})
	require.NoError(t, err)
	return conv.ID
}

func TestService_SoftDeletesOldCompletedConversations(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := services.NewConversationService(client.Client)
	eventSvc := services.NewEventService(client.DB())

	old := createConversation(t, convSvc)
	err := client.Conversation.UpdateOneID(old).
		SetStatus(conversation.StatusCompleted).
		SetCompletedAt(time.Now().Add(-120 * 24 * time.Hour)).
		Exec(ctx)
	require.NoError(t, err)

	recent := createConversation(t, convSvc)
	err = client.Conversation.UpdateOneID(recent).
		SetStatus(conversation.StatusCompleted).
		SetCompletedAt(time.Now().Add(-24 * time.Hour)).
		Exec(ctx)
	require.NoError(t, err)

	svc := NewService(retentionConfig(), convSvc, eventSvc)
	svc.runAll(ctx)

	oldConv, err := client.Conversation.Get(ctx, old)
	require.NoError(t, err)
	assert.NotNil(t, oldConv.DeletedAt, "conversation past retention should be soft-deleted")

	recentConv, err := client.Conversation.Get(ctx, recent)
	require.NoError(t, err)
	assert.Nil(t, recentConv.DeletedAt, "recent conversation must survive")
}

func TestService_SoftDeletesStalePendingConversations(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := services.NewConversationService(client.Client)
	eventSvc := services.NewEventService(client.DB())

	stale := createConversation(t, convSvc)
	err := client.Conversation.UpdateOneID(stale).
		SetCreatedAt(time.Now().Add(-120 * 24 * time.Hour)).
		Exec(ctx)
	require.NoError(t, err)

	svc := NewService(retentionConfig(), convSvc, eventSvc)
	svc.runAll(ctx)

	got, err := client.Conversation.Get(ctx, stale)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt, "stale pending conversation should be soft-deleted")
}

func TestService_LeavesRunningConversationsAlone(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := services.NewConversationService(client.Client)
	eventSvc := services.NewEventService(client.DB())

	running := createConversation(t, convSvc)
	err := client.Conversation.UpdateOneID(running).
		SetStatus(conversation.StatusRunning).
		SetCreatedAt(time.Now().Add(-120 * 24 * time.Hour)).
		Exec(ctx)
	require.NoError(t, err)

	svc := NewService(retentionConfig(), convSvc, eventSvc)
	svc.runAll(ctx)

	got, err := client.Conversation.Get(ctx, running)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt, "running conversation must never be reaped")
}

func TestService_CleansUpExpiredEvents(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()
	convSvc := services.NewConversationService(client.Client)
	eventSvc := services.NewEventService(client.DB())

	id := createConversation(t, convSvc)
	require.NoError(t, eventSvc.RecordEvent(ctx, events.StreamEvent{
		ConversationID: id,
		Status:         events.StatusRunning,
		Message:        "running requirement_analyzer",
	}))

	// Age the row past the TTL.
	_, err := client.DB().ExecContext(ctx,
		`UPDATE events SET created_at = created_at - INTERVAL '2 hours' WHERE conversation_id = $1`, id)
	require.NoError(t, err)

	require.NoError(t, eventSvc.RecordEvent(ctx, events.StreamEvent{
		ConversationID: id,
		Status:         events.StatusComplete,
		Message:        "done",
	}))

	svc := NewService(retentionConfig(), convSvc, eventSvc)
	svc.runAll(ctx)

	remaining, err := eventSvc.GetEventsSince(ctx, id, 0, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "only the fresh event should survive")
	assert.Equal(t, events.StatusComplete, remaining[0].Payload.Status)
}

func TestService_StartStop(t *testing.T) {
	client := testdb.NewTestClient(t)
	convSvc := services.NewConversationService(client.Client)
	eventSvc := services.NewEventService(client.DB())

	cfg := retentionConfig()
	cfg.CleanupInterval = 50 * time.Millisecond
	svc := NewService(cfg, convSvc, eventSvc)

	svc.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	svc.Stop()

	// Stop again is a no-op.
	svc.Stop()
}
