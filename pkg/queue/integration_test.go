package queue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/services"
	testdb "github.com/patchwright/patchwright/test/database"
)

// createTestConversation creates a conversation in pending status.
func createTestConversation(ctx context.Context, t *testing.T, client *ent.Client) *ent.Conversation {
	t.Helper()
	conv, err := client.Conversation.Create().
		SetID(uuid.New().String()).
		SetRequirement("add a refund endpoint").
		SetRepoURL("https://github.com/acme/billing").
		SetMode(conversation.ModeMaintain).
		SetStatus(conversation.StatusPending).
		Save(ctx)
	require.NoError(t, err)
	return conv
}

// intTestQueueConfig returns a queue config suitable for integration tests.
func intTestQueueConfig() *config.QueueConfig {
	return &config.QueueConfig{
		WorkerCount:                2,
		MaxConcurrentConversations: 10,
		PollInterval:               100 * time.Millisecond,
		PollIntervalJitter:         0,
		ConversationTimeout:        30 * time.Second,
		GracefulShutdownTimeout:    10 * time.Second,
		HeartbeatInterval:          30 * time.Second,
		OrphanDetectionInterval:    1 * time.Second,
		OrphanThreshold:            2 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// awaitCondition polls until condition returns true or the timeout elapses.
func awaitCondition(t *testing.T, timeout, interval time.Duration, msg string, condition func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out: %s", msg)
		default:
			if condition() {
				return
			}
			time.Sleep(interval)
		}
	}
}

// recordingExecutor returns a fixed result and remembers what it processed.
type recordingExecutor struct {
	mu        sync.Mutex
	processed []string
	result    *ExecutionResult
}

func (e *recordingExecutor) Execute(_ context.Context, conv *ent.Conversation) *ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed = append(e.processed, conv.ID)
	return e.result
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.processed)
}

func TestForUpdateSkipLockedClaiming(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	conv := createTestConversation(ctx, t, client)

	cfg := intTestQueueConfig()
	w := NewWorker("test-worker-0", "test-pod", client, cfg, nil, nil)

	claimed, err := w.claimNextConversation(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed, "worker should claim the pending conversation")
	assert.Equal(t, conv.ID, claimed.ID)
	assert.Equal(t, conversation.StatusRunning, claimed.Status)
	require.NotNil(t, claimed.PodID)
	assert.Equal(t, "test-pod", *claimed.PodID)
	require.NotNil(t, claimed.StartedAt)
	require.NotNil(t, claimed.LastInteractionAt)

	// Second claim should return ErrNoConversationsAvailable
	claimed2, err := w.claimNextConversation(ctx)
	assert.ErrorIs(t, err, ErrNoConversationsAvailable)
	assert.Nil(t, claimed2, "no more pending conversations should be available")
}

func TestConcurrentClaimsDifferentConversations(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	ids := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		c := createTestConversation(ctx, t, client)
		ids[c.ID] = struct{}{}
	}

	cfg := intTestQueueConfig()
	var mu sync.Mutex
	claimed := make([]string, 0, 5)
	errCh := make(chan error, 5)
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w := NewWorker(fmt.Sprintf("worker-%d", workerID), "test-pod", client, cfg, nil, nil)
			conv, err := w.claimNextConversation(ctx)
			if err != nil {
				errCh <- fmt.Errorf("worker-%d claim failed: %w", workerID, err)
				return
			}
			mu.Lock()
			claimed = append(claimed, conv.ID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	// All 5 conversations claimed, each by exactly one worker (no duplicates)
	assert.Len(t, claimed, 5, "all 5 conversations should be claimed")
	seen := make(map[string]struct{})
	for _, id := range claimed {
		_, dup := seen[id]
		assert.False(t, dup, "conversation %s claimed by multiple workers", id)
		seen[id] = struct{}{}
		_, ok := ids[id]
		assert.True(t, ok, "claimed conversation %s was not in the original set", id)
	}
}

func TestOrphanRecovery(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	// A conversation claimed by a pod that stopped heartbeating.
	stale := time.Now().Add(-10 * time.Minute)
	conv := createTestConversation(ctx, t, client)
	conv, err := conv.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID("dead-pod").
		SetLastInteractionAt(stale).
		Save(ctx)
	require.NoError(t, err)

	// A healthy running conversation on a live pod must be left alone.
	healthy := createTestConversation(ctx, t, client)
	healthy, err = healthy.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID("live-pod").
		SetLastInteractionAt(time.Now()).
		Save(ctx)
	require.NoError(t, err)

	pool := NewWorkerPool("test-pod", client, intTestQueueConfig(), nil)
	require.NoError(t, pool.detectAndRecoverOrphans(ctx))

	recovered, err := client.Conversation.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusPending, recovered.Status, "orphan should be re-queued")
	assert.Nil(t, recovered.PodID, "orphan pod assignment should be cleared")

	untouched, err := client.Conversation.Get(ctx, healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusRunning, untouched.Status)

	health := pool.Health()
	assert.Equal(t, 1, health.OrphansRecovered)
	assert.False(t, health.LastOrphanScan.IsZero())
}

func TestStartupOrphanCleanup(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	mine := createTestConversation(ctx, t, client)
	_, err := mine.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID("restarting-pod").
		Save(ctx)
	require.NoError(t, err)

	other := createTestConversation(ctx, t, client)
	_, err = other.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID("other-pod").
		Save(ctx)
	require.NoError(t, err)

	require.NoError(t, CleanupStartupOrphans(ctx, client, "restarting-pod"))

	recovered, err := client.Conversation.Get(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusPending, recovered.Status)
	assert.Nil(t, recovered.PodID)

	untouched, err := client.Conversation.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StatusRunning, untouched.Status, "other pod's conversation must not be touched")
}

func TestPoolEndToEndWithRecordingExecutor(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	conv := createTestConversation(ctx, t, client)

	// The recording executor does not persist anything, so the worker's
	// safety net must settle the row.
	executor := &recordingExecutor{result: &ExecutionResult{Status: conversation.StatusCompleted}}
	pool := NewWorkerPool("test-pod", client, intTestQueueConfig(), executor)
	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	awaitCondition(t, 10*time.Second, 50*time.Millisecond, "conversation should be processed", func() bool {
		return executor.count() >= 1
	})
	awaitCondition(t, 10*time.Second, 50*time.Millisecond, "conversation should be settled", func() bool {
		got, err := client.Conversation.Get(ctx, conv.ID)
		return err == nil && got.Status == conversation.StatusCompleted
	})

	got, err := client.Conversation.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
}

func TestCapacityLimits(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	// One conversation already running globally.
	running := createTestConversation(ctx, t, client)
	_, err := running.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID("other-pod").
		Save(ctx)
	require.NoError(t, err)

	createTestConversation(ctx, t, client) // pending, but over capacity

	cfg := intTestQueueConfig()
	cfg.MaxConcurrentConversations = 1
	w := NewWorker("test-worker-0", "test-pod", client, cfg, nil, nil)

	err = w.pollAndProcess(ctx)
	assert.ErrorIs(t, err, ErrAtCapacity)
}

func TestHeartbeatUpdates(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	conv := createTestConversation(ctx, t, client)
	_, err := conv.Update().
		SetStatus(conversation.StatusRunning).
		SetLastInteractionAt(before).
		Save(ctx)
	require.NoError(t, err)

	cfg := intTestQueueConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	w := NewWorker("test-worker-0", "test-pod", client, cfg, nil, nil)

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go w.runHeartbeat(hbCtx, conv.ID)

	awaitCondition(t, 5*time.Second, 25*time.Millisecond, "heartbeat should refresh last_interaction_at", func() bool {
		got, err := client.Conversation.Get(ctx, conv.ID)
		return err == nil && got.LastInteractionAt != nil && got.LastInteractionAt.After(before)
	})
}

func TestEnsureTerminalStatus(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	client := dbClient.Client
	ctx := context.Background()

	cfg := intTestQueueConfig()
	w := NewWorker("test-worker-0", "test-pod", client, cfg, nil, nil)

	t.Run("settles a conversation left running", func(t *testing.T) {
		conv := createTestConversation(ctx, t, client)
		_, err := conv.Update().SetStatus(conversation.StatusRunning).Save(ctx)
		require.NoError(t, err)

		result := &ExecutionResult{
			Status: conversation.StatusFailed,
			Error:  fmt.Errorf("conversation timed out after 30s"),
		}
		require.NoError(t, w.ensureTerminalStatus(ctx, conv.ID, result))

		got, err := client.Conversation.Get(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, conversation.StatusFailed, got.Status)
		require.NotNil(t, got.ErrorMessage)
		assert.Contains(t, *got.ErrorMessage, "timed out")
	})

	t.Run("leaves an already-settled conversation alone", func(t *testing.T) {
		conv := createTestConversation(ctx, t, client)
		_, err := conv.Update().
			SetStatus(conversation.StatusRunning).
			Save(ctx)
		require.NoError(t, err)
		_, err = conv.Update().
			SetStatus(conversation.StatusCompleted).
			Save(ctx)
		require.NoError(t, err)

		result := &ExecutionResult{Status: conversation.StatusFailed, Error: fmt.Errorf("late failure")}
		require.NoError(t, w.ensureTerminalStatus(ctx, conv.ID, result))

		got, err := client.Conversation.Get(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, conversation.StatusCompleted, got.Status, "executor outcome must not clobber the recorded one")
	})

	t.Run("skips awaiting_user outcomes", func(t *testing.T) {
		conv := createTestConversation(ctx, t, client)
		_, err := conv.Update().SetStatus(conversation.StatusRunning).Save(ctx)
		require.NoError(t, err)
		_, err = conv.Update().SetStatus(conversation.StatusAwaitingUser).Save(ctx)
		require.NoError(t, err)

		result := &ExecutionResult{Status: conversation.StatusAwaitingUser}
		require.NoError(t, w.ensureTerminalStatus(ctx, conv.ID, result))

		got, err := client.Conversation.Get(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, conversation.StatusAwaitingUser, got.Status)
	})
}

func TestWorkflowExecutorStateLoading(t *testing.T) {
	dbClient := testdb.NewTestClient(t)
	ctx := context.Background()

	convSvc := services.NewConversationService(dbClient.Client)
	msgSvc := services.NewMessageService(dbClient.Client)
	executor := NewWorkflowExecutor(nil, convSvc, msgSvc, testLogger())

	created, err := convSvc.CreateConversation(ctx, models.CreateConversationRequest{
		Requirement: "add a refund endpoint",
		RepoURL:     "https://github.com/acme/billing",
		Mode:        models.ModeMaintain,
	})
	require.NoError(t, err)
	conv, err := dbClient.Client.Conversation.Get(ctx, created.ID)
	require.NoError(t, err)

	t.Run("seeds fresh state from the conversation row", func(t *testing.T) {
		state, err := executor.loadState(ctx, conv)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, state.ConversationID)
		assert.Equal(t, models.ModeMaintain, state.Mode)
		assert.Equal(t, models.StatusRunning, state.Status)
		require.Len(t, state.Messages, 1)
		assert.Equal(t, models.RoleUser, state.Messages[0].Role)
		assert.Equal(t, "add a refund endpoint", state.Messages[0].Content)
	})

	t.Run("resumes from the latest snapshot and folds in the user reply", func(t *testing.T) {
		suspended := &models.WorkflowState{
			ConversationID: conv.ID,
			RepoURL:        conv.RepoURL,
			Mode:           models.ModeMaintain,
			Status:         models.StatusAwaitingUser,
			CurrentAgent:   models.AgentRequirementAnalyzer,
			Sequence:       1,
			Messages: []models.ConversationMessage{
				{Role: models.RoleUser, Content: "add a refund endpoint"},
			},
		}
		require.NoError(t, convSvc.SaveSnapshot(ctx, models.AgentRequirementAnalyzer, suspended))

		_, err := msgSvc.AppendMessage(ctx, conv.ID, models.RoleUser, "", "use the Stripe refund API")
		require.NoError(t, err)

		state, err := executor.loadState(ctx, conv)
		require.NoError(t, err)
		assert.Equal(t, models.AgentRequirementAnalyzer, state.CurrentAgent)
		require.Len(t, state.Messages, 2)
		assert.Equal(t, "use the Stripe refund API", state.Messages[1].Content)
		assert.Equal(t, models.RoleUser, state.Messages[1].Role)
	})
}
