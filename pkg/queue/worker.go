package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/config"
)

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Worker is a single queue worker that polls for and processes conversations.
type Worker struct {
	id       string
	podID    string
	client   *ent.Client
	config   *config.QueueConfig
	executor ConversationExecutor
	pool     ConversationRegistry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Health tracking
	mu                     sync.RWMutex
	status                 WorkerStatus
	currentConversationID  string
	conversationsProcessed int
	lastActivity           time.Time
}

// ConversationRegistry is the subset of WorkerPool used by Worker for
// cancel-function registration.
type ConversationRegistry interface {
	RegisterConversation(conversationID string, cancel context.CancelFunc)
	UnregisterConversation(conversationID string)
}

// NewWorker creates a new queue worker.
func NewWorker(id, podID string, client *ent.Client, cfg *config.QueueConfig, executor ConversationExecutor, pool ConversationRegistry) *Worker {
	return &Worker{
		id:           id,
		podID:        podID,
		client:       client,
		config:       cfg,
		executor:     executor,
		pool:         pool,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:                     w.id,
		Status:                 string(w.status),
		CurrentConversationID:  w.currentConversationID,
		ConversationsProcessed: w.conversationsProcessed,
		LastActivity:           w.lastActivity,
	}
}

// run is the main worker loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id, "pod_id", w.podID)
	log.Info("Worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("Worker shutting down")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoConversationsAvailable) || errors.Is(err, ErrAtCapacity) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("Error processing conversation", "error", err)
				w.sleep(time.Second) // Brief backoff on error
			}
		}
	}
}

// sleep waits for the given duration or until stop is signalled.
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess checks capacity, claims a conversation, and processes it.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	// 1. Check global capacity (best-effort; racy with concurrent workers but
	//    bounded by WorkerCount and mitigated by poll jitter).
	activeCount, err := w.client.Conversation.Query().
		Where(conversation.StatusEQ(conversation.StatusRunning)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("checking active conversations: %w", err)
	}
	if activeCount >= w.config.MaxConcurrentConversations {
		return ErrAtCapacity
	}

	// 2. Claim next conversation
	conv, err := w.claimNextConversation(ctx)
	if err != nil {
		return err
	}

	log := slog.With("conversation_id", conv.ID, "worker_id", w.id)
	log.Info("Conversation claimed")

	w.setStatus(WorkerStatusWorking, conv.ID)
	defer w.setStatus(WorkerStatusIdle, "")

	// 3. Create conversation context with timeout
	convCtx, cancelConv := context.WithTimeout(ctx, w.config.ConversationTimeout)
	defer cancelConv()

	// 4. Register cancel function for API-triggered cancellation
	w.pool.RegisterConversation(conv.ID, cancelConv)
	defer w.pool.UnregisterConversation(conv.ID)

	// 5. Start heartbeat
	heartbeatCtx, cancelHeartbeat := context.WithCancel(convCtx)
	defer cancelHeartbeat()
	go w.runHeartbeat(heartbeatCtx, conv.ID)

	// 6. Execute the workflow slice
	result := w.executor.Execute(convCtx, conv)

	// 6a. Nil-guard and timeout/cancellation classification. The conversation
	//     status enum has no timed_out value; a deadline counts as failed.
	if result == nil {
		result = &ExecutionResult{}
	}
	if result.Status == "" && errors.Is(convCtx.Err(), context.DeadlineExceeded) {
		result = &ExecutionResult{
			Status: conversation.StatusFailed,
			Error:  fmt.Errorf("conversation timed out after %v", w.config.ConversationTimeout),
		}
	}
	if result.Status == "" && errors.Is(convCtx.Err(), context.Canceled) {
		result = &ExecutionResult{
			Status: conversation.StatusCancelled,
			Error:  context.Canceled,
		}
	}
	if result.Status == "" {
		result = &ExecutionResult{
			Status: conversation.StatusFailed,
			Error:  fmt.Errorf("executor returned no status"),
		}
	}

	// 7. Stop heartbeat
	cancelHeartbeat()

	// 8. Safety-net terminal write (use background context — the conversation
	//    ctx may be cancelled). The executor normally records the outcome
	//    itself; this only fires when it could not.
	if err := w.ensureTerminalStatus(context.Background(), conv.ID, result); err != nil {
		log.Error("Failed to record conversation terminal status", "error", err)
		return err
	}

	w.mu.Lock()
	w.conversationsProcessed++
	w.mu.Unlock()

	log.Info("Conversation processing complete", "status", result.Status)
	return nil
}

// claimNextConversation atomically claims the next pending conversation using
// FOR UPDATE SKIP LOCKED.
func (w *Worker) claimNextConversation(ctx context.Context) (*ent.Conversation, error) {
	tx, err := w.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// SELECT ... FOR UPDATE SKIP LOCKED
	// Order by created_at for FIFO processing
	conv, err := tx.Conversation.Query().
		Where(
			conversation.StatusEQ(conversation.StatusPending),
			conversation.DeletedAtIsNil(),
		).
		Order(ent.Asc(conversation.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoConversationsAvailable
		}
		return nil, fmt.Errorf("failed to query pending conversation: %w", err)
	}

	// Claim: set running, pod_id, started_at, last_interaction_at
	now := time.Now()
	conv, err = conv.Update().
		SetStatus(conversation.StatusRunning).
		SetPodID(w.podID).
		SetStartedAt(now).
		SetLastInteractionAt(now).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return conv, nil
}

// runHeartbeat periodically updates last_interaction_at for orphan detection.
func (w *Worker) runHeartbeat(ctx context.Context, conversationID string) {
	ticker := time.NewTicker(w.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.Conversation.UpdateOneID(conversationID).
				SetLastInteractionAt(time.Now()).
				Exec(ctx); err != nil {
				slog.Warn("Heartbeat update failed", "conversation_id", conversationID, "error", err)
			}
		}
	}
}

// ensureTerminalStatus writes the final conversation status if the executor
// did not already leave the row in a settled state (terminal or
// awaiting_user). The conditional WHERE keeps this from clobbering a status
// another writer recorded first.
func (w *Worker) ensureTerminalStatus(ctx context.Context, conversationID string, result *ExecutionResult) error {
	if result.Status == conversation.StatusAwaitingUser {
		// Suspension is recorded by the workflow runtime; nothing to settle.
		return nil
	}

	update := w.client.Conversation.Update().
		Where(
			conversation.ID(conversationID),
			conversation.StatusEQ(conversation.StatusRunning),
		).
		SetStatus(result.Status).
		SetCompletedAt(time.Now())
	if result.Error != nil {
		update = update.SetErrorMessage(result.Error.Error())
	}

	n, err := update.Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to settle conversation status: %w", err)
	}
	if n > 0 {
		slog.Warn("Executor left conversation running, settled by worker",
			"conversation_id", conversationID, "status", result.Status)
	}
	return nil
}

// pollInterval returns the poll duration with jitter.
func (w *Worker) pollInterval() time.Duration {
	base := w.config.PollInterval
	jitter := w.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	// Range: [base - jitter, base + jitter]
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

// setStatus updates the worker's health tracking state.
func (w *Worker) setStatus(status WorkerStatus, conversationID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentConversationID = conversationID
	w.lastActivity = time.Now()
}
