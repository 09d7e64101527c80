package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
	"github.com/patchwright/patchwright/pkg/config"
)

// WorkerPool manages a pool of queue workers.
type WorkerPool struct {
	podID    string
	client   *ent.Client
	config   *config.QueueConfig
	executor ConversationExecutor
	workers  []*Worker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Conversation cancel registry: conversation_id → cancel function
	active  map[string]context.CancelFunc
	mu      sync.RWMutex
	started bool

	// Orphan detection state
	orphans orphanState
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(podID string, client *ent.Client, cfg *config.QueueConfig, executor ConversationExecutor) *WorkerPool {
	return &WorkerPool{
		podID:    podID,
		client:   client,
		config:   cfg,
		executor: executor,
		workers:  make([]*Worker, 0, cfg.WorkerCount),
		stopCh:   make(chan struct{}),
		active:   make(map[string]context.CancelFunc),
	}
}

// Start spawns worker goroutines and the orphan detection background task.
// It is safe to call multiple times; subsequent calls are no-ops.
func (p *WorkerPool) Start(ctx context.Context) error {
	if p.started {
		slog.Warn("Worker pool already started, ignoring duplicate Start call", "pod_id", p.podID)
		return nil
	}
	p.started = true

	slog.Info("Starting worker pool", "pod_id", p.podID, "worker_count", p.config.WorkerCount)

	for i := 0; i < p.config.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-worker-%d", p.podID, i)
		worker := NewWorker(workerID, p.podID, p.client, p.config, p.executor, p)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}

	// Start orphan detection
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(ctx)
	}()

	slog.Info("Worker pool started")
	return nil
}

// Stop signals all workers to stop and waits for them to finish.
// Workers finish their current conversations before exiting (graceful shutdown).
func (p *WorkerPool) Stop() {
	slog.Info("Stopping worker pool gracefully")

	active := p.getActiveConversationIDs()
	if len(active) > 0 {
		slog.Info("Waiting for active conversations to complete",
			"count", len(active),
			"conversation_ids", active)
	}

	// Signal all workers to stop (they finish current conversations)
	for _, worker := range p.workers {
		worker.Stop()
	}

	// Signal orphan detection to stop
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()

	slog.Info("Worker pool stopped gracefully")
}

// RegisterConversation stores a cancel function for manual cancellation.
func (p *WorkerPool) RegisterConversation(conversationID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[conversationID] = cancel
}

// UnregisterConversation removes the cancel function when processing ends.
func (p *WorkerPool) UnregisterConversation(conversationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, conversationID)
}

// CancelConversation triggers context cancellation for a conversation running
// on this pod. Returns true if it was found and cancelled here.
func (p *WorkerPool) CancelConversation(conversationID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cancel, ok := p.active[conversationID]; ok {
		cancel()
		return true
	}
	return false
}

// Health returns the current health status of the pool.
func (p *WorkerPool) Health() *PoolHealth {
	ctx := context.Background()

	queueDepth, errQ := p.client.Conversation.Query().
		Where(
			conversation.StatusEQ(conversation.StatusPending),
			conversation.DeletedAtIsNil(),
		).
		Count(ctx)
	if errQ != nil {
		slog.Error("Failed to query queue depth for health check",
			"pod_id", p.podID,
			"error", errQ)
	}

	activeConversations, errA := p.client.Conversation.Query().
		Where(
			conversation.StatusEQ(conversation.StatusRunning),
			conversation.PodIDEQ(p.podID),
		).
		Count(ctx)
	if errA != nil {
		slog.Error("Failed to query active conversations for health check",
			"pod_id", p.podID,
			"error", errA)
	}

	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, worker := range p.workers {
		stats := worker.Health()
		workerStats[i] = stats
		if stats.Status == string(WorkerStatusWorking) {
			activeWorkers++
		}
	}

	// DB errors affect health status - if we can't reach the DB, we're not healthy
	dbHealthy := errQ == nil && errA == nil
	isHealthy := len(p.workers) > 0 && activeConversations <= p.config.MaxConcurrentConversations && dbHealthy

	p.orphans.mu.Lock()
	lastOrphanScan := p.orphans.lastOrphanScan
	orphansRecovered := p.orphans.orphansRecovered
	p.orphans.mu.Unlock()

	var dbError string
	if !dbHealthy {
		if errQ != nil {
			dbError = fmt.Sprintf("queue depth query failed: %v", errQ)
		} else if errA != nil {
			dbError = fmt.Sprintf("active conversations query failed: %v", errA)
		}
	}

	return &PoolHealth{
		IsHealthy:           isHealthy,
		DBReachable:         dbHealthy,
		DBError:             dbError,
		PodID:               p.podID,
		ActiveWorkers:       activeWorkers,
		TotalWorkers:        len(p.workers),
		ActiveConversations: activeConversations,
		MaxConcurrent:       p.config.MaxConcurrentConversations,
		QueueDepth:          queueDepth,
		WorkerStats:         workerStats,
		LastOrphanScan:      lastOrphanScan,
		OrphansRecovered:    orphansRecovered,
	}
}

// getActiveConversationIDs returns IDs of currently processing conversations (for logging).
func (p *WorkerPool) getActiveConversationIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.active))
	for id := range p.active {
		ids = append(ids, id)
	}
	return ids
}
