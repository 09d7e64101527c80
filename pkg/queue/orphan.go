package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
)

// orphanState tracks orphan detection metrics (thread-safe).
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for orphaned conversations.
// All pods run this independently — operations are idempotent.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("Orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds running conversations with stale heartbeats
// and re-queues them as pending. The latest snapshot survives the owning
// pod's death, so another worker can pick the conversation up where it
// stopped.
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.Conversation.Query().
		Where(
			conversation.StatusEQ(conversation.StatusRunning),
			conversation.LastInteractionAtNotNil(),
			conversation.LastInteractionAtLT(threshold),
			conversation.DeletedAtIsNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query orphaned conversations: %w", err)
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("Detected orphaned conversations", "count", len(orphans))

	recovered := 0
	for _, conv := range orphans {
		if err := p.requeueOrphanedConversation(ctx, conv); err != nil {
			slog.Error("Failed to recover orphaned conversation",
				"conversation_id", conv.ID,
				"error", err)
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	return nil
}

// requeueOrphanedConversation puts a single orphaned conversation back into
// the pending queue.
func (p *WorkerPool) requeueOrphanedConversation(ctx context.Context, conv *ent.Conversation) error {
	lastHeartbeat := "unknown"
	if conv.LastInteractionAt != nil {
		lastHeartbeat = conv.LastInteractionAt.Format(time.RFC3339)
	}

	podID := "unknown"
	if conv.PodID != nil {
		podID = *conv.PodID
	}

	err := conv.Update().
		SetStatus(conversation.StatusPending).
		ClearPodID().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-queue conversation: %w", err)
	}

	slog.Warn("Orphaned conversation re-queued",
		"conversation_id", conv.ID,
		"old_pod_id", podID,
		"last_heartbeat", lastHeartbeat)
	return nil
}

// CleanupStartupOrphans re-queues conversations owned by this pod that were
// running when the pod previously crashed.
// Called once during startup, before the worker pool begins processing.
func CleanupStartupOrphans(ctx context.Context, client *ent.Client, podID string) error {
	orphans, err := client.Conversation.Query().
		Where(
			conversation.StatusEQ(conversation.StatusRunning),
			conversation.PodIDEQ(podID),
			conversation.DeletedAtIsNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query startup orphans: %w", err)
	}

	if len(orphans) == 0 {
		return nil
	}

	slog.Warn("Found startup orphans from previous run",
		"pod_id", podID,
		"count", len(orphans))

	for _, conv := range orphans {
		err := conv.Update().
			SetStatus(conversation.StatusPending).
			ClearPodID().
			Exec(ctx)
		if err != nil {
			slog.Error("Failed to re-queue startup orphan",
				"conversation_id", conv.ID,
				"error", err)
			continue
		}
		slog.Info("Startup orphan re-queued", "conversation_id", conv.ID)
	}

	return nil
}
