// Package queue provides the Postgres-backed conversation queue and the
// worker pool that drains it. Workers claim pending conversations with
// FOR UPDATE SKIP LOCKED, so multiple replicas can poll the same table
// without double-processing.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/ent/conversation"
)

// Sentinel errors for queue operations.
var (
	// ErrNoConversationsAvailable indicates no pending conversations are in the queue.
	ErrNoConversationsAvailable = errors.New("no conversations available")

	// ErrAtCapacity indicates the global concurrent conversation limit has been reached.
	ErrAtCapacity = errors.New("at capacity")
)

// ConversationExecutor drives one claimed conversation to its next stop.
//
// The executor owns the workflow internally: it loads (or seeds) the state,
// runs the agent sequence, and writes snapshots, transcript rows, and the
// terminal status progressively as it goes. The worker only handles claiming,
// the heartbeat, and a safety-net terminal write if the executor could not
// record one itself (timeout, cancellation, crash).
type ConversationExecutor interface {
	Execute(ctx context.Context, conv *ent.Conversation) *ExecutionResult
}

// ExecutionResult is the outcome of one execution slice of a conversation.
// awaiting_user is a valid non-terminal outcome: the conversation released
// its worker and waits for user input.
type ExecutionResult struct {
	Status conversation.Status
	Error  error
}

// PoolHealth contains health information for the entire worker pool.
type PoolHealth struct {
	IsHealthy           bool           `json:"is_healthy"`
	DBReachable         bool           `json:"db_reachable"`
	DBError             string         `json:"db_error,omitempty"`
	PodID               string         `json:"pod_id"`
	ActiveWorkers       int            `json:"active_workers"`
	TotalWorkers        int            `json:"total_workers"`
	ActiveConversations int            `json:"active_conversations"`
	MaxConcurrent       int            `json:"max_concurrent"`
	QueueDepth          int            `json:"queue_depth"`
	WorkerStats         []WorkerHealth `json:"worker_stats"`
	LastOrphanScan      time.Time      `json:"last_orphan_scan"`
	OrphansRecovered    int            `json:"orphans_recovered"`
}

// WorkerHealth contains health information for a single worker.
type WorkerHealth struct {
	ID                     string    `json:"id"`
	Status                 string    `json:"status"` // "idle" or "working"
	CurrentConversationID  string    `json:"current_conversation_id,omitempty"`
	ConversationsProcessed int       `json:"conversations_processed"`
	LastActivity           time.Time `json:"last_activity"`
}
