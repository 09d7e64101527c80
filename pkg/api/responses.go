package api

import (
	"github.com/patchwright/patchwright/ent"
	"github.com/patchwright/patchwright/pkg/database"
	"github.com/patchwright/patchwright/pkg/models"
	"github.com/patchwright/patchwright/pkg/queue"
)

// ConversationDetailResponse is returned by GET /api/v1/conversations/:id.
// State is the latest masked workflow snapshot, absent until the first
// transition is recorded.
type ConversationDetailResponse struct {
	Conversation *ent.Conversation     `json:"conversation"`
	State        *models.WorkflowState `json:"state,omitempty"`
}

// ConversationsListResponse is returned by GET /api/v1/conversations.
type ConversationsListResponse struct {
	Conversations []*ent.Conversation `json:"conversations"`
	Count         int                 `json:"count"`
}

// MessageResponse is returned by POST /api/v1/conversations/:id/messages.
type MessageResponse struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Sequence       int    `json:"sequence"`
	Status         string `json:"status"`
}

// CancelResponse is returned by POST /api/v1/conversations/:id/cancel.
type CancelResponse struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// HealthCheck is one component's health entry.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string                 `json:"status"`
	Version    string                 `json:"version"`
	Checks     map[string]HealthCheck `json:"checks"`
	Database   *database.HealthStatus `json:"database,omitempty"`
	WorkerPool *queue.PoolHealth      `json:"worker_pool,omitempty"`
}
