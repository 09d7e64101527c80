package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patchwright/patchwright/pkg/events"
)

// StoredEvent is one persisted stream event, returned by catchup queries.
type StoredEvent struct {
	ID        int64              `json:"id"`
	Payload   events.StreamEvent `json:"payload"`
	CreatedAt time.Time          `json:"created_at"`
}

// EventService persists stream events and serves catchup queries for
// subscribers that attach after the in-memory buffer was cleared. Events are
// written with raw SQL so the BIGSERIAL id assigns the global order.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService. The db parameter should be the
// *sql.DB from database.Client.DB().
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// RecordEvent persists one stream event. Implements events.EventRecorder.
func (s *EventService) RecordEvent(ctx context.Context, ev events.StreamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (conversation_id, payload) VALUES ($1, $2)`,
		ev.ConversationID, payload)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEventsSince returns up to limit events for the conversation with id
// greater than sinceID, oldest first. sinceID 0 returns from the beginning.
func (s *EventService) GetEventsSince(ctx context.Context, conversationID string, sinceID int64, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, created_at
		   FROM events
		  WHERE conversation_id = $1 AND id > $2
		  ORDER BY id ASC
		  LIMIT $3`,
		conversationID, sinceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var (
			ev  StoredEvent
			raw []byte
		)
		if err := rows.Scan(&ev.ID, &raw, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if err := json.Unmarshal(raw, &ev.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}
	return out, nil
}

// CleanupExpiredEvents hard-deletes event rows older than the TTL. Returns
// the number of rows removed. Idempotent and safe to run from multiple pods.
func (s *EventService) CleanupExpiredEvents(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE created_at < $1`,
		time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted events: %w", err)
	}
	return n, nil
}
