package events

import (
	"context"
	"log/slog"
)

// EventRecorder persists stream events for catch-up queries and audit.
// Implemented by services.EventService.
type EventRecorder interface {
	RecordEvent(ctx context.Context, ev StreamEvent) error
}

// Publisher persists each event and then dispatches it in-memory. The write
// happens first so a reader who missed the live dispatch can always recover
// the event from the store.
type Publisher struct {
	mux      *StreamMultiplexer
	recorder EventRecorder
	logger   *slog.Logger
}

// NewPublisher wires the multiplexer to the persistence layer. recorder may
// be nil, in which case events are dispatch-only.
func NewPublisher(mux *StreamMultiplexer, recorder EventRecorder, logger *slog.Logger) *Publisher {
	return &Publisher{
		mux:      mux,
		recorder: recorder,
		logger:   logger.With("service", "events"),
	}
}

// Publish records the event and dispatches it to the conversation's stream.
// A persistence failure is logged but does not block live delivery.
func (p *Publisher) Publish(ctx context.Context, ev StreamEvent) {
	p.record(ctx, ev)
	p.mux.Publish(ev.ConversationID, ev)
}

// Complete records the terminal event and closes the stream.
func (p *Publisher) Complete(ctx context.Context, conversationID, message string) {
	p.record(ctx, StreamEvent{
		ConversationID: conversationID,
		Status:         StatusComplete,
		Message:        message,
	})
	p.mux.Complete(conversationID, message)
}

// Fail records the terminal error event and closes the stream.
func (p *Publisher) Fail(ctx context.Context, conversationID string, err error) {
	p.record(ctx, StreamEvent{
		ConversationID: conversationID,
		Status:         StatusError,
		Message:        err.Error(),
	})
	p.mux.Fail(conversationID, err)
}

func (p *Publisher) record(ctx context.Context, ev StreamEvent) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordEvent(ctx, ev); err != nil {
		p.logger.WarnContext(ctx, "failed to persist stream event",
			"conversation_id", ev.ConversationID,
			"status", ev.Status,
			"error", err)
	}
}
