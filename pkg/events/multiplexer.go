package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/patchwright/patchwright/pkg/config"
)

// liveSlack is extra channel capacity beyond the replay buffer so a drained
// backlog plus a burst of live events does not immediately stall the sender.
const liveSlack = 16

// Subscription is one attached stream consumer. Events is closed when the
// stream ends for any reason (terminal event, replacement, idle timeout).
type Subscription struct {
	Events <-chan StreamEvent

	ch     chan StreamEvent
	closed bool
}

// conversationStream is the per-conversation fan-out state. All fields are
// guarded by the multiplexer mutex.
type conversationStream struct {
	sub          *Subscription
	buffer       []StreamEvent
	lastActivity time.Time
}

// StreamMultiplexer routes events to at most one subscriber per
// conversation, buffering published events until a subscriber attaches.
type StreamMultiplexer struct {
	cfg    config.StreamConfig
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	streams map[string]*conversationStream

	done chan struct{}
	once sync.Once
}

// NewStreamMultiplexer creates the multiplexer and starts the idle sweeper.
func NewStreamMultiplexer(cfg config.StreamConfig, logger *slog.Logger) *StreamMultiplexer {
	m := &StreamMultiplexer{
		cfg:     cfg,
		logger:  logger.With("service", "events"),
		now:     time.Now,
		streams: make(map[string]*conversationStream),
		done:    make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Subscribe attaches a consumer to the conversation's stream. A prior
// subscriber, if any, is closed first. Buffered events are delivered in
// publish order on the returned channel before any live event, and the
// buffer is cleared.
func (m *StreamMultiplexer) Subscribe(conversationID string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := m.streamLocked(conversationID)
	if cs.sub != nil {
		m.logger.Warn("replacing existing stream subscriber", "conversation_id", conversationID)
		closeSubscription(cs.sub)
	}

	sub := &Subscription{ch: make(chan StreamEvent, m.cfg.BufferCapacity+liveSlack)}
	sub.Events = sub.ch
	for _, ev := range cs.buffer {
		sub.ch <- ev
	}
	cs.buffer = nil
	cs.sub = sub
	cs.lastActivity = m.now()
	return sub
}

// Publish delivers the event to the attached subscriber, or buffers it if
// none is attached. On buffer overflow the newest event is dropped.
func (m *StreamMultiplexer) Publish(conversationID string, ev StreamEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := m.streamLocked(conversationID)
	cs.lastActivity = m.now()

	if cs.sub != nil {
		select {
		case cs.sub.ch <- ev:
			return
		default:
			// The consumer stopped draining. Treat it like a client abort:
			// drop the subscriber and fall through to buffering so a
			// reconnect can replay.
			m.logger.Warn("stream subscriber stalled, detaching",
				"conversation_id", conversationID)
			closeSubscription(cs.sub)
			cs.sub = nil
		}
	}

	if len(cs.buffer) >= m.cfg.BufferCapacity {
		m.logger.Warn("stream buffer full, dropping event",
			"conversation_id", conversationID,
			"status", ev.Status)
		return
	}
	cs.buffer = append(cs.buffer, ev)
}

// Complete publishes a terminal COMPLETE event and closes the stream,
// clearing any buffered events.
func (m *StreamMultiplexer) Complete(conversationID, message string) {
	m.Publish(conversationID, StreamEvent{
		ConversationID: conversationID,
		Status:         StatusComplete,
		Message:        message,
	})
	m.close(conversationID)
}

// Fail publishes a terminal ERROR event and closes the stream, clearing any
// buffered events.
func (m *StreamMultiplexer) Fail(conversationID string, err error) {
	m.Publish(conversationID, StreamEvent{
		ConversationID: conversationID,
		Status:         StatusError,
		Message:        err.Error(),
	})
	m.close(conversationID)
}

// Unsubscribe detaches the given subscription if it is still the active one.
// clientAbort retains the buffer so a reconnecting client can replay what it
// missed; a clean detach clears the conversation's state.
func (m *StreamMultiplexer) Unsubscribe(conversationID string, sub *Subscription, clientAbort bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.streams[conversationID]
	if !ok || cs.sub != sub {
		return
	}
	closeSubscription(cs.sub)
	cs.sub = nil
	if !clientAbort {
		delete(m.streams, conversationID)
	}
}

// Close stops the idle sweeper and closes every active stream.
func (m *StreamMultiplexer) Close() {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cs := range m.streams {
		if cs.sub != nil {
			closeSubscription(cs.sub)
		}
		delete(m.streams, id)
	}
}

func (m *StreamMultiplexer) close(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.streams[conversationID]
	if !ok {
		return
	}
	if cs.sub != nil {
		closeSubscription(cs.sub)
	}
	delete(m.streams, conversationID)
}

func (m *StreamMultiplexer) streamLocked(conversationID string) *conversationStream {
	cs, ok := m.streams[conversationID]
	if !ok {
		cs = &conversationStream{lastActivity: m.now()}
		m.streams[conversationID] = cs
	}
	return cs
}

func (m *StreamMultiplexer) sweepLoop() {
	interval := m.cfg.IdleTimeout / 4
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.expireIdle(m.now())
		}
	}
}

// expireIdle closes streams with no traffic since before the idle cutoff and
// clears their buffers.
func (m *StreamMultiplexer) expireIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-m.cfg.IdleTimeout)
	for id, cs := range m.streams {
		if cs.lastActivity.After(cutoff) {
			continue
		}
		m.logger.Info("closing idle stream", "conversation_id", id)
		if cs.sub != nil {
			closeSubscription(cs.sub)
		}
		delete(m.streams, id)
	}
}

func closeSubscription(sub *Subscription) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
