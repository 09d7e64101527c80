package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
)

func newTestMux(t *testing.T, capacity int) *StreamMultiplexer {
	t.Helper()
	m := NewStreamMultiplexer(config.StreamConfig{
		BufferCapacity: capacity,
		IdleTimeout:    15 * time.Minute,
	}, slog.Default())
	t.Cleanup(m.Close)
	return m
}

func event(conversationID string, status StreamStatus, msg string) StreamEvent {
	return StreamEvent{ConversationID: conversationID, Status: status, Message: msg}
}

func drain(sub *Subscription, n int) []StreamEvent {
	out := make([]StreamEvent, 0, n)
	for i := 0; i < n; i++ {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-time.After(time.Second):
			return out
		}
	}
	return out
}

func TestSubscribe_ReplaysBufferedEventsInOrder(t *testing.T) {
	m := newTestMux(t, 100)

	for i := 0; i < 5; i++ {
		m.Publish("c1", event("c1", StatusRunning, fmt.Sprintf("step %d", i)))
	}
	sub := m.Subscribe("c1")
	m.Publish("c1", event("c1", StatusThinking, "live"))

	got := drain(sub, 6)
	require.Len(t, got, 6)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("step %d", i), got[i].Message)
	}
	assert.Equal(t, "live", got[5].Message)
}

func TestSubscribe_BufferClearedAfterReplay(t *testing.T) {
	m := newTestMux(t, 100)

	m.Publish("c1", event("c1", StatusRunning, "first"))
	sub1 := m.Subscribe("c1")
	require.Len(t, drain(sub1, 1), 1)

	// A clean detach and resubscribe must not replay anything.
	m.Unsubscribe("c1", sub1, false)
	sub2 := m.Subscribe("c1")
	assert.Empty(t, drain(sub2, 1))
}

func TestPublish_OverflowDropsNewest(t *testing.T) {
	m := newTestMux(t, 3)

	for i := 0; i < 5; i++ {
		m.Publish("c1", event("c1", StatusRunning, fmt.Sprintf("step %d", i)))
	}
	sub := m.Subscribe("c1")
	got := drain(sub, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "step 0", got[0].Message)
	assert.Equal(t, "step 2", got[2].Message)
}

func TestSubscribe_SecondSubscriberClosesFirst(t *testing.T) {
	m := newTestMux(t, 100)

	sub1 := m.Subscribe("c1")
	sub2 := m.Subscribe("c1")

	_, open := <-sub1.Events
	assert.False(t, open, "prior subscription should be closed")

	m.Publish("c1", event("c1", StatusRunning, "for the second"))
	got := drain(sub2, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "for the second", got[0].Message)
}

func TestComplete_SendsTerminalEventAndClosesStream(t *testing.T) {
	m := newTestMux(t, 100)

	sub := m.Subscribe("c1")
	m.Complete("c1", "done")

	got := drain(sub, 1)
	require.Len(t, got, 1)
	assert.Equal(t, StatusComplete, got[0].Status)
	assert.True(t, got[0].Status.Terminal())

	_, open := <-sub.Events
	assert.False(t, open)

	// Completion clears state; a fresh subscriber sees nothing.
	sub2 := m.Subscribe("c1")
	assert.Empty(t, drain(sub2, 1))
}

func TestFail_SendsErrorEvent(t *testing.T) {
	m := newTestMux(t, 100)

	sub := m.Subscribe("c1")
	m.Fail("c1", errors.New("compile step exploded"))

	got := drain(sub, 1)
	require.Len(t, got, 1)
	assert.Equal(t, StatusError, got[0].Status)
	assert.Equal(t, "compile step exploded", got[0].Message)
}

func TestUnsubscribe_ClientAbortRetainsBuffer(t *testing.T) {
	m := newTestMux(t, 100)

	sub := m.Subscribe("c1")
	m.Unsubscribe("c1", sub, true)

	m.Publish("c1", event("c1", StatusRunning, "while away"))

	sub2 := m.Subscribe("c1")
	got := drain(sub2, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "while away", got[0].Message)
}

func TestUnsubscribe_StaleSubscriptionIsIgnored(t *testing.T) {
	m := newTestMux(t, 100)

	sub1 := m.Subscribe("c1")
	sub2 := m.Subscribe("c1")
	m.Unsubscribe("c1", sub1, false)

	m.Publish("c1", event("c1", StatusRunning, "still live"))
	got := drain(sub2, 1)
	require.Len(t, got, 1)
}

func TestExpireIdle_ClosesStreamAndClearsBuffer(t *testing.T) {
	m := newTestMux(t, 100)

	sub := m.Subscribe("c1")
	m.Publish("c2", event("c2", StatusRunning, "buffered"))

	m.expireIdle(time.Now().Add(16 * time.Minute))

	_, open := <-sub.Events
	assert.False(t, open)

	sub2 := m.Subscribe("c2")
	assert.Empty(t, drain(sub2, 1))
}

func TestExpireIdle_KeepsActiveStreams(t *testing.T) {
	m := newTestMux(t, 100)

	sub := m.Subscribe("c1")
	m.expireIdle(time.Now())

	m.Publish("c1", event("c1", StatusRunning, "still here"))
	require.Len(t, drain(sub, 1), 1)
}

type recordingRecorder struct {
	events []StreamEvent
	err    error
}

func (r *recordingRecorder) RecordEvent(_ context.Context, ev StreamEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func TestPublisher_PersistsBeforeDispatch(t *testing.T) {
	m := newTestMux(t, 100)
	rec := &recordingRecorder{}
	p := NewPublisher(m, rec, slog.Default())

	sub := m.Subscribe("c1")
	p.Publish(context.Background(), event("c1", StatusRunning, "hello"))

	require.Len(t, rec.events, 1)
	assert.Equal(t, "hello", rec.events[0].Message)
	require.Len(t, drain(sub, 1), 1)
}

func TestPublisher_RecorderFailureDoesNotBlockDelivery(t *testing.T) {
	m := newTestMux(t, 100)
	p := NewPublisher(m, &recordingRecorder{err: errors.New("db down")}, slog.Default())

	sub := m.Subscribe("c1")
	p.Publish(context.Background(), event("c1", StatusRunning, "hello"))

	require.Len(t, drain(sub, 1), 1)
}

func TestPublisher_CompleteRecordsTerminalEvent(t *testing.T) {
	m := newTestMux(t, 100)
	rec := &recordingRecorder{}
	p := NewPublisher(m, rec, slog.Default())

	p.Complete(context.Background(), "c1", "all done")

	require.Len(t, rec.events, 1)
	assert.Equal(t, StatusComplete, rec.events[0].Status)
}
