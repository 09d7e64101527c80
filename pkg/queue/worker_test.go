package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patchwright/patchwright/pkg/config"
)

func testQueueConfig() *config.QueueConfig {
	return &config.QueueConfig{
		WorkerCount:                5,
		MaxConcurrentConversations: 5,
		PollInterval:               1 * time.Second,
		PollIntervalJitter:         500 * time.Millisecond,
		ConversationTimeout:        30 * time.Minute,
		GracefulShutdownTimeout:    15 * time.Minute,
		HeartbeatInterval:          30 * time.Second,
		OrphanDetectionInterval:    5 * time.Minute,
		OrphanThreshold:            5 * time.Minute,
	}
}

func TestWorkerPollInterval(t *testing.T) {
	cfg := testQueueConfig()
	w := NewWorker("test-worker", "test-pod", nil, cfg, nil, nil)

	// Poll interval should be within [base - jitter, base + jitter]
	for i := 0; i < 100; i++ {
		d := w.pollInterval()
		assert.GreaterOrEqual(t, d, 500*time.Millisecond, "poll interval below minimum")
		assert.LessOrEqual(t, d, 1500*time.Millisecond, "poll interval above maximum")
	}
}

func TestWorkerPollIntervalNoJitter(t *testing.T) {
	cfg := testQueueConfig()
	cfg.PollIntervalJitter = 0
	w := NewWorker("test-worker", "test-pod", nil, cfg, nil, nil)

	for i := 0; i < 10; i++ {
		d := w.pollInterval()
		assert.Equal(t, 1*time.Second, d, "poll interval should equal base when jitter is 0")
	}
}

func TestWorkerHealth(t *testing.T) {
	cfg := testQueueConfig()
	w := NewWorker("worker-1", "pod-1", nil, cfg, nil, nil)

	h := w.Health()
	assert.Equal(t, "worker-1", h.ID)
	assert.Equal(t, "idle", h.Status)
	assert.Equal(t, "", h.CurrentConversationID)
	assert.Equal(t, 0, h.ConversationsProcessed)

	// Simulate working state
	w.setStatus(WorkerStatusWorking, "conv-abc")
	h = w.Health()
	assert.Equal(t, "working", h.Status)
	assert.Equal(t, "conv-abc", h.CurrentConversationID)

	// Back to idle
	w.setStatus(WorkerStatusIdle, "")
	h = w.Health()
	assert.Equal(t, "idle", h.Status)
	assert.Equal(t, "", h.CurrentConversationID)
}
