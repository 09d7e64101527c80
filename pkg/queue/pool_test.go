package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRegisterAndCancelConversation(t *testing.T) {
	pool := &WorkerPool{
		active: make(map[string]context.CancelFunc),
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.RegisterConversation("conv-1", cancel)

	// Cancel should succeed for a registered conversation
	assert.True(t, pool.CancelConversation("conv-1"))
	assert.Error(t, ctx.Err()) // Context should be cancelled

	// Cancel should return false for an unknown conversation
	assert.False(t, pool.CancelConversation("unknown"))
}

func TestPoolUnregisterConversation(t *testing.T) {
	pool := &WorkerPool{
		active: make(map[string]context.CancelFunc),
	}

	_, cancel := context.WithCancel(context.Background())
	pool.RegisterConversation("conv-1", cancel)

	// Should find it
	assert.True(t, pool.CancelConversation("conv-1"))

	// Unregister
	pool.UnregisterConversation("conv-1")

	// Should not find it anymore
	assert.False(t, pool.CancelConversation("conv-1"))
}

func TestPoolGetActiveConversationIDs(t *testing.T) {
	pool := &WorkerPool{
		active: make(map[string]context.CancelFunc),
	}

	// Empty initially
	ids := pool.getActiveConversationIDs()
	assert.Empty(t, ids)

	_, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	_, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	pool.RegisterConversation("conv-a", cancel1)
	pool.RegisterConversation("conv-b", cancel2)

	ids = pool.getActiveConversationIDs()
	require.Len(t, ids, 2)
	assert.Contains(t, ids, "conv-a")
	assert.Contains(t, ids, "conv-b")
}

func TestPoolStopTwiceDoesNotPanic(t *testing.T) {
	pool := &WorkerPool{
		stopCh: make(chan struct{}),
		active: make(map[string]context.CancelFunc),
	}

	// First call should close the channel without panic.
	pool.Stop()

	// Second call must not panic (sync.Once guards the close).
	assert.NotPanics(t, func() { pool.Stop() })
}
