package config

import "time"

// QueueConfig contains queue and worker pool configuration.
// These values control how conversations are polled, claimed, and processed.
type QueueConfig struct {
	// WorkerCount is the number of worker goroutines per replica/pod.
	WorkerCount int `yaml:"worker_count"`

	// MaxConcurrentConversations is the global limit of concurrently running
	// conversations across ALL replicas. Enforced by a database COUNT check.
	MaxConcurrentConversations int `yaml:"max_concurrent_conversations"`

	// PollInterval is the base interval for checking pending conversations.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollIntervalJitter is the random jitter added to PollInterval.
	PollIntervalJitter time.Duration `yaml:"poll_interval_jitter"`

	// ConversationTimeout is the maximum wall time for a single workflow run.
	ConversationTimeout time.Duration `yaml:"conversation_timeout"`

	// GracefulShutdownTimeout is the max time to wait for active conversations
	// to complete during shutdown.
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	// HeartbeatInterval is how often a worker refreshes last_interaction_at.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// OrphanDetectionInterval is how often to scan for orphaned conversations.
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`

	// OrphanThreshold is how long a conversation can go without a heartbeat
	// before it is considered orphaned and re-queued.
	OrphanThreshold time.Duration `yaml:"orphan_threshold"`
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		WorkerCount:                8,
		MaxConcurrentConversations: 8,
		PollInterval:               1 * time.Second,
		PollIntervalJitter:         500 * time.Millisecond,
		ConversationTimeout:        30 * time.Minute,
		GracefulShutdownTimeout:    30 * time.Minute,
		HeartbeatInterval:          30 * time.Second,
		OrphanDetectionInterval:    5 * time.Minute,
		OrphanThreshold:            5 * time.Minute,
	}
}
