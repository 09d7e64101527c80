package config

import "time"

// StreamConfig controls the SSE stream multiplexer.
type StreamConfig struct {
	// BufferCapacity bounds the per-conversation replay buffer for events
	// published before a subscriber attaches.
	BufferCapacity int `yaml:"buffer_capacity"`

	// IdleTimeout closes a stream after this long without traffic.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultStreamConfig returns the built-in stream defaults.
func DefaultStreamConfig() *StreamConfig {
	return &StreamConfig{
		BufferCapacity: 100,
		IdleTimeout:    15 * time.Minute,
	}
}
