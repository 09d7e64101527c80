package config

import "time"

// RetentionConfig controls cleanup of old rows.
type RetentionConfig struct {
	// ConversationRetentionDays soft-deletes conversations older than this.
	ConversationRetentionDays int `yaml:"conversation_retention_days"`

	// EventTTL hard-deletes stream event rows older than this.
	EventTTL time.Duration `yaml:"event_ttl"`

	// CleanupInterval is how often the cleanup scheduler runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		ConversationRetentionDays: 90,
		EventTTL:                  24 * time.Hour,
		CleanupInterval:           1 * time.Hour,
	}
}
