// Package config loads and validates the service configuration from YAML
// files with environment expansion. Configuration is immutable after
// Initialize; components receive the values they need at construction.
package config

import (
	"context"
	"fmt"
	"log/slog"
)

// Config is the root configuration record.
type Config struct {
	configDir string

	Queue     *QueueConfig
	Index     *IndexConfig
	Retrieval *RetrievalConfig
	Build     *BuildConfig
	Stream    *StreamConfig
	Workspace *WorkspaceConfig
	Hosting   *HostingConfig
	Retention *RetentionConfig

	// LLM holds the provider registry plus routing selection.
	LLM *LLMConfig
}

// ConfigDir returns the directory configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Merge user-defined values onto built-in defaults
//  4. Validate all configuration
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"llm_providers", cfg.LLM.Registry.Len(),
		"workers", cfg.Queue.WorkerCount,
		"embedding_dim", cfg.Index.EmbeddingDim)

	return cfg, nil
}
