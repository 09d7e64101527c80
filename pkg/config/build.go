package config

import "time"

// BuildConfig controls the build-repair loop.
type BuildConfig struct {
	// Command is the compiler driver invocation (e.g. "mvn").
	Command string `yaml:"command"`

	// Args are passed to the command (e.g. ["-B", "clean", "verify"]).
	Args []string `yaml:"args"`

	// Timeout bounds a single build invocation.
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts bounds the repair loop; exceeding it fails the workflow.
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultBuildConfig returns the built-in build defaults.
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		Command:     "mvn",
		Args:        []string{"-B", "clean", "verify"},
		Timeout:     10 * time.Minute,
		MaxAttempts: 3,
	}
}
