package config

import (
	"fmt"
	"sync"
	"time"
)

// LLMProviderType enumerates the closed set of provider implementations.
type LLMProviderType string

const (
	LLMProviderTypeGRPC   LLMProviderType = "grpc"
	LLMProviderTypeOpenAI LLMProviderType = "openai"
)

// LLMProviderConfig defines one LLM provider.
type LLMProviderConfig struct {
	// Provider type (required).
	Type LLMProviderType `yaml:"type"`

	// Model used for chat completions (required).
	Model string `yaml:"model"`

	// EmbedModel used for embeddings; empty means the provider cannot embed.
	EmbedModel string `yaml:"embed_model,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// BaseURL is an optional custom endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Addr is the gRPC target for grpc providers.
	Addr string `yaml:"addr,omitempty"`

	// Temperature for chat calls.
	Temperature float32 `yaml:"temperature,omitempty"`

	// MaxTokens caps chat completions; zero means the provider default.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// LLMRouting selects which configured provider serves which call class.
type LLMRouting struct {
	// Provider is the default provider name.
	Provider string `yaml:"provider"`

	// Hybrid enables routing routine calls to RoutineProvider and final
	// code-generation calls to FinalProvider.
	Hybrid          bool   `yaml:"hybrid"`
	RoutineProvider string `yaml:"routine_provider,omitempty"`
	FinalProvider   string `yaml:"final_provider,omitempty"`

	// Embedder is the provider used for embeddings (defaults to Provider).
	Embedder string `yaml:"embedder,omitempty"`

	// Per-call deadlines.
	EmbedTimeout time.Duration `yaml:"embed_timeout"`
	ChatTimeout  time.Duration `yaml:"chat_timeout"`
}

// DefaultLLMRouting returns the built-in routing defaults.
func DefaultLLMRouting() *LLMRouting {
	return &LLMRouting{
		Provider:     "local",
		EmbedTimeout: 30 * time.Second,
		ChatTimeout:  10 * time.Minute,
	}
}

// LLMConfig bundles the provider registry with routing.
type LLMConfig struct {
	Routing  *LLMRouting
	Registry *LLMProviderRegistry
}

// builtinProviders returns the providers available without any user YAML.
func builtinProviders() map[string]*LLMProviderConfig {
	return map[string]*LLMProviderConfig{
		"local": {
			Type:       LLMProviderTypeGRPC,
			Model:      "default",
			EmbedModel: "default",
			Addr:       "localhost:50051",
		},
	}
}

// LLMProviderRegistry stores provider configurations with thread-safe access.
type LLMProviderRegistry struct {
	providers map[string]*LLMProviderConfig
	mu        sync.RWMutex
}

// NewLLMProviderRegistry creates a registry from a provider map.
func NewLLMProviderRegistry(providers map[string]*LLMProviderConfig) *LLMProviderRegistry {
	copied := make(map[string]*LLMProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &LLMProviderRegistry{providers: copied}
}

// Get retrieves a provider configuration by name.
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrLLMProviderNotFound, name)
	}
	return provider, nil
}

// Has checks if a provider exists in the registry.
func (r *LLMProviderRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.providers[name]
	return exists
}

// Names returns the registered provider names.
func (r *LLMProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for k := range r.providers {
		names = append(names, k)
	}
	return names
}

// Len returns the number of registered providers.
func (r *LLMProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
