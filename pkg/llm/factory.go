package llm

import (
	"fmt"

	"github.com/patchwright/patchwright/pkg/config"
)

// NewProvider builds the provider graph described by cfg. With hybrid routing
// enabled it returns a HybridProvider; otherwise the single default provider.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	built := map[string]Provider{}

	get := func(name string) (Provider, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		pc, err := cfg.Registry.Get(name)
		if err != nil {
			return nil, err
		}
		p, err := buildOne(name, *pc)
		if err != nil {
			return nil, err
		}
		built[name] = p
		return p, nil
	}

	routing := cfg.Routing
	if !routing.Hybrid {
		return get(routing.Provider)
	}

	routine, err := get(routing.RoutineProvider)
	if err != nil {
		return nil, fmt.Errorf("routine provider: %w", err)
	}
	final, err := get(routing.FinalProvider)
	if err != nil {
		return nil, fmt.Errorf("final provider: %w", err)
	}

	embedderName := routing.Embedder
	if embedderName == "" {
		embedderName = routing.RoutineProvider
	}
	embedder, err := get(embedderName)
	if err != nil {
		return nil, fmt.Errorf("embedder provider: %w", err)
	}

	return NewHybridProvider(routine, final, embedder), nil
}

func buildOne(name string, pc config.LLMProviderConfig) (Provider, error) {
	switch pc.Type {
	case config.LLMProviderTypeGRPC:
		return NewGRPCProvider(name, pc)
	case config.LLMProviderTypeOpenAI:
		return NewOpenAIProvider(name, pc)
	default:
		return nil, fmt.Errorf("unknown llm provider type %q for provider %q", pc.Type, name)
	}
}
