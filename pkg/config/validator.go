package config

import "fmt"

// validate performs cross-section validation on loaded configuration.
func validate(cfg *Config) error {
	if cfg.Queue.WorkerCount <= 0 {
		return NewValidationError("queue", "worker_count", "", ErrInvalidValue)
	}
	if cfg.Queue.MaxConcurrentConversations <= 0 {
		return NewValidationError("queue", "max_concurrent_conversations", "", ErrInvalidValue)
	}

	switch cfg.Index.EmbeddingDim {
	case 768, 1024, 1536:
	default:
		return NewValidationError("index", "embedding_dim", "",
			fmt.Errorf("%w: must be 768, 1024, or 1536", ErrInvalidValue))
	}
	if cfg.Index.UpsertBatchSize <= 0 || cfg.Index.UpsertBatchSize > 100 {
		return NewValidationError("index", "upsert_batch_size", "",
			fmt.Errorf("%w: must be in (0, 100]", ErrInvalidValue))
	}

	if cfg.Retrieval.BundleCap <= 0 {
		return NewValidationError("retrieval", "bundle_cap", "", ErrInvalidValue)
	}

	if cfg.Build.Command == "" {
		return NewValidationError("build", "command", "", ErrMissingRequiredField)
	}
	if cfg.Build.MaxAttempts <= 0 {
		return NewValidationError("build", "max_attempts", "", ErrInvalidValue)
	}

	if cfg.Stream.BufferCapacity <= 0 {
		return NewValidationError("stream", "buffer_capacity", "", ErrInvalidValue)
	}

	if err := validateLLM(cfg.LLM); err != nil {
		return err
	}

	return nil
}

func validateLLM(llm *LLMConfig) error {
	r := llm.Routing
	if !llm.Registry.Has(r.Provider) {
		return NewValidationError("llm", r.Provider, "provider", ErrLLMProviderNotFound)
	}
	if r.Hybrid {
		if !llm.Registry.Has(r.RoutineProvider) {
			return NewValidationError("llm", r.RoutineProvider, "routine_provider", ErrLLMProviderNotFound)
		}
		if !llm.Registry.Has(r.FinalProvider) {
			return NewValidationError("llm", r.FinalProvider, "final_provider", ErrLLMProviderNotFound)
		}
	}
	if r.Embedder != "" && !llm.Registry.Has(r.Embedder) {
		return NewValidationError("llm", r.Embedder, "embedder", ErrLLMProviderNotFound)
	}

	for _, name := range llm.Registry.Names() {
		p, _ := llm.Registry.Get(name)
		if p.Type == "" {
			return NewValidationError("llm_provider", name, "type", ErrMissingRequiredField)
		}
		switch p.Type {
		case LLMProviderTypeGRPC:
			if p.Addr == "" {
				return NewValidationError("llm_provider", name, "addr", ErrMissingRequiredField)
			}
		case LLMProviderTypeOpenAI:
			if p.Model == "" {
				return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
			}
		default:
			return NewValidationError("llm_provider", name, "type",
				fmt.Errorf("%w: unknown provider type %q", ErrInvalidValue, p.Type))
		}
	}

	return nil
}
