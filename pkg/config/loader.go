package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// serviceYAML represents the complete patchwright.yaml file structure.
type serviceYAML struct {
	Queue     *QueueConfig     `yaml:"queue"`
	Index     *IndexConfig     `yaml:"index"`
	Retrieval *RetrievalConfig `yaml:"retrieval"`
	Build     *BuildConfig     `yaml:"build"`
	Stream    *StreamConfig    `yaml:"stream"`
	Workspace *WorkspaceConfig `yaml:"workspace"`
	Hosting   *HostingConfig   `yaml:"hosting"`
	Retention *RetentionConfig `yaml:"retention"`
	LLM       *LLMRouting      `yaml:"llm"`
}

// providersYAML represents the llm-providers.yaml file structure.
type providersYAML struct {
	LLMProviders map[string]*LLMProviderConfig `yaml:"llm_providers"`
}

// load is the internal loader.
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	var svc serviceYAML
	if err := loader.loadYAML("patchwright.yaml", &svc); err != nil {
		return nil, NewLoadError("patchwright.yaml", err)
	}

	providers := providersYAML{LLMProviders: make(map[string]*LLMProviderConfig)}
	if err := loader.loadYAML("llm-providers.yaml", &providers); err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	cfg := &Config{
		configDir: configDir,
		Queue:     DefaultQueueConfig(),
		Index:     DefaultIndexConfig(),
		Retrieval: DefaultRetrievalConfig(),
		Build:     DefaultBuildConfig(),
		Stream:    DefaultStreamConfig(),
		Workspace: DefaultWorkspaceConfig(),
		Hosting:   DefaultHostingConfig(),
		Retention: DefaultRetentionConfig(),
	}

	// Merge user YAML onto built-in defaults (non-zero values override).
	sections := []struct {
		dst, src interface{}
		name     string
	}{
		{cfg.Queue, svc.Queue, "queue"},
		{cfg.Index, svc.Index, "index"},
		{cfg.Retrieval, svc.Retrieval, "retrieval"},
		{cfg.Build, svc.Build, "build"},
		{cfg.Stream, svc.Stream, "stream"},
		{cfg.Workspace, svc.Workspace, "workspace"},
		{cfg.Hosting, svc.Hosting, "hosting"},
		{cfg.Retention, svc.Retention, "retention"},
	}
	for _, s := range sections {
		if isNilPtr(s.src) {
			continue
		}
		if err := mergo.Merge(s.dst, s.src, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge %s config: %w", s.name, err)
		}
	}

	routing := DefaultLLMRouting()
	if svc.LLM != nil {
		if err := mergo.Merge(routing, svc.LLM, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge llm config: %w", err)
		}
	}

	merged := mergeProviders(builtinProviders(), providers.LLMProviders)
	cfg.LLM = &LLMConfig{
		Routing:  routing,
		Registry: NewLLMProviderRegistry(merged),
	}

	return cfg, nil
}

// mergeProviders overlays user-defined providers on the built-in set.
func mergeProviders(builtin, user map[string]*LLMProviderConfig) map[string]*LLMProviderConfig {
	out := make(map[string]*LLMProviderConfig, len(builtin)+len(user))
	for k, v := range builtin {
		out[k] = v
	}
	for k, v := range user {
		out[k] = v
	}
	return out
}

func isNilPtr(v interface{}) bool {
	switch t := v.(type) {
	case *QueueConfig:
		return t == nil
	case *IndexConfig:
		return t == nil
	case *RetrievalConfig:
		return t == nil
	case *BuildConfig:
		return t == nil
	case *StreamConfig:
		return t == nil
	case *WorkspaceConfig:
		return t == nil
	case *HostingConfig:
		return t == nil
	case *RetentionConfig:
		return t == nil
	default:
		return v == nil
	}
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand environment variables using {{.VAR}} template syntax.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}
