package config

// IndexConfig controls the knowledge indexer.
type IndexConfig struct {
	// EmbeddingDim is the pinned vector dimensionality for this deployment.
	// Upserts with any other dimension are rejected.
	EmbeddingDim int `yaml:"embedding_dim"`

	// SourceRoot is the language-appropriate source root relative to the
	// repository root (e.g. src/main/java).
	SourceRoot string `yaml:"source_root"`

	// TestRoots are path prefixes excluded from indexing.
	TestRoots []string `yaml:"test_roots"`

	// SourceSuffix is the source-file suffix to index.
	SourceSuffix string `yaml:"source_suffix"`

	// UpsertBatchSize caps the number of vectors per upsert call.
	UpsertBatchSize int `yaml:"upsert_batch_size"`
}

// DefaultIndexConfig returns the built-in indexer defaults.
func DefaultIndexConfig() *IndexConfig {
	return &IndexConfig{
		EmbeddingDim:    1536,
		SourceRoot:      "src/main/java",
		TestRoots:       []string{"src/test"},
		SourceSuffix:    ".java",
		UpsertBatchSize: 100,
	}
}

// RetrievalConfig controls the retrieval engine.
type RetrievalConfig struct {
	// DefaultTopK is the per-strategy result cap when the plan omits one.
	DefaultTopK int `yaml:"default_top_k"`

	// BundleCap is the global context bundle size cap.
	BundleCap int `yaml:"bundle_cap"`
}

// DefaultRetrievalConfig returns the built-in retrieval defaults.
func DefaultRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		DefaultTopK: 20,
		BundleCap:   50,
	}
}
