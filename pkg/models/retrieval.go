package models

// StrategyType enumerates the retrieval strategy kinds a plan may use.
type StrategyType string

const (
	StrategySemantic StrategyType = "semantic"
	StrategyMetadata StrategyType = "metadata"
	StrategyGraph    StrategyType = "graph"
	StrategyFullText StrategyType = "fullText"
	StrategyFilePath StrategyType = "filePath"
)

// RetrievalStrategy is one step of a retrieval plan. The parameter fields are
// typed per strategy type; unused fields stay empty.
type RetrievalStrategy struct {
	Type StrategyType `json:"type"`

	// semantic / fullText
	Query string `json:"query,omitempty"`

	// metadata
	Annotations       []string `json:"annotations,omitempty"`
	ClassNameContains string   `json:"class_name_contains,omitempty"`
	PackageEquals     string   `json:"package_equals,omitempty"`

	// graph
	GraphQuery  string            `json:"graph_query,omitempty"`
	GraphParams map[string]string `json:"graph_params,omitempty"`
	// RelationshipKind is the only value ever substituted into query text;
	// it must be drawn from the closed relationship enum.
	RelationshipKind string `json:"relationship_kind,omitempty"`

	// filePath
	PathPattern string `json:"path_pattern,omitempty"`

	TargetRepos []string `json:"target_repos,omitempty"`
	Priority    int      `json:"priority"`
	MaxResults  int      `json:"max_results,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// RetrievalPlan is the LLM-emitted ordered list of strategies.
type RetrievalPlan struct {
	Strategies []RetrievalStrategy `json:"strategies"`
}

// Clone returns a deep copy of the plan.
func (p *RetrievalPlan) Clone() *RetrievalPlan {
	out := &RetrievalPlan{Strategies: make([]RetrievalStrategy, len(p.Strategies))}
	copy(out.Strategies, p.Strategies)
	for i, st := range p.Strategies {
		if st.Annotations != nil {
			out.Strategies[i].Annotations = append([]string(nil), st.Annotations...)
		}
		if st.TargetRepos != nil {
			out.Strategies[i].TargetRepos = append([]string(nil), st.TargetRepos...)
		}
		if st.GraphParams != nil {
			gp := make(map[string]string, len(st.GraphParams))
			for k, v := range st.GraphParams {
				gp[k] = v
			}
			out.Strategies[i].GraphParams = gp
		}
	}
	return out
}

// CodeContext is one retrieved code chunk in a context bundle.
type CodeContext struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	ChunkType  string  `json:"chunk_type"`
	ClassName  string  `json:"class_name,omitempty"`
	MethodName string  `json:"method_name,omitempty"`
	FilePath   string  `json:"file_path"`
	Content    string  `json:"content"`
}
