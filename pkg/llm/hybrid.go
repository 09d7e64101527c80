package llm

import "context"

// HybridProvider routes chat calls to a routine or final provider based on
// the request tier, and delegates embeddings to a dedicated embedder.
// Requests with no tier use the routine provider.
type HybridProvider struct {
	routine  Provider
	final    Provider
	embedder Provider
}

// NewHybridProvider builds the router. The embedder may be the same instance
// as either chat provider.
func NewHybridProvider(routine, final, embedder Provider) *HybridProvider {
	return &HybridProvider{
		routine:  routine,
		final:    final,
		embedder: embedder,
	}
}

func (p *HybridProvider) Name() string {
	return "hybrid(" + p.routine.Name() + "," + p.final.Name() + ")"
}

func (p *HybridProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Tier == TierFinal {
		return p.final.Chat(ctx, req)
	}
	return p.routine.Chat(ctx, req)
}

func (p *HybridProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return p.embedder.Embed(ctx, inputs)
}

// Close closes each distinct underlying provider once.
func (p *HybridProvider) Close() error {
	closed := map[Provider]bool{}
	var firstErr error
	for _, prov := range []Provider{p.routine, p.final, p.embedder} {
		if prov == nil || closed[prov] {
			continue
		}
		closed[prov] = true
		if err := prov.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
