package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchwright/patchwright/pkg/config"
)

type fakeProvider struct {
	name      string
	chatCalls int
	lastReq   ChatRequest
	chatErr   error
	chatErrs  []error // consumed one per call before chatErr applies
	embedDim  int
	closed    bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	f.chatCalls++
	f.lastReq = req
	if len(f.chatErrs) > 0 {
		err := f.chatErrs[0]
		f.chatErrs = f.chatErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &ChatResponse{
		Content: "response from " + f.name,
		Usage:   Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

func (f *fakeProvider) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = make([]float32, f.embedDim)
	}
	return out, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

type captureRecorder struct {
	interactions []Interaction
}

func (c *captureRecorder) RecordInteraction(_ context.Context, i Interaction) {
	c.interactions = append(c.interactions, i)
}

func TestHybridProvider_RoutesByTier(t *testing.T) {
	routine := &fakeProvider{name: "routine"}
	final := &fakeProvider{name: "final"}
	embedder := &fakeProvider{name: "embedder", embedDim: 4}
	h := NewHybridProvider(routine, final, embedder)

	resp, err := h.Chat(context.Background(), ChatRequest{Tier: TierFinal})
	require.NoError(t, err)
	assert.Equal(t, "response from final", resp.Content)
	assert.Equal(t, 0, routine.chatCalls)

	resp, err = h.Chat(context.Background(), ChatRequest{Tier: TierRoutine})
	require.NoError(t, err)
	assert.Equal(t, "response from routine", resp.Content)

	// No tier defaults to the routine provider.
	_, err = h.Chat(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, routine.chatCalls)
	assert.Equal(t, 1, final.chatCalls)
}

func TestHybridProvider_EmbedUsesEmbedder(t *testing.T) {
	routine := &fakeProvider{name: "routine", embedDim: 2}
	embedder := &fakeProvider{name: "embedder", embedDim: 8}
	h := NewHybridProvider(routine, routine, embedder)

	vectors, err := h.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 8)
}

func TestHybridProvider_CloseClosesEachProviderOnce(t *testing.T) {
	shared := &fakeProvider{name: "shared"}
	final := &fakeProvider{name: "final"}
	h := NewHybridProvider(shared, final, shared)

	require.NoError(t, h.Close())
	assert.True(t, shared.closed)
	assert.True(t, final.closed)
}

func TestInstrumentedProvider_RecordsSuccess(t *testing.T) {
	inner := &fakeProvider{name: "inner", embedDim: 4}
	rec := &captureRecorder{}
	p := NewInstrumentedProvider(inner, rec, slog.Default(), time.Minute, time.Minute)

	_, err := p.Chat(context.Background(), ChatRequest{
		ConversationID: "conv-1",
		Agent:          "code_generator",
		Tier:           TierFinal,
	})
	require.NoError(t, err)

	require.Len(t, rec.interactions, 1)
	got := rec.interactions[0]
	assert.Equal(t, "conv-1", got.ConversationID)
	assert.Equal(t, "chat", got.Op)
	assert.Equal(t, "inner", got.Provider)
	assert.Equal(t, "success", got.Outcome)
	assert.Equal(t, 15, got.TotalTokens)
}

func TestInstrumentedProvider_RecordsFailure(t *testing.T) {
	inner := &fakeProvider{name: "inner", chatErr: errors.New("boom")}
	rec := &captureRecorder{}
	p := NewInstrumentedProvider(inner, rec, slog.Default(), time.Minute, time.Minute)

	_, err := p.Chat(context.Background(), ChatRequest{ConversationID: "conv-2"})
	require.Error(t, err)

	require.Len(t, rec.interactions, 1)
	assert.Equal(t, "error", rec.interactions[0].Outcome)
	assert.Equal(t, "boom", rec.interactions[0].ErrorMessage)
}

func TestInstrumentedProvider_RetriesTransientChatErrors(t *testing.T) {
	inner := &fakeProvider{name: "inner", chatErrs: []error{
		errors.New("status 503: upstream overloaded"),
		errors.New("status 503: upstream overloaded"),
		nil,
	}}
	rec := &captureRecorder{}
	p := NewInstrumentedProvider(inner, rec, slog.Default(), time.Minute, time.Minute)
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	resp, err := p.Chat(context.Background(), ChatRequest{ConversationID: "conv-3"})
	require.NoError(t, err)
	assert.Equal(t, "response from inner", resp.Content)

	assert.Equal(t, 3, inner.chatCalls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)

	// One audit row for the call, not one per attempt.
	require.Len(t, rec.interactions, 1)
	assert.Equal(t, "success", rec.interactions[0].Outcome)
}

func TestInstrumentedProvider_TransientErrorExhaustsRetries(t *testing.T) {
	inner := &fakeProvider{name: "inner", chatErr: errors.New("status 429: rate limited")}
	p := NewInstrumentedProvider(inner, nil, slog.Default(), time.Minute, time.Minute)
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := p.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)

	assert.Equal(t, 3, inner.chatCalls, "transient errors are retried to the schedule's end")
	assert.Len(t, slept, 2)
}

func TestInstrumentedProvider_PermanentErrorNotRetried(t *testing.T) {
	inner := &fakeProvider{name: "inner", chatErr: errors.New("status 400: model not found")}
	p := NewInstrumentedProvider(inner, nil, slog.Default(), time.Minute, time.Minute)
	p.sleep = func(time.Duration) { t.Fatal("permanent errors must not back off") }

	_, err := p.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.chatCalls)
}

func TestInstrumentedProvider_NoRetryAfterCancellation(t *testing.T) {
	inner := &fakeProvider{name: "inner", chatErr: errors.New("status 503: upstream overloaded")}
	p := NewInstrumentedProvider(inner, nil, slog.Default(), time.Minute, time.Minute)
	p.sleep = func(time.Duration) { t.Fatal("no backoff once the context is done") }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chat(ctx, ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.chatCalls)
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited by message", errors.New("status 429: rate limited"), true},
		{"server fault by message", errors.New("chat stream failed: status 502 from sidecar"), true},
		{"server fault status word", errors.New("status 503: overloaded"), true},
		{"timeout by message", errors.New("request timeout"), true},
		{"client error", errors.New("status 400: bad request"), false},
		{"empty response", ErrEmptyResponse, false},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestNewProvider_SingleProvider(t *testing.T) {
	registry := config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
		"local": {Type: config.LLMProviderTypeGRPC, Model: "default", Addr: "localhost:50051"},
	})
	cfg := &config.LLMConfig{
		Routing:  &config.LLMRouting{Provider: "local"},
		Registry: registry,
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "local", p.Name())
}

func TestNewProvider_UnknownProviderName(t *testing.T) {
	cfg := &config.LLMConfig{
		Routing:  &config.LLMRouting{Provider: "missing"},
		Registry: config.NewLLMProviderRegistry(nil),
	}

	_, err := NewProvider(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLLMProviderNotFound)
}

func TestNewProvider_UnknownProviderType(t *testing.T) {
	registry := config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
		"weird": {Type: "carrier-pigeon", Model: "x"},
	})
	cfg := &config.LLMConfig{
		Routing:  &config.LLMRouting{Provider: "weird"},
		Registry: registry,
	}

	_, err := NewProvider(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider type")
}
