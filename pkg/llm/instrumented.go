package llm

import (
	"context"
	"log/slog"
	"time"
)

// Interaction is one completed model call, recorded for audit.
type Interaction struct {
	ConversationID string
	Provider       string
	Op             string
	Agent          string
	LatencyMS      int64
	Outcome        string
	InputTokens    int
	OutputTokens   int
	TotalTokens    int
	ErrorMessage   string
}

// InteractionRecorder persists completed interactions. Recording is
// best-effort; implementations must not fail the call.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, interaction Interaction)
}

// InstrumentedProvider wraps a Provider with structured logging, per-call
// deadlines, transient-error retries, and audit recording.
type InstrumentedProvider struct {
	next         Provider
	recorder     InteractionRecorder
	logger       *slog.Logger
	chatTimeout  time.Duration
	embedTimeout time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewInstrumentedProvider wraps next. recorder may be nil.
func NewInstrumentedProvider(next Provider, recorder InteractionRecorder, logger *slog.Logger, chatTimeout, embedTimeout time.Duration) *InstrumentedProvider {
	return &InstrumentedProvider{
		next:         next,
		recorder:     recorder,
		logger:       logger.With("service", "llm"),
		chatTimeout:  chatTimeout,
		embedTimeout: embedTimeout,
		sleep:        time.Sleep,
	}
}

func (p *InstrumentedProvider) Name() string { return p.next.Name() }

// withRetry runs call, retrying transient failures on the backoff schedule.
// The per-call deadline bounds all attempts together; once ctx is done no
// further attempt is made.
func (p *InstrumentedProvider) withRetry(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call()
		if err == nil || !IsTransient(err) || attempt >= len(retryBackoff) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		p.logger.WarnContext(ctx, "transient llm error, retrying",
			"op", op,
			"provider", p.next.Name(),
			"attempt", attempt+1,
			"backoff", retryBackoff[attempt],
			"error", err)
		p.sleep(retryBackoff[attempt])
	}
}

func (p *InstrumentedProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.chatTimeout)
		defer cancel()
	}

	start := time.Now()
	var resp *ChatResponse
	err := p.withRetry(ctx, "chat", func() error {
		var callErr error
		resp, callErr = p.next.Chat(ctx, req)
		return callErr
	})
	latency := time.Since(start)

	interaction := Interaction{
		ConversationID: req.ConversationID,
		Provider:       p.next.Name(),
		Op:             "chat",
		Agent:          req.Agent,
		LatencyMS:      latency.Milliseconds(),
		Outcome:        "success",
	}
	if err != nil {
		interaction.Outcome = "error"
		interaction.ErrorMessage = err.Error()
		p.logger.ErrorContext(ctx, "chat call failed",
			"op", "chat",
			"provider", p.next.Name(),
			"agent", req.Agent,
			"conversation_id", req.ConversationID,
			"latency_ms", latency.Milliseconds(),
			"error", err)
	} else {
		interaction.InputTokens = resp.Usage.InputTokens
		interaction.OutputTokens = resp.Usage.OutputTokens
		interaction.TotalTokens = resp.Usage.TotalTokens
		p.logger.InfoContext(ctx, "chat call completed",
			"op", "chat",
			"provider", p.next.Name(),
			"agent", req.Agent,
			"conversation_id", req.ConversationID,
			"latency_ms", latency.Milliseconds(),
			"total_tokens", resp.Usage.TotalTokens)
	}

	if p.recorder != nil {
		p.recorder.RecordInteraction(context.WithoutCancel(ctx), interaction)
	}
	return resp, err
}

func (p *InstrumentedProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if p.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.embedTimeout)
		defer cancel()
	}

	start := time.Now()
	var vectors [][]float32
	err := p.withRetry(ctx, "embed", func() error {
		var callErr error
		vectors, callErr = p.next.Embed(ctx, inputs)
		return callErr
	})
	latency := time.Since(start)

	interaction := Interaction{
		Provider:  p.next.Name(),
		Op:        "embed",
		LatencyMS: latency.Milliseconds(),
		Outcome:   "success",
	}
	if err != nil {
		interaction.Outcome = "error"
		interaction.ErrorMessage = err.Error()
		p.logger.ErrorContext(ctx, "embed call failed",
			"op", "embed",
			"provider", p.next.Name(),
			"inputs", len(inputs),
			"latency_ms", latency.Milliseconds(),
			"error", err)
	} else {
		p.logger.DebugContext(ctx, "embed call completed",
			"op", "embed",
			"provider", p.next.Name(),
			"inputs", len(inputs),
			"latency_ms", latency.Milliseconds())
	}

	if p.recorder != nil {
		p.recorder.RecordInteraction(context.WithoutCancel(ctx), interaction)
	}
	return vectors, err
}

func (p *InstrumentedProvider) Close() error {
	return p.next.Close()
}
