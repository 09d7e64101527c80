package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/patchwright/patchwright/pkg/config"
	llmv1 "github.com/patchwright/patchwright/proto"
)

// GRPCProvider implements Provider by calling the model-serving sidecar.
type GRPCProvider struct {
	name   string
	cfg    config.LLMProviderConfig
	conn   *grpc.ClientConn
	client llmv1.LLMServiceClient
}

// NewGRPCProvider connects to the sidecar at cfg.Addr.
func NewGRPCProvider(name string, cfg config.LLMProviderConfig) (*GRPCProvider, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LLM service at %s: %w", cfg.Addr, err)
	}
	return &GRPCProvider{
		name:   name,
		cfg:    cfg,
		conn:   conn,
		client: llmv1.NewLLMServiceClient(conn),
	}, nil
}

func (p *GRPCProvider) Name() string { return p.name }

// Chat streams chunks from the sidecar and assembles them into one response.
func (p *GRPCProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	stream, err := p.client.Chat(ctx, p.toProtoRequest(req))
	if err != nil {
		return nil, fmt.Errorf("gRPC Chat call failed: %w", err)
	}

	var content, thinking strings.Builder
	var usage Usage
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gRPC Chat stream failed: %w", err)
		}
		switch c := resp.Content.(type) {
		case *llmv1.ChatResponse_Text:
			content.WriteString(c.Text.Content)
		case *llmv1.ChatResponse_Thinking:
			thinking.WriteString(c.Thinking.Content)
		case *llmv1.ChatResponse_Usage:
			usage = Usage{
				InputTokens:  int(c.Usage.InputTokens),
				OutputTokens: int(c.Usage.OutputTokens),
				TotalTokens:  int(c.Usage.TotalTokens),
			}
		case *llmv1.ChatResponse_Error:
			return nil, fmt.Errorf("llm service error %s: %s", c.Error.Code, c.Error.Message)
		}
	}

	if content.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	return &ChatResponse{
		Content:  content.String(),
		Thinking: thinking.String(),
		Usage:    usage,
	}, nil
}

// Embed requests one embedding per input via a unary call.
func (p *GRPCProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := p.client.Embed(ctx, &llmv1.EmbedRequest{
		Model:  p.cfg.EmbedModel,
		Inputs: inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("gRPC Embed call failed: %w", err)
	}
	if len(resp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("llm service returned %d embeddings for %d inputs", len(resp.Embeddings), len(inputs))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// Close releases the gRPC connection.
func (p *GRPCProvider) Close() error {
	return p.conn.Close()
}

func (p *GRPCProvider) toProtoRequest(req ChatRequest) *llmv1.ChatRequest {
	pr := &llmv1.ChatRequest{
		ConversationId: req.ConversationID,
		Agent:          req.Agent,
		ModelConfig: &llmv1.ModelConfig{
			Model:       p.cfg.Model,
			Temperature: float64(p.cfg.Temperature),
			MaxTokens:   int32(p.cfg.MaxTokens),
			ApiKeyEnv:   p.cfg.APIKeyEnv,
			BaseUrl:     p.cfg.BaseURL,
		},
	}
	for _, m := range req.Messages {
		pr.Messages = append(pr.Messages, &llmv1.ChatMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return pr
}
