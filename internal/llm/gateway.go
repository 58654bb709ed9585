package llm

import (
	"context"
	"fmt"

	"github.com/ikarus-labs/recommender/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewGateway(cfg config.LLMConfig) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.Provider,
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := g.resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	return p.ChatCompletion(ctx, req)
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	p, err := g.resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	return p.GenerateEmbedding(ctx, req)
}

func (g *gateway) resolve(name string) (Provider, error) {
	if name == "" {
		name = g.defaultProvider
	}
	return g.Provider(name)
}
