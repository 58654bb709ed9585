package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikarus-labs/recommender/internal/llm"
)

// Generator performs a single best-effort generation call with its own
// wall-clock budget. No retries happen here or anywhere below.
type Generator struct {
	gateway     llm.Gateway
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

func NewGenerator(gw llm.Gateway, model string, temperature float64, maxTokens int, timeout time.Duration) (*Generator, error) {
	if temperature < 0 || temperature > 1 {
		return nil, fmt.Errorf("temperature must be in [0,1], got %g", temperature)
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be > 0, got %d", maxTokens)
	}
	return &Generator{
		gateway:     gw,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

// Generate sends the rendered prompt and returns the completion text. An
// empty completion is a valid outcome and returned as-is.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model:       g.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", classifyGenerationErr(err)
	}

	return resp.Content, nil
}

func classifyGenerationErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
	case errors.Is(err, llm.ErrBackendUnreachable):
		return fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}
}
