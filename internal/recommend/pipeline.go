// Package recommend implements the retrieval-augmented recommendation
// pipeline: retrieve nearest products, format them into a bounded context
// block, fill the prompt template, generate, and project the result.
package recommend

import (
	"context"
	"fmt"

	"github.com/ikarus-labs/recommender/internal/config"
	"github.com/ikarus-labs/recommender/internal/llm"
	"github.com/ikarus-labs/recommender/internal/prompt"
	"github.com/ikarus-labs/recommender/internal/vectorstore"
	"github.com/ikarus-labs/recommender/pkg/tokenizer"
)

// furnitureTemplate reproduces the deployed assistant prompt. User text and
// retrieved descriptions are interpolated verbatim (prompt injection is an
// accepted risk at this boundary).
const furnitureTemplate = `You are a friendly and helpful furniture assistant. Based on the following products, provide a helpful summary for the user.

Products Found:
{{context}}

User's Request: "{{question}}"

Summary:`

// Pipeline runs one request through retrieve -> format -> render -> generate.
// It holds no per-request state; a single Pipeline serves concurrent requests.
type Pipeline interface {
	Recommend(ctx context.Context, query string) (*Recommendation, error)
}

// ProductSummary is the public projection of a retrieved product. It is an
// allow-list: descriptions and similarity scores are never echoed back.
type ProductSummary struct {
	Title        string `json:"title"`
	Brand        string `json:"brand"`
	Price        string `json:"price"`
	PrimaryImage string `json:"primary_image"`
	UniqID       string `json:"uniq_id"`
}

// Recommendation is the caller-facing result of one pipeline run.
type Recommendation struct {
	GeneratedDescription string           `json:"generated_description"`
	RetrievedProducts    []ProductSummary `json:"retrieved_products"`
}

type pipeline struct {
	retriever *Retriever
	formatter *Formatter
	template  *prompt.Template
	generator *Generator
}

// NewPipeline wires the pipeline from its collaborators. The prompt template
// is parsed here so a malformed template fails the process at startup, not
// on the first request.
func NewPipeline(
	index vectorstore.ProductIndex,
	embedder Embedder,
	gw llm.Gateway,
	llmCfg config.LLMConfig,
	retCfg config.RetrievalConfig,
	counter tokenizer.Counter,
) (Pipeline, error) {
	tmpl, err := prompt.Parse(furnitureTemplate, "context", "question")
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	gen, err := NewGenerator(gw, llmCfg.Model, llmCfg.Temperature, llmCfg.MaxTokens, llmCfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("configure generator: %w", err)
	}

	return &pipeline{
		retriever: NewRetriever(index, embedder, retCfg.TopK, retCfg.Timeout),
		formatter: NewFormatter(counter, retCfg.ContextBudget),
		template:  tmpl,
		generator: gen,
	}, nil
}

func (p *pipeline) Recommend(ctx context.Context, query string) (*Recommendation, error) {
	matches, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	products := make([]vectorstore.Product, len(matches))
	for i, m := range matches {
		products[i] = m.Product
	}

	contextBlock := p.formatter.Format(products)

	rendered, err := p.template.Render(map[string]string{
		"context":  contextBlock,
		"question": query,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	generated, err := p.generator.Generate(ctx, rendered)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	// Always a non-nil slice so an empty retrieval serializes as [].
	summaries := make([]ProductSummary, len(products))
	for i, prod := range products {
		summaries[i] = ProductSummary{
			Title:        prod.Title,
			Brand:        prod.Brand,
			Price:        prod.Price,
			PrimaryImage: prod.PrimaryImage,
			UniqID:       prod.UniqID,
		}
	}

	return &Recommendation{
		GeneratedDescription: generated,
		RetrievedProducts:    summaries,
	}, nil
}
