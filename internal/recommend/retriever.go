package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/ikarus-labs/recommender/internal/vectorstore"
)

// Embedder maps a single text to its embedding vector.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Retriever embeds the query text and fetches the nearest products from the
// index. An empty result is success, not failure.
type Retriever struct {
	index    vectorstore.ProductIndex
	embedder Embedder
	topK     int
	timeout  time.Duration
}

func NewRetriever(index vectorstore.ProductIndex, embedder Embedder, topK int, timeout time.Duration) *Retriever {
	return &Retriever{index: index, embedder: embedder, topK: topK, timeout: timeout}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]vectorstore.Match, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	vec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}

	matches, err := r.index.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}

	// The index promises at most k results; enforce it anyway.
	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}
	return matches, nil
}
