package vectorstore

import (
	"context"
	"errors"
)

// ErrIndexUnavailable signals that the nearest-neighbor index could not be
// reached or could not serve the query.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Product is a single indexed product record. Records are written by the
// ingestion job and never mutated through this package.
type Product struct {
	UniqID       string `json:"uniq_id"`
	Title        string `json:"title"`
	Brand        string `json:"brand"`
	Price        string `json:"price"` // currency-formatted, e.g. "$129.99"
	Description  string `json:"description"`
	PrimaryImage string `json:"primary_image"`
	Material     string `json:"material"`
	Categories   string `json:"categories"` // string-encoded list, as ingested
}

// Match pairs a retrieved product with its similarity score.
type Match struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// ProductIndex is a read-only nearest-neighbor search over indexed products.
// Implementations must be safe for concurrent use.
type ProductIndex interface {
	// Search returns up to k products ranked by similarity to the query
	// vector, highest first.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	// Ping reports whether the index is reachable.
	Ping(ctx context.Context) error
}
