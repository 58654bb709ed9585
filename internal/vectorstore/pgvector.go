package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex serves nearest-neighbor product search from a Postgres
// table with a pgvector embedding column. The embedding column holds the
// vector of each product's description.
type PgVectorIndex struct {
	db *pgxpool.Pool
}

func NewPgVectorIndex(db *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (s *PgVectorIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT uniq_id, COALESCE(title, ''), COALESCE(brand, ''), COALESCE(price, ''),
		        COALESCE(description, ''), COALESCE(primary_image, ''), COALESCE(material, ''),
		        COALESCE(categories, ''), 1 - (embedding <=> $1) AS score
		 FROM products
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		embedding, k,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(
			&m.Product.UniqID, &m.Product.Title, &m.Product.Brand, &m.Product.Price,
			&m.Product.Description, &m.Product.PrimaryImage, &m.Product.Material,
			&m.Product.Categories, &m.Score,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}
	return matches, nil
}

func (s *PgVectorIndex) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}
	return nil
}
