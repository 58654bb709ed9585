package recommend

import "errors"

var (
	// ErrNotInitialized signals that the pipeline never came up at startup.
	ErrNotInitialized = errors.New("recommendation pipeline not initialized")
	// ErrRetrievalUnavailable signals that the product index is unreachable.
	ErrRetrievalUnavailable = errors.New("product index unavailable")
	// ErrEmbeddingUnavailable signals that the embedding backend is unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
	// ErrGenerationUnavailable signals that the generation backend is unreachable.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	// ErrGenerationTimeout signals that generation exceeded its wall-clock budget.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGeneration signals any other generation backend failure.
	ErrGeneration = errors.New("generation failed")
)

// Unavailable reports whether err is a pipeline-level failure: the service
// itself is degraded, as opposed to a single request failing.
func Unavailable(err error) bool {
	return errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrRetrievalUnavailable) ||
		errors.Is(err, ErrEmbeddingUnavailable)
}
