// Package tokenizer counts tokens for context-window budgeting.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in a string.
type Counter interface {
	Count(text string) int
}

// Estimator approximates token counts from word counts (~4/3 tokens per
// English word). Cheap and dependency-free; used when no BPE encoding is
// available.
type Estimator struct{}

func (Estimator) Count(text string) int {
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}

// Tiktoken counts tokens exactly with a BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (e.g. "cl100k_base").
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// ForModel returns an exact counter for the model when its encoding can be
// loaded, falling back to the estimator otherwise. Encoding data is fetched
// on first use, so offline deployments get the estimator.
func ForModel(model string) Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return Estimator{}
	}
	return &Tiktoken{enc: enc}
}
