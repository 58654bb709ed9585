package recommend

import (
	"fmt"
	"strings"

	"github.com/ikarus-labs/recommender/internal/vectorstore"
	"github.com/ikarus-labs/recommender/pkg/tokenizer"
)

// NoMatchesContext is the context block used when retrieval returns nothing.
// The generative model still runs; it just gets told there were no matches.
const NoMatchesContext = "Unfortunately, I couldn't find any products that match your description."

const fieldPlaceholder = "N/A"

// Formatter renders retrieved products into the context block of the prompt.
// It is a pure function of its input: no I/O, no mutation of the records.
type Formatter struct {
	counter tokenizer.Counter
	budget  int // max tokens; <= 0 means unbounded
}

func NewFormatter(counter tokenizer.Counter, budget int) *Formatter {
	if counter == nil {
		counter = tokenizer.Estimator{}
	}
	return &Formatter{counter: counter, budget: budget}
}

// Format produces one line per product, in the given (ranked) order. Missing
// fields render as an explicit placeholder rather than being dropped. When
// the token budget would be exceeded the trailing products are cut; a record
// line is never split. The first product is always included so the context
// is never empty.
func (f *Formatter) Format(products []vectorstore.Product) string {
	if len(products) == 0 {
		return NoMatchesContext
	}

	var sb strings.Builder
	used := 0
	for i, p := range products {
		line := formatProduct(p)
		cost := f.counter.Count(line)
		if f.budget > 0 && i > 0 && used+cost > f.budget {
			break
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		used += cost
	}
	return sb.String()
}

func formatProduct(p vectorstore.Product) string {
	title := p.Title
	if title == "" {
		title = fieldPlaceholder
	}
	description := p.Description
	if description == "" {
		description = fieldPlaceholder
	}
	return fmt.Sprintf("- **%s**: %s", title, description)
}
