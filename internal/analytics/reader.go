// Package analytics serves summary statistics over the static product
// dataset. The dataset never changes for the lifetime of the process, so
// there is no caching or invalidation: every snapshot recomputes from disk.
package analytics

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrDatasetUnavailable signals that the backing dataset file is missing
// or holds no rows.
var ErrDatasetUnavailable = errors.New("analytics dataset unavailable")

// Snapshot is the derived read-only view over the dataset.
type Snapshot struct {
	PriceDistribution []float64      `json:"price_distribution"`
	TopCategories     map[string]int `json:"top_categories"`
}

// Reader computes snapshots from a CSV product dataset.
type Reader struct {
	path string
	topN int
}

func NewReader(path string, topN int) *Reader {
	if topN <= 0 {
		topN = 10
	}
	return &Reader{path: path, topN: topN}
}

// Snapshot loads the dataset and aggregates prices and category counts.
// Unparseable prices are dropped, never an error for the whole request.
func (r *Reader) Snapshot() (*Snapshot, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrDatasetUnavailable, err)
	}
	priceCol, categoryCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "price":
			priceCol = i
		case "categories", "category":
			categoryCol = i
		}
	}

	prices := []float64{}
	counts := make(map[string]int)
	var firstSeen []string
	rows := 0

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		rows++

		if priceCol >= 0 && priceCol < len(record) {
			if p, ok := parsePrice(record[priceCol]); ok {
				prices = append(prices, p)
			}
		}

		if categoryCol >= 0 && categoryCol < len(record) {
			for _, cat := range parseCategories(record[categoryCol]) {
				if _, seen := counts[cat]; !seen {
					firstSeen = append(firstSeen, cat)
				}
				counts[cat]++
			}
		}
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrDatasetUnavailable)
	}

	return &Snapshot{
		PriceDistribution: prices,
		TopCategories:     r.topCategories(counts, firstSeen),
	}, nil
}

// topCategories keeps the topN most frequent categories; ties break by
// first appearance in the dataset.
func (r *Reader) topCategories(counts map[string]int, firstSeen []string) map[string]int {
	order := make(map[string]int, len(firstSeen))
	for i, cat := range firstSeen {
		order[cat] = i
	}

	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return order[ranked[i]] < order[ranked[j]]
	})

	if len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}

	top := make(map[string]int, len(ranked))
	for _, cat := range ranked {
		top[cat] = counts[cat]
	}
	return top
}

// parsePrice strips currency formatting ("$1,299.99" -> 1299.99).
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// parseCategories explodes a category cell into individual categories. Cells
// come as string-encoded lists with single quotes (['Sofas', 'Living Room']),
// occasionally as bare comma-separated strings.
func parseCategories(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var cats []string
		if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &cats); err != nil {
			return nil
		}
		return trimAll(cats)
	}

	return trimAll(strings.Split(s, ","))
}

func trimAll(in []string) []string {
	var out []string
	for _, c := range in {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}
