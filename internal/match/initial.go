package match

import (
	"fmt"
	"sort"

	"github.com/matsen/vocabmap/internal/concept"
)

// GenerateInitialMatches creates one seed match per source row: the target
// whose similarity is the row maximum, ties broken by lowest column index.
// The result is sorted descending by source concept count (most frequent
// concepts reviewed first) with a stable sort, so equal counts keep their
// original row order. This ordering is permanent once the session is saved;
// paging during review operates on array positions within it.
func GenerateInitialMatches(source *concept.SourceTable, target *concept.TargetTable, matrix [][]float32) ([]ConceptMatch, error) {
	if len(matrix) != source.Len() {
		return nil, fmt.Errorf("matrix has %d rows, source table has %d concepts", len(matrix), source.Len())
	}

	matches := make([]ConceptMatch, 0, source.Len())
	for i, row := range matrix {
		if len(row) != target.Len() {
			return nil, fmt.Errorf("matrix row %d has %d columns, target table has %d concepts", i, len(row), target.Len())
		}

		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}

		matches = append(matches, ConceptMatch{
			SourceKey:       source.Concepts[i].SourceKey,
			TargetConceptID: target.Concepts[best].ConceptID,
			SimilarityScore: float64(row[best]),
			Status:          Unconfirmed,
		})
	}

	// Sort through an index permutation so each row is ordered by its own
	// concept count. Duplicate upload rows share a key but may carry
	// different counts, so a key-based lookup would conflate them.
	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return source.Concepts[order[a]].ConceptCount > source.Concepts[order[b]].ConceptCount
	})

	sorted := make([]ConceptMatch, len(matches))
	for i, idx := range order {
		sorted[i] = matches[idx]
	}
	return sorted, nil
}
