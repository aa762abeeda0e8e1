package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/match"
)

// SortOption selects a display ordering for the match list. Sorting is a
// view concern only; the persisted review order never changes.
type SortOption string

const (
	SortNone      SortOption = "none"
	SortNameAsc   SortOption = "name-asc"
	SortNameDesc  SortOption = "name-desc"
	SortScoreHigh SortOption = "score-high"
	SortScoreLow  SortOption = "score-low"
)

// ParseSortOption validates a sort option string.
func ParseSortOption(s string) (SortOption, error) {
	switch SortOption(s) {
	case SortNone, SortNameAsc, SortNameDesc, SortScoreHigh, SortScoreLow:
		return SortOption(s), nil
	}
	return "", fmt.Errorf("unknown sort option: %s", s)
}

// SortOrder returns the indices of matches in the requested display order.
// Indices keep pointing at positions in the stored list, so a display row
// can always be traced back to the match it shows. Name ordering is
// case-insensitive on the source concept name.
func SortOrder(matches []match.ConceptMatch, lookup map[int64]concept.SourceConcept, option SortOption) []int {
	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}

	name := func(i int) string {
		return strings.ToLower(lookup[matches[i].SourceKey].ConceptName)
	}
	score := func(i int) float64 {
		return matches[i].SimilarityScore
	}

	switch option {
	case SortNameAsc:
		sort.SliceStable(order, func(a, b int) bool { return name(order[a]) < name(order[b]) })
	case SortNameDesc:
		sort.SliceStable(order, func(a, b int) bool { return name(order[a]) > name(order[b]) })
	case SortScoreHigh:
		sort.SliceStable(order, func(a, b int) bool { return score(order[a]) > score(order[b]) })
	case SortScoreLow:
		sort.SliceStable(order, func(a, b int) bool { return score(order[a]) < score(order[b]) })
	}
	return order
}

// SortMatches returns a copy of matches in the requested display order.
func SortMatches(matches []match.ConceptMatch, lookup map[int64]concept.SourceConcept, option SortOption) []match.ConceptMatch {
	order := SortOrder(matches, lookup, option)
	sorted := make([]match.ConceptMatch, len(matches))
	for i, idx := range order {
		sorted[i] = matches[idx]
	}
	return sorted
}

// FilterUnconfirmed returns only the matches still awaiting review.
func FilterUnconfirmed(matches []match.ConceptMatch) []match.ConceptMatch {
	var pending []match.ConceptMatch
	for _, m := range matches {
		if m.Status == match.Unconfirmed {
			pending = append(pending, m)
		}
	}
	return pending
}

// PageBounds computes the [start, end) slice bounds and total page count for
// a page of perPage items over total items. Pages before the first clamp to
// page 0; pages past the last yield an empty range.
func PageBounds(page, total, perPage int) (start, end, totalPages int) {
	if perPage <= 0 {
		perPage = 20
	}
	if page < 0 {
		page = 0
	}
	start = page * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	totalPages = (total + perPage - 1) / perPage
	return start, end, totalPages
}
