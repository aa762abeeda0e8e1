// Package omop resolves source concept identities across completed sessions
// and emits the final CONCEPT and CONCEPT_RELATIONSHIP export tables.
package omop

import (
	"fmt"
	"sort"
	"time"

	"github.com/matsen/vocabmap/internal/session"
)

// DefaultBaseID is the first canonical concept ID assigned to a resolved
// source concept, placing custom concepts in the >2 billion range of the
// target data model.
const DefaultBaseID = 2_000_000_001

// ValidEndDate is the open-ended validity horizon for exported rows.
var ValidEndDate = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// Relationship IDs for the bidirectional mapping convention.
const (
	RelMapsTo   = "Maps to"
	RelMapsFrom = "Maps from"
)

// IntegrityError reports source keys that were independently resolved in
// more than one session. This is not recoverable automatically; the caller
// must merge or discard one of the sessions.
type IntegrityError struct {
	DuplicateKeys []int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("duplicate source keys resolved in multiple sessions: %v", e.DuplicateKeys)
}

// resolvedConcept is one resolved match collected across sessions, carrying
// the fields that drive canonical ID ordering.
type resolvedConcept struct {
	sourceKey      int64
	firstConfirmed time.Time
	conceptName    string
	conceptCode    string
}

// AssignConceptIDs assigns canonical incremental IDs to every source concept
// resolved across the given fully mapped sessions. IDs are assigned in
// (first confirmation timestamp, concept name, concept code) order starting
// at baseID; the fixed tie-break makes assignment reproducible across export
// runs as long as session contents don't change.
func AssignConceptIDs(sessions []*session.Session, baseID int64) (map[int64]int64, error) {
	var resolved []resolvedConcept
	seen := make(map[int64]bool)
	var duplicates []int64

	for _, s := range sessions {
		lookup := s.Source.Lookup()
		for _, m := range s.Matches {
			if !m.Resolved() {
				continue
			}
			src := lookup[m.SourceKey]

			if seen[m.SourceKey] {
				duplicates = append(duplicates, m.SourceKey)
				continue
			}
			seen[m.SourceKey] = true

			var confirmed time.Time
			if m.FirstConfirmed != nil {
				confirmed = *m.FirstConfirmed
			}
			resolved = append(resolved, resolvedConcept{
				sourceKey:      m.SourceKey,
				firstConfirmed: confirmed,
				conceptName:    src.ConceptName,
				conceptCode:    src.ConceptCode,
			})
		}
	}

	if len(duplicates) > 0 {
		sort.Slice(duplicates, func(a, b int) bool { return duplicates[a] < duplicates[b] })
		return nil, &IntegrityError{DuplicateKeys: duplicates}
	}

	sort.Slice(resolved, func(a, b int) bool {
		ra, rb := resolved[a], resolved[b]
		if !ra.firstConfirmed.Equal(rb.firstConfirmed) {
			return ra.firstConfirmed.Before(rb.firstConfirmed)
		}
		if ra.conceptName != rb.conceptName {
			return ra.conceptName < rb.conceptName
		}
		return ra.conceptCode < rb.conceptCode
	})

	ids := make(map[int64]int64, len(resolved))
	nextID := baseID
	for _, r := range resolved {
		ids[r.sourceKey] = nextID
		nextID++
	}
	return ids, nil
}
