// Package concept defines the source and target vocabulary tables being reconciled.
package concept

import (
	"errors"

	"github.com/matsen/vocabmap/internal/sourcekey"
)

// Sentinel values for the reserved "no matching concept" target record.
// The sentinel is injected by NewTargetTable, never supplied by uploads.
const (
	NoMatchConceptID   = 0
	NoMatchConceptCode = "No matching concept"
	NoMatchConceptName = "No matching concept"
	NoMatchVocabulary  = "None"
)

// Errors returned by table operations.
var (
	ErrSourceNotFound = errors.New("source concept not found")
	ErrTargetNotFound = errors.New("target concept not found")
)

// SourceConcept is a locally-observed vocabulary term awaiting standardization.
// SourceKey is derived from the other fields at construction time and is the
// only identity used for joins; it is never user-supplied.
type SourceConcept struct {
	SourceKey    int64  `json:"source_key"`
	ConceptCode  string `json:"concept_code"`
	ConceptName  string `json:"concept_name"`
	VocabularyID string `json:"vocabulary_id"`
	ConceptCount int    `json:"concept_count"`
}

// NewSourceConcept builds a source concept, deriving its key from the
// identity fields.
func NewSourceConcept(code, name, vocabularyID string, count int) SourceConcept {
	return SourceConcept{
		SourceKey:    sourcekey.Generate(code, name, vocabularyID),
		ConceptCode:  code,
		ConceptName:  name,
		VocabularyID: vocabularyID,
		ConceptCount: count,
	}
}

// TargetConcept is a term from the standard terminology that source concepts
// map onto.
type TargetConcept struct {
	ConceptID    int64  `json:"concept_id"`
	ConceptCode  string `json:"concept_code"`
	ConceptName  string `json:"concept_name"`
	VocabularyID string `json:"vocabulary_id"`
}

// IsNoMatch reports whether this is the reserved sentinel record.
func (t TargetConcept) IsNoMatch() bool {
	return t.ConceptID == NoMatchConceptID
}

// SourceTable is an ordered collection of source concepts. Duplicate upload
// rows are kept as separate entries sharing one key; deduplication happens
// through key equality in later joins, not at load time.
type SourceTable struct {
	Concepts []SourceConcept `json:"concepts"`
}

// NewSourceTable wraps a slice of source concepts.
func NewSourceTable(concepts []SourceConcept) *SourceTable {
	return &SourceTable{Concepts: concepts}
}

// Len returns the number of source concepts.
func (t *SourceTable) Len() int {
	return len(t.Concepts)
}

// Lookup returns a map from source key to concept. When duplicate rows share
// a key, the last occurrence wins.
func (t *SourceTable) Lookup() map[int64]SourceConcept {
	m := make(map[int64]SourceConcept, len(t.Concepts))
	for _, c := range t.Concepts {
		m[c.SourceKey] = c
	}
	return m
}

// ByKey returns the first source concept with the given key.
func (t *SourceTable) ByKey(key int64) (SourceConcept, error) {
	for _, c := range t.Concepts {
		if c.SourceKey == key {
			return c, nil
		}
	}
	return SourceConcept{}, ErrSourceNotFound
}

// TargetTable is an ordered collection of target concepts. Index 0 always
// holds the reserved "no matching concept" sentinel.
type TargetTable struct {
	Concepts []TargetConcept `json:"concepts"`
}

// NewTargetTable builds a target table, prepending the sentinel record
// before the uploaded concepts.
func NewTargetTable(concepts []TargetConcept) *TargetTable {
	all := make([]TargetConcept, 0, len(concepts)+1)
	all = append(all, TargetConcept{
		ConceptID:    NoMatchConceptID,
		ConceptCode:  NoMatchConceptCode,
		ConceptName:  NoMatchConceptName,
		VocabularyID: NoMatchVocabulary,
	})
	all = append(all, concepts...)
	return &TargetTable{Concepts: all}
}

// Len returns the number of target concepts, sentinel included.
func (t *TargetTable) Len() int {
	return len(t.Concepts)
}

// Lookup returns a map from concept ID to concept.
func (t *TargetTable) Lookup() map[int64]TargetConcept {
	m := make(map[int64]TargetConcept, len(t.Concepts))
	for _, c := range t.Concepts {
		m[c.ConceptID] = c
	}
	return m
}

// ByID returns the target concept with the given ID.
func (t *TargetTable) ByID(id int64) (TargetConcept, error) {
	for _, c := range t.Concepts {
		if c.ConceptID == id {
			return c, nil
		}
	}
	return TargetConcept{}, ErrTargetNotFound
}

// HasID reports whether a concept with the given ID exists in the table.
func (t *TargetTable) HasID(id int64) bool {
	_, err := t.ByID(id)
	return err == nil
}
