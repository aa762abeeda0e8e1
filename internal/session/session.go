// Package session persists mapping sessions as named, timestamped units on disk.
package session

import (
	"fmt"
	"time"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/match"
)

// TimestampFormat is the creation timestamp layout used in session names.
const TimestampFormat = "20060102_150405"

// Artifact file names within a session directory. Metadata is kept separate
// from the bulk artifacts so listing sessions never deserializes bulk data.
const (
	MetadataFile     = "metadata.json"
	SourceFile       = "source_concepts.json"
	TargetFile       = "target_concepts.json"
	SimilaritiesFile = "similarities.gob"
	MatchesFile      = "concept_matches.json"
)

// Session is the durable unit of mapping work: the two concept tables, the
// similarity matrix, and the ordered match list. Tables and matrix are
// immutable after creation; edits mutate Matches and are persisted by
// rewriting the match artifact.
type Session struct {
	ProjectName  string
	Timestamp    string
	Source       *concept.SourceTable
	Target       *concept.TargetTable
	Similarities [][]float32
	Matches      []match.ConceptMatch
}

// Name returns the storage namespace of the session.
func (s *Session) Name() string {
	return fmt.Sprintf("%s_%s", s.ProjectName, s.Timestamp)
}

// FullyMapped reports whether every match is Confirmed or Rejected. Only
// fully mapped sessions participate in canonical ID assignment.
func (s *Session) FullyMapped() bool {
	for _, m := range s.Matches {
		if !m.Resolved() {
			return false
		}
	}
	return true
}

// Summary counts matches by confirmation state.
type Summary struct {
	Confirmed   int `json:"confirmed"`
	Rejected    int `json:"rejected"`
	Unconfirmed int `json:"unconfirmed"`
}

// Summarize tallies the session's match states.
func (s *Session) Summarize() Summary {
	var sum Summary
	for _, m := range s.Matches {
		switch m.Status {
		case match.Confirmed:
			sum.Confirmed++
		case match.Rejected:
			sum.Rejected++
		default:
			sum.Unconfirmed++
		}
	}
	return sum
}

// Metadata is the lightweight session record used for listing without
// touching bulk artifacts.
type Metadata struct {
	ProjectName string `json:"project_name"`
	Timestamp   string `json:"timestamp"`
	SourceCount int    `json:"source_count"`
	TargetCount int    `json:"target_count"`
	MatrixRows  int    `json:"matrix_rows"`
	MatrixCols  int    `json:"matrix_cols"`
	MatchCount  int    `json:"matches_count"`
	SessionName string `json:"session_name"`
}

// metadata derives the metadata record from a session.
func (s *Session) metadata() Metadata {
	cols := 0
	if len(s.Similarities) > 0 {
		cols = len(s.Similarities[0])
	}
	return Metadata{
		ProjectName: s.ProjectName,
		Timestamp:   s.Timestamp,
		SourceCount: s.Source.Len(),
		TargetCount: s.Target.Len(),
		MatrixRows:  len(s.Similarities),
		MatrixCols:  cols,
		MatchCount:  len(s.Matches),
		SessionName: s.Name(),
	}
}

// NewTimestamp formats a creation time for use in session names.
func NewTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}
