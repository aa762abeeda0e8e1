// Package match computes similarity-based seed matches between source and
// target concept tables and defines the per-match confirmation record.
package match

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the confirmation state of a concept match.
type Status int

const (
	// Unconfirmed is the initial state of every generated match.
	Unconfirmed Status = iota
	// Confirmed marks a human-accepted mapping.
	Confirmed
	// Rejected marks a deliberately unmapped concept (target is the sentinel).
	Rejected
)

var statusNames = map[Status]string{
	Unconfirmed: "unconfirmed",
	Confirmed:   "confirmed",
	Rejected:    "rejected",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Valid reports whether the status is one of the defined states.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus converts a wire name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Unconfirmed, fmt.Errorf("unknown confirmation status %q", name)
}

// MarshalJSON encodes the status as its wire name.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its wire name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConceptMatch pairs one source concept with its current target concept.
// Exactly one match exists per source table row within a session.
//
// SimilarityScore holds a genuine cosine value only while the target is the
// one produced by the automatic matcher; once a human overrides the target,
// ScoreNA is set and the stale score must not be shown as a model score.
type ConceptMatch struct {
	SourceKey       int64
	TargetConceptID int64
	SimilarityScore float64
	ScoreNA         bool
	Status          Status
	FirstConfirmed  *time.Time
	LastUpdated     *time.Time
}

// Resolved reports whether the match has left the Unconfirmed state.
func (m ConceptMatch) Resolved() bool {
	return m.Status == Confirmed || m.Status == Rejected
}
