package session

import (
	"fmt"
	"time"

	"github.com/matsen/vocabmap/internal/match"
)

// ScoreNA is the on-disk similarity score for human-overridden targets,
// signaling "not computed by the model".
const ScoreNA = "NA"

// matchRecord is the wire form of a ConceptMatch in concept_matches.json.
// Array position corresponds to the review order and must round-trip exactly.
type matchRecord struct {
	SourceKey       int64   `json:"source_key"`
	TargetConceptID int64   `json:"target_concept_id"`
	SimilarityScore string  `json:"similarity_score"`
	Status          string  `json:"confirmation_status"`
	FirstConfirmed  *string `json:"first_confirmation_timestamp"`
	LastUpdated     *string `json:"last_update_timestamp"`
}

// encodeMatch converts an in-memory match to its wire form. Scores are
// formatted to three decimals; overridden scores become "NA".
func encodeMatch(m match.ConceptMatch) matchRecord {
	score := ScoreNA
	if !m.ScoreNA {
		score = fmt.Sprintf("%.3f", m.SimilarityScore)
	}
	return matchRecord{
		SourceKey:       m.SourceKey,
		TargetConceptID: m.TargetConceptID,
		SimilarityScore: score,
		Status:          m.Status.String(),
		FirstConfirmed:  encodeTime(m.FirstConfirmed),
		LastUpdated:     encodeTime(m.LastUpdated),
	}
}

// decodeMatch converts a wire record back to an in-memory match.
func decodeMatch(rec matchRecord) (match.ConceptMatch, error) {
	status, err := match.ParseStatus(rec.Status)
	if err != nil {
		return match.ConceptMatch{}, err
	}

	m := match.ConceptMatch{
		SourceKey:       rec.SourceKey,
		TargetConceptID: rec.TargetConceptID,
		Status:          status,
	}

	if rec.SimilarityScore == ScoreNA {
		m.ScoreNA = true
	} else {
		if _, err := fmt.Sscanf(rec.SimilarityScore, "%f", &m.SimilarityScore); err != nil {
			return match.ConceptMatch{}, fmt.Errorf("parsing similarity score %q: %w", rec.SimilarityScore, err)
		}
	}

	if m.FirstConfirmed, err = decodeTime(rec.FirstConfirmed); err != nil {
		return match.ConceptMatch{}, fmt.Errorf("parsing first confirmation timestamp: %w", err)
	}
	if m.LastUpdated, err = decodeTime(rec.LastUpdated); err != nil {
		return match.ConceptMatch{}, fmt.Errorf("parsing last update timestamp: %w", err)
	}
	return m, nil
}

func encodeTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

func decodeTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
