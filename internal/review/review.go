// Package review implements the human-in-the-loop confirmation state machine
// over a session's ordered match list.
package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/match"
)

// Errors returned by review operations.
var (
	ErrIndexOutOfRange = errors.New("match index out of range")
	ErrUnknownTarget   = errors.New("target concept not in session target table")
)

// Review owns a session's match list plus the interaction state that used to
// live in ambient UI globals: the current page and the staged target
// overrides. One Review exists per interactive session and is discarded on
// exit; mutations go through it so transitions are validated in one place.
type Review struct {
	Matches []match.ConceptMatch
	Target  *concept.TargetTable

	// Page is the current zero-based review page.
	Page int

	// overrides stages index -> replacement target ID. Staged values only
	// take effect when the corresponding confirm operation executes.
	overrides map[int]int64
}

// New creates a review over a session's matches and target table.
func New(matches []match.ConceptMatch, target *concept.TargetTable) *Review {
	return &Review{
		Matches:   matches,
		Target:    target,
		overrides: make(map[int]int64),
	}
}

// SetOverride stages a replacement target for the match at idx. Staging the
// match's current target is a "no change" request and clears any staged
// override instead of storing a no-op.
func (r *Review) SetOverride(idx int, targetID int64) error {
	if idx < 0 || idx >= len(r.Matches) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	if !r.Target.HasID(targetID) {
		return fmt.Errorf("%w: %d", ErrUnknownTarget, targetID)
	}
	if r.Matches[idx].TargetConceptID == targetID {
		delete(r.overrides, idx)
		return nil
	}
	r.overrides[idx] = targetID
	return nil
}

// ClearOverride removes any staged override for idx.
func (r *Review) ClearOverride(idx int) {
	delete(r.overrides, idx)
}

// PendingOverride returns the staged target for idx, if any.
func (r *Review) PendingOverride(idx int) (int64, bool) {
	id, ok := r.overrides[idx]
	return id, ok
}

// PendingOverrides returns the number of staged overrides.
func (r *Review) PendingOverrides() int {
	return len(r.overrides)
}

// ConfirmSingle resolves the match at idx. A pending override is applied
// first: the target is replaced, the similarity score becomes not-applicable,
// and the status is Rejected when the new target is the sentinel, Confirmed
// otherwise. Without an override the status becomes Confirmed, except that a
// match still pointing at the sentinel is Rejected (target 0 always means
// rejected). LastUpdated is always set to now; FirstConfirmed is recorded
// once and never overwritten.
func (r *Review) ConfirmSingle(idx int, now time.Time) error {
	if idx < 0 || idx >= len(r.Matches) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}

	m := &r.Matches[idx]
	if newTarget, ok := r.overrides[idx]; ok {
		m.TargetConceptID = newTarget
		m.ScoreNA = true
		delete(r.overrides, idx)
	}

	if m.TargetConceptID == concept.NoMatchConceptID {
		m.Status = match.Rejected
	} else {
		m.Status = match.Confirmed
	}
	stamp(m, now)
	return nil
}

// ConfirmRange confirms every match in [start, end). Indices outside the
// range are untouched even when they hold staged overrides. The range is
// validated before any match is mutated.
func (r *Review) ConfirmRange(start, end int, now time.Time) error {
	if err := r.checkRange(start, end); err != nil {
		return err
	}
	for idx := start; idx < end; idx++ {
		if err := r.ConfirmSingle(idx, now); err != nil {
			return err
		}
	}
	return nil
}

// RejectUnconfirmed forces every not-yet-Confirmed match in [start, end) to
// the sentinel target with Rejected status. Confirmed matches are never
// altered.
func (r *Review) RejectUnconfirmed(start, end int, now time.Time) error {
	if err := r.checkRange(start, end); err != nil {
		return err
	}
	for idx := start; idx < end; idx++ {
		m := &r.Matches[idx]
		if m.Status == match.Confirmed {
			continue
		}
		m.TargetConceptID = concept.NoMatchConceptID
		m.ScoreNA = true
		m.Status = match.Rejected
		delete(r.overrides, idx)
		stamp(m, now)
	}
	return nil
}

// checkRange validates [start, end) against the match list before any batch
// mutation starts.
func (r *Review) checkRange(start, end int) error {
	if start < 0 || end > len(r.Matches) || start > end {
		return fmt.Errorf("%w: [%d, %d) over %d matches", ErrIndexOutOfRange, start, end, len(r.Matches))
	}
	return nil
}

// stamp applies the first/last timestamp rule.
func stamp(m *match.ConceptMatch, now time.Time) {
	if m.FirstConfirmed == nil {
		first := now
		m.FirstConfirmed = &first
	}
	last := now
	m.LastUpdated = &last
}
