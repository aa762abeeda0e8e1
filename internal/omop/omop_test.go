package omop

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/matsen/vocabmap/internal/concept"
	"github.com/matsen/vocabmap/internal/match"
	"github.com/matsen/vocabmap/internal/session"
)

// resolvedSession builds a fully mapped single-concept session.
func resolvedSession(t *testing.T, code, name string, confirmedAt time.Time, targetID int64) *session.Session {
	t.Helper()

	src := concept.NewSourceConcept(code, name, "LOCAL", 1)
	status := match.Confirmed
	if targetID == concept.NoMatchConceptID {
		status = match.Rejected
	}
	return &session.Session{
		ProjectName: "p_" + code,
		Timestamp:   "20260301_000000",
		Source:      concept.NewSourceTable([]concept.SourceConcept{src}),
		Target: concept.NewTargetTable([]concept.TargetConcept{
			{ConceptID: 1001, ConceptName: "Hypertensive disorder"},
		}),
		Matches: []match.ConceptMatch{{
			SourceKey:       src.SourceKey,
			TargetConceptID: targetID,
			Status:          status,
			FirstConfirmed:  &confirmedAt,
			LastUpdated:     &confirmedAt,
		}},
	}
}

func TestAssignConceptIDsOrdering(t *testing.T) {
	early := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	// Resolved later in time, so assigned after despite listing first.
	s1 := resolvedSession(t, "C002", "Zoster", late, 1001)
	s2 := resolvedSession(t, "C001", "Asthma", early, 1001)

	ids, err := AssignConceptIDs([]*session.Session{s1, s2}, DefaultBaseID)
	if err != nil {
		t.Fatalf("AssignConceptIDs error: %v", err)
	}

	asthmaKey := s2.Source.Concepts[0].SourceKey
	zosterKey := s1.Source.Concepts[0].SourceKey
	if ids[asthmaKey] != DefaultBaseID {
		t.Errorf("earlier confirmation got ID %d, want %d", ids[asthmaKey], DefaultBaseID)
	}
	if ids[zosterKey] != DefaultBaseID+1 {
		t.Errorf("later confirmation got ID %d, want %d", ids[zosterKey], DefaultBaseID+1)
	}
}

func TestAssignConceptIDsTieBreakByName(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s1 := resolvedSession(t, "C010", "Zoster", at, 1001)
	s2 := resolvedSession(t, "C020", "Asthma", at, 1001)

	ids, err := AssignConceptIDs([]*session.Session{s1, s2}, DefaultBaseID)
	if err != nil {
		t.Fatalf("AssignConceptIDs error: %v", err)
	}

	if ids[s2.Source.Concepts[0].SourceKey] != DefaultBaseID {
		t.Error("name tie-break did not order Asthma first")
	}
}

func TestAssignConceptIDsReproducible(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions := []*session.Session{
		resolvedSession(t, "C001", "Asthma", at.Add(time.Minute), 1001),
		resolvedSession(t, "C002", "Migraine", at, 0),
		resolvedSession(t, "C003", "Zoster", at, 1001),
	}

	first, err := AssignConceptIDs(sessions, DefaultBaseID)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	second, err := AssignConceptIDs(sessions, DefaultBaseID)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs diverged:\n%v\n%v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("len = %d, want 3 (rejected matches are assigned IDs too)", len(first))
	}
}

func TestAssignConceptIDsDuplicateKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	// The same concept resolved in two independent sessions.
	s1 := resolvedSession(t, "C001", "Asthma", at, 1001)
	s2 := resolvedSession(t, "C001", "Asthma", at.Add(time.Hour), 1001)

	_, err := AssignConceptIDs([]*session.Session{s1, s2}, DefaultBaseID)

	var ierr *IntegrityError
	if !errors.As(err, &ierr) {
		t.Fatalf("error = %v, want IntegrityError", err)
	}
	if len(ierr.DuplicateKeys) != 1 || ierr.DuplicateKeys[0] != s1.Source.Concepts[0].SourceKey {
		t.Errorf("DuplicateKeys = %v", ierr.DuplicateKeys)
	}
}

func TestAssignConceptIDsSkipsUnconfirmed(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := resolvedSession(t, "C001", "Asthma", at, 1001)
	s.Matches[0].Status = match.Unconfirmed

	ids, err := AssignConceptIDs([]*session.Session{s}, DefaultBaseID)
	if err != nil {
		t.Fatalf("AssignConceptIDs error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("unconfirmed match was assigned an ID: %v", ids)
	}
}

func TestGenerateTables(t *testing.T) {
	confirmedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s := resolvedSession(t, "C001", "Asthma", confirmedAt, 1001)
	sessions := []*session.Session{s}

	ids, err := AssignConceptIDs(sessions, DefaultBaseID)
	if err != nil {
		t.Fatalf("AssignConceptIDs error: %v", err)
	}

	concepts := GenerateConceptTable(sessions, ids)
	if len(concepts) != 1 {
		t.Fatalf("concept rows = %d, want 1", len(concepts))
	}
	row := concepts[0]
	if row.ConceptID != DefaultBaseID {
		t.Errorf("ConceptID = %d, want %d", row.ConceptID, DefaultBaseID)
	}
	if row.ConceptName != "Asthma" || row.ConceptCode != "C001" || row.VocabularyID != "LOCAL" {
		t.Errorf("source fields = %+v", row)
	}
	if row.StandardConcept != "N" {
		t.Errorf("StandardConcept = %q, want %q", row.StandardConcept, "N")
	}
	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !row.ValidStartDate.Equal(wantStart) {
		t.Errorf("ValidStartDate = %v, want %v", row.ValidStartDate, wantStart)
	}
	if !row.ValidEndDate.Equal(ValidEndDate) {
		t.Errorf("ValidEndDate = %v", row.ValidEndDate)
	}

	rels := GenerateRelationshipTable(sessions, ids)
	if len(rels) != 2 {
		t.Fatalf("relationship rows = %d, want 2 per match", len(rels))
	}
	forward, inverse := rels[0], rels[1]
	if forward.RelationshipID != RelMapsTo || forward.ConceptID1 != DefaultBaseID || forward.ConceptID2 != 1001 {
		t.Errorf("forward row = %+v", forward)
	}
	if inverse.RelationshipID != RelMapsFrom || inverse.ConceptID1 != 1001 || inverse.ConceptID2 != DefaultBaseID {
		t.Errorf("inverse row = %+v", inverse)
	}
}
