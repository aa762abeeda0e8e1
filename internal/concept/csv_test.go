package concept

import (
	"errors"
	"strings"
	"testing"
)

const validSourceCSV = `source_concept_code,source_concept_name,source_vocabulary_id,source_concept_count
C001,Hypertension,LOCAL,50
C002,Diabetes mellitus,LOCAL,5
`

const validTargetCSV = `concept_id,concept_code,concept_name,vocabulary_id
1001,38341003,Hypertensive disorder,SNOMED
1002,73211009,Diabetes mellitus,SNOMED
`

func TestReadSourceCSV(t *testing.T) {
	table, err := ReadSourceCSV(strings.NewReader(validSourceCSV))
	if err != nil {
		t.Fatalf("ReadSourceCSV error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	first := table.Concepts[0]
	if first.ConceptCode != "C001" || first.ConceptName != "Hypertension" || first.VocabularyID != "LOCAL" {
		t.Errorf("first concept = %+v", first)
	}
	if first.ConceptCount != 50 {
		t.Errorf("ConceptCount = %d, want 50", first.ConceptCount)
	}
	if first.SourceKey == 0 {
		t.Error("SourceKey was not derived")
	}
}

func TestReadSourceCSVColumnOrderFree(t *testing.T) {
	reordered := `source_concept_count,source_vocabulary_id,source_concept_name,source_concept_code
50,LOCAL,Hypertension,C001
`
	table, err := ReadSourceCSV(strings.NewReader(reordered))
	if err != nil {
		t.Fatalf("ReadSourceCSV error: %v", err)
	}
	c := table.Concepts[0]
	if c.ConceptCode != "C001" || c.ConceptCount != 50 {
		t.Errorf("columns mapped by position instead of name: %+v", c)
	}
}

func TestReadSourceCSVMissingColumns(t *testing.T) {
	csv := `source_concept_code,source_concept_name
C001,Hypertension
`
	_, err := ReadSourceCSV(strings.NewReader(csv))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.MissingColumns) != 2 {
		t.Fatalf("MissingColumns = %v, want 2 entries", verr.MissingColumns)
	}
	for _, col := range []string{"source_concept_count", "source_vocabulary_id"} {
		if !strings.Contains(verr.Error(), col) {
			t.Errorf("error message does not name missing column %q: %s", col, verr.Error())
		}
	}
	if len(verr.RowErrors) != 0 {
		t.Error("rows were parsed despite missing columns")
	}
}

func TestReadSourceCSVCollectsRowErrors(t *testing.T) {
	csv := `source_concept_code,source_concept_name,source_vocabulary_id,source_concept_count
C001,Hypertension,LOCAL,not-a-number
C002,Diabetes mellitus,LOCAL,5
C003,Asthma,LOCAL,also-bad
`
	_, err := ReadSourceCSV(strings.NewReader(csv))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.RowErrors) != 2 {
		t.Fatalf("RowErrors = %v, want both bad rows reported", verr.RowErrors)
	}
	if verr.RowErrors[0].Row != 0 || verr.RowErrors[1].Row != 2 {
		t.Errorf("reported rows %d and %d, want 0 and 2", verr.RowErrors[0].Row, verr.RowErrors[1].Row)
	}
}

func TestReadTargetCSV(t *testing.T) {
	table, err := ReadTargetCSV(strings.NewReader(validTargetCSV))
	if err != nil {
		t.Fatalf("ReadTargetCSV error: %v", err)
	}

	// Two uploaded concepts plus the injected sentinel.
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if !table.Concepts[0].IsNoMatch() {
		t.Error("sentinel not prepended")
	}
	if table.Concepts[1].ConceptID != 1001 {
		t.Errorf("first uploaded concept ID = %d, want 1001", table.Concepts[1].ConceptID)
	}
}

func TestReadTargetCSVMissingColumns(t *testing.T) {
	csv := `concept_code,concept_name
38341003,Hypertensive disorder
`
	_, err := ReadTargetCSV(strings.NewReader(csv))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	want := []string{"concept_id", "vocabulary_id"}
	if len(verr.MissingColumns) != len(want) {
		t.Fatalf("MissingColumns = %v, want %v", verr.MissingColumns, want)
	}
	for i, col := range want {
		if verr.MissingColumns[i] != col {
			t.Errorf("MissingColumns[%d] = %q, want %q", i, verr.MissingColumns[i], col)
		}
	}
}

func TestReadTargetCSVBadConceptID(t *testing.T) {
	csv := `concept_id,concept_code,concept_name,vocabulary_id
abc,38341003,Hypertensive disorder,SNOMED
`
	_, err := ReadTargetCSV(strings.NewReader(csv))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.RowErrors) != 1 || verr.RowErrors[0].Row != 0 {
		t.Errorf("RowErrors = %v, want single error for row 0", verr.RowErrors)
	}
}

func TestReadCSVEmptyFile(t *testing.T) {
	if _, err := ReadSourceCSV(strings.NewReader("")); err == nil {
		t.Error("ReadSourceCSV(empty) returned nil error")
	}
}
