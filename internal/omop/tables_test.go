package omop

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteTables(t *testing.T) {
	dir := t.TempDir()

	concepts := []ConceptRow{{
		ConceptID:       DefaultBaseID,
		ConceptName:     "Asthma",
		VocabularyID:    "LOCAL",
		StandardConcept: "N",
		ConceptCode:     "C001",
		ValidStartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ValidEndDate:    ValidEndDate,
	}}
	relationships := []ConceptRelationshipRow{{
		ConceptID1:     DefaultBaseID,
		ConceptID2:     1001,
		RelationshipID: RelMapsTo,
		ValidStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ValidEndDate:   ValidEndDate,
	}}

	if err := WriteTables(dir, concepts, relationships); err != nil {
		t.Fatalf("WriteTables error: %v", err)
	}

	records := readCSVFile(t, filepath.Join(dir, ConceptFile))
	if len(records) != 2 {
		t.Fatalf("CONCEPT rows = %d, want header + 1", len(records))
	}
	header := records[0]
	if header[0] != "concept_id" || header[len(header)-1] != "invalid_reason" {
		t.Errorf("CONCEPT header = %v", header)
	}
	row := records[1]
	if row[0] != "2000000001" || row[1] != "Asthma" || row[5] != "N" {
		t.Errorf("CONCEPT row = %v", row)
	}
	if row[7] != "2026-03-01" || row[8] != "2099-12-31" {
		t.Errorf("validity window = %s..%s", row[7], row[8])
	}

	relRecords := readCSVFile(t, filepath.Join(dir, RelationshipFile))
	if len(relRecords) != 2 {
		t.Fatalf("CONCEPT_RELATIONSHIP rows = %d, want header + 1", len(relRecords))
	}
	if relRecords[1][2] != RelMapsTo {
		t.Errorf("relationship_id = %q", relRecords[1][2])
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}
