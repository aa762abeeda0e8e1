package concept

import (
	"testing"

	"github.com/matsen/vocabmap/internal/sourcekey"
)

func TestNewSourceConcept(t *testing.T) {
	c := NewSourceConcept("C001", "Hypertension", "LOCAL", 42)

	if c.SourceKey != sourcekey.Generate("C001", "Hypertension", "LOCAL") {
		t.Errorf("SourceKey = %d, want derived key", c.SourceKey)
	}
	if c.ConceptCode != "C001" || c.ConceptName != "Hypertension" || c.VocabularyID != "LOCAL" {
		t.Errorf("identity fields not preserved: %+v", c)
	}
	if c.ConceptCount != 42 {
		t.Errorf("ConceptCount = %d, want 42", c.ConceptCount)
	}
}

func TestDuplicateRowsShareKey(t *testing.T) {
	a := NewSourceConcept("C001", "Hypertension", "LOCAL", 10)
	b := NewSourceConcept("C001", "Hypertension", "LOCAL", 99)

	if a.SourceKey != b.SourceKey {
		t.Errorf("duplicate concepts got different keys: %d vs %d", a.SourceKey, b.SourceKey)
	}

	table := NewSourceTable([]SourceConcept{a, b})
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates are not collapsed at load time)", table.Len())
	}
}

func TestNewTargetTableSentinel(t *testing.T) {
	tests := []struct {
		name     string
		concepts []TargetConcept
	}{
		{name: "empty upload", concepts: nil},
		{
			name: "with concepts",
			concepts: []TargetConcept{
				{ConceptID: 1001, ConceptCode: "38341003", ConceptName: "Hypertensive disorder", VocabularyID: "SNOMED"},
				{ConceptID: 1002, ConceptCode: "73211009", ConceptName: "Diabetes mellitus", VocabularyID: "SNOMED"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTargetTable(tt.concepts)

			if table.Len() != len(tt.concepts)+1 {
				t.Fatalf("Len() = %d, want %d", table.Len(), len(tt.concepts)+1)
			}

			sentinels := 0
			for _, c := range table.Concepts {
				if c.ConceptID == NoMatchConceptID {
					sentinels++
					if c.ConceptCode != NoMatchConceptCode || c.ConceptName != NoMatchConceptName {
						t.Errorf("sentinel fields = %q/%q, want %q", c.ConceptCode, c.ConceptName, NoMatchConceptCode)
					}
					if !c.IsNoMatch() {
						t.Error("IsNoMatch() = false for sentinel")
					}
				}
			}
			if sentinels != 1 {
				t.Errorf("found %d sentinel records, want exactly 1", sentinels)
			}
			if !table.Concepts[0].IsNoMatch() {
				t.Error("sentinel is not at index 0")
			}
		})
	}
}

func TestTargetTableLookup(t *testing.T) {
	table := NewTargetTable([]TargetConcept{
		{ConceptID: 1001, ConceptName: "Hypertensive disorder"},
	})

	if !table.HasID(0) {
		t.Error("HasID(0) = false, want true (sentinel)")
	}
	if !table.HasID(1001) {
		t.Error("HasID(1001) = false, want true")
	}
	if table.HasID(9999) {
		t.Error("HasID(9999) = true, want false")
	}

	c, err := table.ByID(1001)
	if err != nil {
		t.Fatalf("ByID(1001) error: %v", err)
	}
	if c.ConceptName != "Hypertensive disorder" {
		t.Errorf("ByID(1001).ConceptName = %q", c.ConceptName)
	}

	if _, err := table.ByID(9999); err != ErrTargetNotFound {
		t.Errorf("ByID(9999) error = %v, want ErrTargetNotFound", err)
	}
}

func TestSourceTableByKey(t *testing.T) {
	c := NewSourceConcept("C001", "Hypertension", "LOCAL", 5)
	table := NewSourceTable([]SourceConcept{c})

	got, err := table.ByKey(c.SourceKey)
	if err != nil {
		t.Fatalf("ByKey error: %v", err)
	}
	if got.ConceptName != "Hypertension" {
		t.Errorf("ByKey().ConceptName = %q", got.ConceptName)
	}

	if _, err := table.ByKey(123456789); err != ErrSourceNotFound {
		t.Errorf("ByKey(missing) error = %v, want ErrSourceNotFound", err)
	}
}
