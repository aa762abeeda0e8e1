package sourcekey

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name         string
		conceptCode  string
		conceptName  string
		vocabularyID string
		want         int64
	}{
		{
			name:         "local concept",
			conceptCode:  "C001",
			conceptName:  "Hypertension",
			vocabularyID: "LOCAL",
			want:         610094683,
		},
		{
			name:         "loinc concept",
			conceptCode:  "8480-6",
			conceptName:  "Systolic blood pressure",
			vocabularyID: "LOINC",
			want:         532813245,
		},
		{
			name:         "empty fields",
			conceptCode:  "",
			conceptName:  "",
			vocabularyID: "",
			want:         165605316,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.conceptCode, tt.conceptName, tt.vocabularyID)
			if got != tt.want {
				t.Errorf("Generate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first := Generate("A01", "Fever", "ICD10")
	for i := 0; i < 100; i++ {
		if got := Generate("A01", "Fever", "ICD10"); got != first {
			t.Fatalf("Generate() not deterministic: call %d returned %d, first call returned %d", i, got, first)
		}
	}
}

func TestGenerateWidth(t *testing.T) {
	inputs := []struct{ code, name, vocab string }{
		{"C001", "Hypertension", "LOCAL"},
		{"C002", "Diabetes mellitus", "LOCAL"},
		{"38341003", "Hypertensive disorder", "SNOMED"},
		{"", "", ""},
	}
	for _, in := range inputs {
		key := Generate(in.code, in.name, in.vocab)
		if key < 0 || key >= KeyModulus {
			t.Errorf("Generate(%q, %q, %q) = %d, outside [0, %d)", in.code, in.name, in.vocab, key, KeyModulus)
		}
	}
}

func TestGenerateDistinguishesFields(t *testing.T) {
	base := Generate("C001", "Hypertension", "LOCAL")
	variants := []struct {
		name  string
		other int64
	}{
		{"different code", Generate("C002", "Hypertension", "LOCAL")},
		{"different name", Generate("C001", "Hypotension", "LOCAL")},
		{"different vocabulary", Generate("C001", "Hypertension", "SNOMED")},
	}
	for _, v := range variants {
		if v.other == base {
			t.Errorf("%s produced the same key %d", v.name, base)
		}
	}
}

func TestSyntheticConceptID(t *testing.T) {
	got := SyntheticConceptID("C001", "Hypertension", "LOCAL")
	if got != 2610094683 {
		t.Errorf("SyntheticConceptID() = %d, want 2610094683", got)
	}
	if got < SyntheticIDBase || got >= SyntheticIDBase+KeyModulus {
		t.Errorf("SyntheticConceptID() = %d, outside [%d, %d)", got, SyntheticIDBase, SyntheticIDBase+KeyModulus)
	}
}
