package match

import (
	"encoding/json"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Unconfirmed, "unconfirmed"},
		{Confirmed, "confirmed"},
		{Rejected, "rejected"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{Unconfirmed, Confirmed, Rejected} {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("ParseStatus(%q) = %v, want %v", s.String(), parsed, s)
		}
	}

	if _, err := ParseStatus("validated"); err == nil {
		t.Error("ParseStatus accepted an unknown status name")
	}
}

func TestStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Confirmed)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"confirmed"` {
		t.Errorf("Marshal = %s, want %q", data, "confirmed")
	}

	var s Status
	if err := json.Unmarshal([]byte(`"rejected"`), &s); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if s != Rejected {
		t.Errorf("Unmarshal = %v, want Rejected", s)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &s); err == nil {
		t.Error("Unmarshal accepted an unknown status")
	}

	if _, err := json.Marshal(Status(42)); err == nil {
		t.Error("Marshal accepted an invalid status")
	}
}

func TestConceptMatchResolved(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{Unconfirmed, false},
		{Confirmed, true},
		{Rejected, true},
	}
	for _, tt := range tests {
		m := ConceptMatch{Status: tt.status}
		if got := m.Resolved(); got != tt.want {
			t.Errorf("Resolved() with %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "mismatched lengths",
			a:    []float32{1, 2},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "empty vectors",
			a:    []float32{},
			b:    []float32{},
			want: 0,
		},
		{
			name: "zero vector",
			a:    []float32{0, 0},
			b:    []float32{1, 1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
