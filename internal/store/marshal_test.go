package store

import (
	"testing"

	"github.com/roach88/peano/internal/ir"
)

func TestMarshalTerm(t *testing.T) {
	tests := []struct {
		name string
		term ir.Term
		want string
	}{
		{"zero", ir.Zero{}, "0"},
		{"nat", ir.Five, "5"},
		{"true", ir.True{}, "true"},
		{"false", ir.False{}, "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalTerm(tt.term)
			if err != nil {
				t.Fatalf("marshalTerm() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalTerm() = %q, want %q", got, tt.want)
			}

			back, err := unmarshalTerm(got)
			if err != nil {
				t.Fatalf("unmarshalTerm() failed: %v", err)
			}
			if !ir.Equal(back, tt.term) {
				t.Errorf("unmarshalTerm(%q) = %v, want %v", got, back, tt.term)
			}
		})
	}
}

func TestMarshalTerms_Empty(t *testing.T) {
	got, err := marshalTerms(nil)
	if err != nil {
		t.Fatalf("marshalTerms(nil) failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("marshalTerms(nil) = %q, want []", got)
	}

	ts, err := unmarshalTerms(got)
	if err != nil {
		t.Fatalf("unmarshalTerms() failed: %v", err)
	}
	if ts == nil || len(ts) != 0 {
		t.Errorf("unmarshalTerms(%q) = %#v, want empty slice", got, ts)
	}
}

func TestUnmarshalTerm_Rejects(t *testing.T) {
	for _, data := range []string{`"x"`, `-1`, `1.5`, `null`, `{}`, `not json`} {
		if _, err := unmarshalTerm(data); err == nil {
			t.Errorf("unmarshalTerm(%s) succeeded, want error", data)
		}
	}
}
