package models

import "testing"

func TestValidUnit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"kg", "kg", true},
		{"tubers", "tubers", true},
		{"tsp", "tsp", true},
		{"unknown", "barrel", false},
		{"empty", "", false},
		{"case sensitive", "KG", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidUnit(tt.value); got != tt.want {
				t.Fatalf("ValidUnit(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}
