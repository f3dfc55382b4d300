package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Sea View Villa  ", want: "Sea View Villa"},
		{name: "multiple spaces between words", input: "Sea    View", want: "Sea View"},
		{name: "tabs and newlines", input: "Sea\t\nView", want: "Sea View"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Spa™ ", want: "Café & Spa™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "trim", input: []string{" h1 ", "h2"}, want: []string{"h1", "h2"}},
		{name: "remove duplicates", input: []string{"h1", " h1", "h2", "h1"}, want: []string{"h1", "h2"}},
		{name: "filter empty", input: []string{"", "  ", "h3"}, want: []string{"h3"}},
		{name: "empty input", input: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIDs(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
