package logger

import "testing"

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "Senior Go engineer", limit: 0, expect: ""},
		{name: "fits", input: "Go engineer", limit: 20, expect: "Go engineer"},
		{name: "cut", input: "Senior Go engineer", limit: 6, expect: "Senior..."},
		{name: "trimmed first", input: "  resume text  ", limit: 6, expect: "resume..."},
		{name: "counts runes", input: "Ingénieur logiciel", limit: 9, expect: "Ingénieur..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
