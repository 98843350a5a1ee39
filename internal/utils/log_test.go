package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "remote golang role", limit: 0, expect: ""},
		{name: "shorter than limit", input: "remote", limit: 10, expect: "remote"},
		{name: "truncated", input: "remote golang role", limit: 6, expect: "remote..."},
		{name: "trims whitespace", input: "  spaced  ", limit: 5, expect: "space..."},
		{name: "counts runes", input: "résumé text", limit: 6, expect: "résumé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
