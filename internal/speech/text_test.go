package speech

import "testing"

func TestNormalizeForSynthesis(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"decimal and use", "2.5 use it", "2 point 5 yuuzh it"},
		{"multi digit fraction", "version 3.14 shipped", "version 3 point 1 4 shipped"},
		{"use capitalized", "Use a loop here", "yuuzh a loop here"},
		{"use inside word untouched", "reuse the museum pass", "reuse the museum pass"},
		{"plain text untouched", "arrays hold many values", "arrays hold many values"},
		{"whitespace collapsed", "  too   many\tspaces ", "too many spaces"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeForSynthesis(tc.in)
			if got != tc.want {
				t.Fatalf("normalizeForSynthesis(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
