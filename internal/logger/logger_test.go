package logger

import "testing"

func TestNew(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		json  bool
		debug bool
	}{{false, false}, {true, false}, {false, true}, {true, true}} {
		l, err := New(tt.json, tt.debug)
		if err != nil {
			t.Fatalf("json=%v debug=%v: unexpected error: %v", tt.json, tt.debug, err)
		}
		if got := l.Core().Enabled(-1); got != tt.debug {
			t.Fatalf("json=%v debug=%v: expected debug enabled %v, got %v", tt.json, tt.debug, tt.debug, got)
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "Senior Frontend Developer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "React",
			limit:  10,
			expect: "React",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "Senior Frontend Developer",
			limit:  6,
			expect: "Senior...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
		{
			name:   "counts runes not bytes",
			input:  "₹4.5L - ₹6.0L",
			limit:  5,
			expect: "₹4.5L...",
		},
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
