package sessionid

import (
	"regexp"
	"testing"
)

func TestNewFormat(t *testing.T) {
	re := regexp.MustCompile(`^[a-z]{3}-[a-z]{3}-[a-z]{3}$`)
	for i := 0; i < 1000; i++ {
		id := New()
		if !re.MatchString(id) {
			t.Fatalf("New() = %q, want xxx-xxx-xxx of lowercase letters", id)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abc-def-ghi", true},
		{"zzz-zzz-zzz", true},
		{"", false},
		{"abc-def", false},
		{"abc-def-ghi-jkl", false},
		{"ABC-DEF-GHI", false},
		{"ab1-def-ghi", false},
		{"abcd-ef-ghi", false},
		{"abc_def_ghi", false},
		{" abc-def-ghi", false},
		{"abc-def-ghi ", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
