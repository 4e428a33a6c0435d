package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Email(tt.input); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"alice", "alice"},
		{"  Alice Smith  ", "Alice Smith"},
		{"UPPER", "UPPER"}, // case preserved
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Username(tt.input); got != tt.want {
			t.Errorf("Username(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title("  Board notes  "); got != "Board notes" {
		t.Errorf("Title() = %q, want %q", got, "Board notes")
	}
}
