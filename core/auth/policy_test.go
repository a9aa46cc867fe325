package auth

import (
	"strings"
	"testing"
)

func TestPolicyCheck(t *testing.T) {
	p := Policy{MinLen: 5, MaxLen: 64, Alphanumeric: true}

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"minimum length", "abcde", true},
		{"letters and digits", "secret42", true},
		{"too short", "abcd", false},
		{"too long", strings.Repeat("a", 65), false},
		{"maximum length", strings.Repeat("a", 64), true},
		{"space", "pass word", false},
		{"punctuation", "secret!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.password)
			if tt.ok && err != nil {
				t.Fatalf("expected %q to pass, got %v", tt.password, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected %q to be rejected", tt.password)
			}
		})
	}
}

func TestPolicyCheckWithoutCharacterRule(t *testing.T) {
	p := Policy{MinLen: 5, MaxLen: 64}

	if err := p.Check("secret! with spaces"); err != nil {
		t.Fatalf("punctuation rejected with the rule disabled: %v", err)
	}
	if err := p.Check("abc"); err == nil {
		t.Fatal("length bounds ignored with the rule disabled")
	}
}
