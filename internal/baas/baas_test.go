package baas

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrUnavailable, true},
		{"wrapped sentinel", fmt.Errorf("get document: %w", ErrUnavailable), true},
		{"wrapped cause", Unavailable(errors.New("dial tcp: connection refused")), true},
		{"offline message", errors.New("Failed to get document because the client is offline."), true},
		{"other code", &Error{Code: "permission-denied", Message: "nope"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnavailable(tt.err); got != tt.want {
				t.Errorf("IsUnavailable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := Unavailable(errors.New("timeout"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected %v to match ErrUnavailable", err)
	}
	if errors.Is(&Error{Code: "internal"}, ErrUnavailable) {
		t.Fatal("different codes must not match")
	}
}
