package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllow_ValidatesInputs(t *testing.T) {
	l := NewLimiter(nil)

	if _, err := l.Allow(context.Background(), "u1", "claim", 1, time.Minute); err == nil {
		t.Fatalf("expected error with nil redis client")
	}
}

func TestAllowScript_Initialized(t *testing.T) {
	// Compile-time smoke test: the Lua script should be initialized.
	if allowScript == nil {
		t.Fatalf("expected allow script to be initialized")
	}
}
