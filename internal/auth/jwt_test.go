package auth

import (
	"testing"
	"time"

	"rabaislocal/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		JWTIssuer:       "rabaislocal",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager init: %v", err)
	}
	return m
}

func TestIssueAndVerify_Access(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "user-1", "consumer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "consumer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerify_RejectsExpiredAccessToken(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "user-1", "merchant")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Past the TTL plus the 30s leeway.
	_, err = m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(16*time.Minute))
	if err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerify_RejectsRefreshAsAccess(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "user-1", "merchant")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.Verify(pair.RefreshToken, TokenTypeAccess, now.Add(time.Minute))
	if err == nil {
		t.Fatalf("expected token_type mismatch error")
	}
}
