package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerifyAccess(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 24*time.Hour, NewMemoryStore())

	pair, err := m.Issue(context.Background(), "user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}

	claims, err := m.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := m.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
}

func TestVerifyAccessRejectsExpired(t *testing.T) {
	m := NewManager(testSecret, time.Minute, time.Hour, NewMemoryStore())
	start := time.Now()
	m.now = func() time.Time { return start }

	pair, err := m.Issue(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	m.now = func() time.Time { return start.Add(2 * time.Minute) }

	if _, err := m.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyAccessRejectsForeignSignature(t *testing.T) {
	issuer := NewManager(testSecret, time.Hour, time.Hour, NewMemoryStore())
	other := NewManager("ffffffffffffffffffffffffffffffff", time.Hour, time.Hour, NewMemoryStore())

	pair, err := issuer.Issue(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := other.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testSecret, time.Hour, 24*time.Hour, NewMemoryStore())

	pair, err := m.Issue(ctx, "user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	next, userID, err := m.Rotate(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q", userID)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("expected a fresh refresh token")
	}

	if _, _, err := m.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reused refresh token should fail, got %v", err)
	}
	if _, _, err := m.Rotate(ctx, next.RefreshToken); err != nil {
		t.Fatalf("new refresh token should work, got %v", err)
	}
}

func TestRevokeAllEndsSessions(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testSecret, time.Hour, 24*time.Hour, NewMemoryStore())

	pair, _ := m.Issue(ctx, "user-1", "")
	if err := m.RevokeAll(ctx, "user-1"); err != nil {
		t.Fatalf("RevokeAll() error = %v", err)
	}
	if _, _, err := m.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}
