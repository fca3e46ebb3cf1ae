package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	raw, err := tokens.Issue("ana")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user, err := tokens.Verify(raw)
	if err != nil || user != "ana" {
		t.Fatalf("expected ana, got %q err=%v", user, err)
	}
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	raw, _ := NewTokens("other-secret", time.Hour).Issue("ana")
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	raw, _ = tokens.Issue("ana")
	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := tokens.Verify("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
