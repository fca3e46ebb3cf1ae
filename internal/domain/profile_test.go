package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewProfileHashesPassword(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p, err := NewProfile(" ana ", "Ana@Example.com", "long-password", 0, now)
	if err != nil {
		t.Fatalf("new profile: %v", err)
	}
	if p.Username != "ana" || p.Email != "ana@example.com" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if !p.CheckPassword("long-password") || p.CheckPassword("Long-password") {
		t.Fatalf("password check mismatch")
	}
	if !p.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, p.CreatedAt)
	}
}

func TestChangePasswordKeepsHashOnError(t *testing.T) {
	now := time.Now()
	p, _ := NewProfile("ana", "ana@example.com", "long-password", 20, now)
	hash := p.PasswordHash

	if err := p.ChangePassword("long-password", "short", now); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := p.ChangePassword("nope-nope", "another-password", now); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if p.PasswordHash != hash {
		t.Fatalf("failed changes must keep the hash")
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	now := time.Now()
	p, _ := NewProfile("ana", "ana@example.com", "long-password", 20, now)

	email := "new@example.com"
	age := 500
	if err := p.Apply(ProfileUpdate{Email: &email, Age: &age}, now); !errors.Is(err, ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}
	if p.Email != "ana@example.com" || p.Age != 20 {
		t.Fatalf("profile changed despite error: %+v", p)
	}

	age = 21
	later := now.Add(time.Hour)
	if err := p.Apply(ProfileUpdate{Email: &email, Age: &age, Preferences: map[string]string{"mode": "practice"}}, later); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Email != email || p.Age != 21 || p.Preferences["mode"] != "practice" || !p.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUserStatisticsPercentage(t *testing.T) {
	var s UserStatistics
	if s.Percentage() != 0 {
		t.Fatalf("expected 0 for empty statistics")
	}
	s.Record(ScoreEntry{Correct: 1, Presented: 2, Answered: 2})
	s.Record(ScoreEntry{Correct: 2, Presented: 2, Answered: 2})
	if s.TotalAnswered != 4 || s.TotalCorrect != 3 || len(s.History) != 2 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.Percentage() != 75 {
		t.Fatalf("expected 75, got %v", s.Percentage())
	}
}
