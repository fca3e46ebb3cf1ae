package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/file"
	"quiz-trainer/internal/infra/memory"
)

func newProfileService(t *testing.T) (*app.ProfileService, *memory.StatisticsStore) {
	t.Helper()
	stats := memory.NewStatisticsStore()
	return app.NewProfileService(file.NewProfileStore(t.TempDir()), stats, nil), stats
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProfileService(t)

	profile, err := svc.Register(ctx, "ana", " Ana@Example.COM ", "correct-horse", 30)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if profile.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
	if profile.PasswordHash == "correct-horse" {
		t.Fatalf("password must not be stored in clear text")
	}

	if _, err := svc.Register(ctx, "ana", "other@example.com", "correct-horse", 0); !errors.Is(err, domain.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "correct-horse"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "wrong-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProfileService(t)

	cases := []struct {
		name, user, email, password string
		age                         int
		want                        error
	}{
		{"blank user", " ", "a@b.io", "longenough", 0, domain.ErrInvalidUsername},
		{"bad email", "ana", "not-an-email", "longenough", 0, domain.ErrInvalidEmail},
		{"bad age", "ana", "a@b.io", "longenough", 200, domain.ErrInvalidAge},
		{"short password", "ana", "a@b.io", "short", 0, domain.ErrWeakPassword},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.user, tc.email, tc.password, tc.age); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestChangePasswordAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProfileService(t)
	if _, err := svc.Register(ctx, "ana", "ana@example.com", "first-pass", 0); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, "ana", "wrong-pass", "second-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "ana", "first-pass", "second-pass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.Login(ctx, "ana", "second-pass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	badAge := -1
	email := "new@example.com"
	if _, err := svc.UpdateProfile(ctx, "ana", domain.ProfileUpdate{Email: &email, Age: &badAge}); !errors.Is(err, domain.ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}
	profile, err := svc.Login(ctx, "ana", "second-pass")
	if err != nil || profile.Email != "ana@example.com" {
		t.Fatalf("rejected update must not change the profile, got %+v err=%v", profile, err)
	}

	age := 41
	profile, err = svc.UpdateProfile(ctx, "ana", domain.ProfileUpdate{Email: &email, Age: &age})
	if err != nil || profile.Email != email || profile.Age != 41 {
		t.Fatalf("unexpected update result %+v err=%v", profile, err)
	}
	if _, err := svc.UpdateProfile(ctx, "bob", domain.ProfileUpdate{}); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestStatisticsAndReset(t *testing.T) {
	ctx := context.Background()
	svc, stats := newProfileService(t)

	empty, err := svc.Statistics(ctx, "ana")
	if err != nil || empty.TotalAnswered != 0 || empty.Percentage() != 0 {
		t.Fatalf("expected empty statistics, got %+v err=%v", empty, err)
	}

	var s domain.UserStatistics
	s.Record(domain.ScoreEntry{Mode: "quiz", Correct: 3, Presented: 4, Answered: 4})
	if err := stats.SaveStatistics(ctx, map[string]domain.UserStatistics{"ana": s, "bob": s}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := svc.Statistics(ctx, "ana")
	if got.Percentage() != 75 {
		t.Fatalf("expected 75%%, got %v", got.Percentage())
	}

	if err := svc.ResetProgress(ctx, "ana"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	all, _ := stats.LoadStatistics(ctx)
	if _, ok := all["ana"]; ok {
		t.Fatalf("expected ana's history removed")
	}
	if all["bob"].TotalAnswered != 4 {
		t.Fatalf("other users must be untouched, got %+v", all["bob"])
	}
}
