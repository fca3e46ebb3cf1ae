package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quiz-trainer/internal/domain"
)

// ProfileStore persists user profiles. LoadProfile returns
// domain.ErrProfileNotFound for unknown usernames.
type ProfileStore interface {
	LoadProfile(ctx context.Context, username string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, profile *domain.Profile) error
}

// ProfileService covers registration, login and progress of users.
type ProfileService struct {
	profiles ProfileStore
	stats    StatisticsStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, stats StatisticsStore, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{profiles: profiles, stats: stats, logger: logger, now: time.Now}
}

func (s *ProfileService) Register(ctx context.Context, username, email, password string, age int) (*domain.Profile, error) {
	profile, err := domain.NewProfile(username, email, password, age, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.LoadProfile(ctx, profile.Username); err == nil {
		return nil, domain.ErrProfileExists
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("profile registered", "user", profile.Username)
	return profile, nil
}

// Login checks credentials. Unknown users and wrong passwords both yield
// domain.ErrInvalidCredentials.
func (s *ProfileService) Login(ctx context.Context, username, password string) (*domain.Profile, error) {
	profile, err := s.profiles.LoadProfile(ctx, username)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !profile.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, username string, update domain.ProfileUpdate) (*domain.Profile, error) {
	profile, err := s.profiles.LoadProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := profile.Apply(update, s.now()); err != nil {
		return nil, err
	}
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	profile, err := s.profiles.LoadProfile(ctx, username)
	if err != nil {
		return err
	}
	if err := profile.ChangePassword(oldPassword, newPassword, s.now()); err != nil {
		return err
	}
	return s.profiles.SaveProfile(ctx, profile)
}

// ResetProgress clears the user's score history.
func (s *ProfileService) ResetProgress(ctx context.Context, username string) error {
	all, err := s.stats.LoadStatistics(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[username]; !ok {
		return nil
	}
	delete(all, username)
	if err := s.stats.SaveStatistics(ctx, all); err != nil {
		return err
	}
	s.logger.Info("progress reset", "user", username)
	return nil
}

// Statistics returns the user's aggregated results; zero values for users
// without history.
func (s *ProfileService) Statistics(ctx context.Context, username string) (domain.UserStatistics, error) {
	all, err := s.stats.LoadStatistics(ctx)
	if err != nil {
		return domain.UserStatistics{}, err
	}
	return all[username], nil
}
