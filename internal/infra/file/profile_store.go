package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quiz-trainer/internal/domain"
)

// ProfileStore keeps one YAML document per user in a directory.
type ProfileStore struct {
	dir string
}

func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{dir: dir}
}

func (s *ProfileStore) LoadProfile(_ context.Context, username string) (*domain.Profile, error) {
	path, err := s.path(username)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	var profile domain.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", username, err)
	}
	return &profile, nil
}

func (s *ProfileStore) SaveProfile(_ context.Context, profile *domain.Profile) error {
	path, err := s.path(profile.Username)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// path rejects usernames that would escape the profile directory.
func (s *ProfileStore) path(username string) (string, error) {
	if username == "" || strings.ContainsAny(username, `/\`) || username == "." || username == ".." {
		return "", domain.ErrInvalidUsername
	}
	return filepath.Join(s.dir, username+".yaml"), nil
}
