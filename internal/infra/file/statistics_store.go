package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"quiz-trainer/internal/domain"
)

// StatisticsStore keeps the username -> statistics mapping in a YAML file.
type StatisticsStore struct {
	path string
	mu   sync.Mutex
}

func NewStatisticsStore(path string) *StatisticsStore {
	return &StatisticsStore{path: path}
}

// LoadStatistics returns an empty mapping when the file does not exist.
func (s *StatisticsStore) LoadStatistics(_ context.Context) (map[string]domain.UserStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]domain.UserStatistics)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return stats, nil
}

func (s *StatisticsStore) SaveStatistics(_ context.Context, stats map[string]domain.UserStatistics) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}
