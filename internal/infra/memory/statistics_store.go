package memory

import (
	"context"
	"sync"

	"quiz-trainer/internal/domain"
)

// StatisticsStore keeps user statistics in process memory.
type StatisticsStore struct {
	mu    sync.Mutex
	stats map[string]domain.UserStatistics
}

func NewStatisticsStore() *StatisticsStore {
	return &StatisticsStore{stats: make(map[string]domain.UserStatistics)}
}

func (s *StatisticsStore) LoadStatistics(_ context.Context) (map[string]domain.UserStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStats(s.stats), nil
}

func (s *StatisticsStore) SaveStatistics(_ context.Context, stats map[string]domain.UserStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = cloneStats(stats)
	return nil
}

func cloneStats(in map[string]domain.UserStatistics) map[string]domain.UserStatistics {
	out := make(map[string]domain.UserStatistics, len(in))
	for user, st := range in {
		st.History = append([]domain.ScoreEntry(nil), st.History...)
		out[user] = st
	}
	return out
}
