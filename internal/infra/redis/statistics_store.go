package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-trainer/internal/domain"
)

// StatisticsStore keeps user statistics in one hash:
// HSET stats:users {username} {json statistics}
type StatisticsStore struct {
	client *redis.Client
}

func NewStatisticsStore(client *redis.Client) *StatisticsStore {
	return &StatisticsStore{client: client}
}

const statsKey = "stats:users"

func (s *StatisticsStore) LoadStatistics(ctx context.Context) (map[string]domain.UserStatistics, error) {
	raw, err := s.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	out := make(map[string]domain.UserStatistics, len(raw))
	for user, data := range raw {
		var st domain.UserStatistics
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return nil, fmt.Errorf("decode statistics for %s: %w", user, err)
		}
		out[user] = st
	}
	return out, nil
}

// SaveStatistics replaces the whole mapping atomically.
func (s *StatisticsStore) SaveStatistics(ctx context.Context, stats map[string]domain.UserStatistics) error {
	fields := make(map[string]interface{}, len(stats))
	for user, st := range stats {
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode statistics for %s: %w", user, err)
		}
		fields[user] = string(data)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, statsKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, statsKey, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}
	return nil
}
