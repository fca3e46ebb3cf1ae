package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

// QuestionRepository caches the question bank in Redis and falls back to the
// store on a cache miss.
// Records are stored as: HSET bank:questions {questionID} {json record}
// Order is stored as:    RPUSH bank:order {questionID...}
type QuestionRepository struct {
	client *redis.Client
	store  app.QuestionStore
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, store app.QuestionStore, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const (
	questionsKey = "bank:questions"
	orderKey     = "bank:order"
)

// GetBank returns a bank rebuilt from the cache. Each call yields a fresh
// bank value, so callers persist through SaveBank.
func (r *QuestionRepository) GetBank(ctx context.Context) (*domain.QuestionBank, error) {
	if bank, ok := r.fromCache(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.fromCache(ctx); ok {
			return bank.Records(), nil
		}

		records, err := r.store.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := domain.BankFromRecords(records); err != nil {
			return nil, err
		}
		if err := r.fill(ctx, records); err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	// Shared singleflight results are records; every caller gets its own bank.
	return domain.BankFromRecords(result.([]domain.QuestionRecord))
}

// SaveBank writes through to the store and refreshes the cache.
func (r *QuestionRepository) SaveBank(ctx context.Context, bank *domain.QuestionBank) error {
	records := bank.Records()
	if err := r.store.SaveQuestions(ctx, records); err != nil {
		return err
	}
	return r.fill(ctx, records)
}

func (r *QuestionRepository) fromCache(ctx context.Context) (*domain.QuestionBank, bool) {
	order, err := r.client.LRange(ctx, orderKey, 0, -1).Result()
	if err != nil || len(order) == 0 {
		return nil, false
	}
	raw, err := r.client.HGetAll(ctx, questionsKey).Result()
	if err != nil {
		return nil, false
	}

	records := make([]domain.QuestionRecord, 0, len(order))
	for _, id := range order {
		data, ok := raw[id]
		if !ok {
			return nil, false
		}
		var rec domain.QuestionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, false
		}
		records = append(records, rec)
	}
	bank, err := domain.BankFromRecords(records)
	if err != nil {
		return nil, false
	}
	return bank, true
}

func (r *QuestionRepository) fill(ctx context.Context, records []domain.QuestionRecord) error {
	ids := make([]interface{}, 0, len(records))
	fields := make(map[string]interface{}, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", rec.ID, err)
		}
		ids = append(ids, rec.ID)
		fields[rec.ID] = string(data)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, questionsKey, orderKey)
	if len(records) > 0 {
		pipe.RPush(ctx, orderKey, ids...)
		pipe.HSet(ctx, questionsKey, fields)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, orderKey, ttl)
			pipe.Expire(ctx, questionsKey, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache question bank: %w", err)
	}
	return nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
