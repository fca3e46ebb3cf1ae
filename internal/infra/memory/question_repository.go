package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

const bankKey = "bank"

// QuestionRepository caches the question bank with a TTL to avoid repeated
// store reads. The cached bank is shared, so counter updates made during
// sessions are visible to every caller until it expires.
type QuestionRepository struct {
	store app.QuestionStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu     sync.RWMutex
	cached *cachedBank
}

type cachedBank struct {
	bank      *domain.QuestionBank
	expiresAt time.Time
}

// NewQuestionRepository wraps store. A non-positive ttl keeps the bank until
// the next SaveBank.
func NewQuestionRepository(store app.QuestionStore, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetBank(ctx context.Context) (*domain.QuestionBank, error) {
	if bank, ok := r.fresh(r.clock()); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		now := r.clock()
		if bank, ok := r.fresh(now); ok {
			return bank, nil
		}

		records, err := r.store.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		bank, err := domain.BankFromRecords(records)
		if err != nil {
			return nil, err
		}
		r.put(bank, now)
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.QuestionBank), nil
}

// SaveBank writes through to the store and makes bank the cached value.
func (r *QuestionRepository) SaveBank(ctx context.Context, bank *domain.QuestionBank) error {
	if err := r.store.SaveQuestions(ctx, bank.Records()); err != nil {
		return err
	}
	r.put(bank, r.clock())
	return nil
}

func (r *QuestionRepository) fresh(now time.Time) (*domain.QuestionBank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil {
		return nil, false
	}
	if r.ttl > 0 && !r.cached.expiresAt.After(now) {
		return nil, false
	}
	return r.cached.bank, true
}

func (r *QuestionRepository) put(bank *domain.QuestionBank, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = &cachedBank{bank: bank, expiresAt: now.Add(r.ttlWithJitter())}
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionStore keeps records in memory (useful for tests/demos).
type StaticQuestionStore struct {
	mu      sync.Mutex
	records []domain.QuestionRecord
}

func NewStaticQuestionStore(records []domain.QuestionRecord) *StaticQuestionStore {
	return &StaticQuestionStore{records: cloneRecords(records)}
}

func (s *StaticQuestionStore) LoadQuestions(_ context.Context) ([]domain.QuestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records), nil
}

func (s *StaticQuestionStore) SaveQuestions(_ context.Context, records []domain.QuestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cloneRecords(records)
	return nil
}

func cloneRecords(records []domain.QuestionRecord) []domain.QuestionRecord {
	out := make([]domain.QuestionRecord, len(records))
	for i, rec := range records {
		rec.Options = append([]string(nil), rec.Options...)
		out[i] = rec
	}
	return out
}
