package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	store := &countingStore{QuestionStore: memory.NewStaticQuestionStore(sampleRecords())}
	repo := NewQuestionRepository(client, store, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected store called once, got %d", store.loads)
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", bank.Len())
	}
	if !mr.Exists("bank:questions") || !mr.Exists("bank:order") {
		t.Fatalf("expected bank keys in redis")
	}

	// Second call should hit cache, store not incremented.
	cached, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected cache hit, store loads=%d", store.loads)
	}
	ids := []string{}
	for _, q := range cached.Questions() {
		ids = append(ids, q.ID())
	}
	if len(ids) != 2 || ids[0] != "q1" || ids[1] != "q2" {
		t.Fatalf("expected insertion order preserved, got %v", ids)
	}
	q1, _ := cached.Fetch("q1")
	if got := q1.Options(); len(got) != 3 || got[1] != "4" {
		t.Fatalf("expected options from cache, got %v", got)
	}
}

func TestQuestionRepositorySaveRefreshesCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := memory.NewStaticQuestionStore(sampleRecords())
	repo := NewQuestionRepository(newClient(mr), store, time.Minute)

	bank, err := repo.GetBank(ctx)
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	q, _ := bank.Fetch("q2")
	q.CheckAnswer("paris")
	if err := repo.SaveBank(ctx, bank); err != nil {
		t.Fatalf("save bank: %v", err)
	}

	reloaded, err := repo.GetBank(ctx)
	if err != nil {
		t.Fatalf("reload bank: %v", err)
	}
	q, _ = reloaded.Fetch("q2")
	if q.TimesShown() != 1 || q.TimesCorrect() != 1 {
		t.Fatalf("expected refreshed counters, got shown=%d correct=%d", q.TimesShown(), q.TimesCorrect())
	}
	records, _ := store.LoadQuestions(ctx)
	if records[1].TimesCorrect != 1 {
		t.Fatalf("expected store written through, got %+v", records[1])
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{QuestionStore: memory.NewStaticQuestionStore(sampleRecords())}
	repo := NewQuestionRepository(newClient(mr), store, time.Minute)

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank after expiry: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected reload after expiry, loads=%d", store.loads)
	}
}

type countingStore struct {
	app.QuestionStore
	loads int
}

func (s *countingStore) LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	s.loads++
	return s.QuestionStore.LoadQuestions(ctx)
}

func sampleRecords() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{ID: "q1", Prompt: "What is 2 + 2?", Answer: "4", Options: []string{"3", "4", "5"}, Enabled: true},
		{ID: "q2", Prompt: "Capital of France?", Answer: "Paris", Enabled: true},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
