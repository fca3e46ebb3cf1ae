package memory

import (
	"context"
	"testing"
	"time"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	store := &countingStore{QuestionStore: NewStaticQuestionStore(sampleRecords())}
	repo := NewQuestionRepository(store, time.Minute)

	first, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected store loaded once, got %d", store.loads)
	}

	second, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected cache hit, store loads %d", store.loads)
	}
	if first != second {
		t.Fatalf("expected the cached bank to be shared")
	}
}

func TestQuestionRepositoryReloadsAfterExpiry(t *testing.T) {
	store := &countingStore{QuestionStore: NewStaticQuestionStore(sampleRecords())}
	repo := NewQuestionRepository(store, time.Minute)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank after expiry: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected reload after ttl, loads %d", store.loads)
	}
}

func TestQuestionRepositorySaveWritesThrough(t *testing.T) {
	store := NewStaticQuestionStore(sampleRecords())
	repo := NewQuestionRepository(store, time.Minute)
	ctx := context.Background()

	bank, err := repo.GetBank(ctx)
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	q, _ := bank.Fetch("q1")
	q.CheckAnswer("4")
	bank.Disable("q2")

	if err := repo.SaveBank(ctx, bank); err != nil {
		t.Fatalf("save bank: %v", err)
	}
	records, _ := store.LoadQuestions(ctx)
	if records[0].TimesShown != 1 || records[0].TimesCorrect != 1 {
		t.Fatalf("expected counters persisted, got %+v", records[0])
	}
	if records[1].Enabled {
		t.Fatalf("expected q2 persisted as disabled")
	}
}

func TestQuestionRepositoryRejectsInvalidRecords(t *testing.T) {
	store := NewStaticQuestionStore([]domain.QuestionRecord{{ID: "bad", Prompt: "  ", Answer: "x"}})
	repo := NewQuestionRepository(store, time.Minute)

	if _, err := repo.GetBank(context.Background()); err != domain.ErrEmptyPrompt {
		t.Fatalf("expected empty prompt error, got %v", err)
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
