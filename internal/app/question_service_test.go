package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/memory"
)

func newQuestionService() (*app.QuestionService, *memory.StaticQuestionStore) {
	store := memory.NewStaticQuestionStore(sampleRecords())
	return app.NewQuestionService(memory.NewQuestionRepository(store, 0), nil), store
}

func TestQuestionServiceAddAndList(t *testing.T) {
	ctx := context.Background()
	svc, store := newQuestionService()

	q, err := svc.Add(ctx, "", "Largest ocean?", "Pacific", nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if q.ID() == "" || !q.Enabled() {
		t.Fatalf("expected generated id on enabled question, got %+v", q.Record())
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 4 || list[3].ID() != q.ID() {
		t.Fatalf("expected new question appended, got %d questions", len(list))
	}
	saved, _ := store.LoadQuestions(ctx)
	if len(saved) != 4 {
		t.Fatalf("expected write-through to store, got %d records", len(saved))
	}
}

func TestQuestionServiceAddDuplicateKeepsSlot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionService()

	if _, err := svc.Add(ctx, "q1", "What is 3 + 3?", "6", nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 3 || list[0].ID() != "q1" || list[0].Prompt() != "What is 3 + 3?" {
		t.Fatalf("expected q1 replaced in place, got %s %q", list[0].ID(), list[0].Prompt())
	}
}

func TestQuestionServiceRejectsEmptyPrompt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuestionService()

	if _, err := svc.Add(ctx, "x", "   ", "a", nil); !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if err := svc.UpdatePrompt(ctx, "q1", ""); !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt on update, got %v", err)
	}
	if err := svc.UpdatePrompt(ctx, "missing", "text"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestQuestionServiceToggleAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, store := newQuestionService()

	if err := svc.Enable(ctx, "q2"); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if err := svc.Disable(ctx, "q1"); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if err := svc.Disable(ctx, "missing"); err != nil {
		t.Fatalf("disable of unknown id should be a no-op, got %v", err)
	}
	if err := svc.Remove(ctx, "q3"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	saved, _ := store.LoadQuestions(ctx)
	if len(saved) != 2 {
		t.Fatalf("expected 2 records, got %d", len(saved))
	}
	if saved[0].ID != "q1" || saved[0].Enabled || saved[1].ID != "q2" || !saved[1].Enabled {
		t.Fatalf("unexpected records %+v", saved)
	}

	stats, err := svc.Statistics(ctx)
	if err != nil || len(stats) != 2 || stats[0].ID != "q1" {
		t.Fatalf("unexpected statistics %+v err=%v", stats, err)
	}
}
