package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"quiz-trainer/internal/domain"
)

// QuestionService manages the bank: adding, removing and toggling questions.
// Every mutation is written back through the repository.
type QuestionService struct {
	bank   QuestionRepository
	logger *slog.Logger
}

func NewQuestionService(bank QuestionRepository, logger *slog.Logger) *QuestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionService{bank: bank, logger: logger}
}

func (s *QuestionService) List(ctx context.Context) ([]*domain.Question, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}
	return bank.Questions(), nil
}

// Add stores a new question. An empty id gets a generated UUID; an existing
// id is overwritten.
func (s *QuestionService) Add(ctx context.Context, id, prompt, answer string, options []string) (*domain.Question, error) {
	if id == "" {
		id = uuid.NewString()
	}
	q, err := domain.NewQuestion(id, prompt, answer, options)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, func(bank *domain.QuestionBank) error {
		if _, exists := bank.Fetch(id); exists {
			s.logger.Warn("replacing question with duplicate id", "id", id)
		}
		bank.Add(q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// UpdatePrompt changes a question's prompt text.
func (s *QuestionService) UpdatePrompt(ctx context.Context, id, prompt string) error {
	return s.mutate(ctx, func(bank *domain.QuestionBank) error {
		q, ok := bank.Fetch(id)
		if !ok {
			return domain.ErrQuestionNotFound
		}
		return q.SetPrompt(prompt)
	})
}

func (s *QuestionService) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(bank *domain.QuestionBank) error {
		bank.Remove(id)
		return nil
	})
}

func (s *QuestionService) Enable(ctx context.Context, id string) error {
	return s.mutate(ctx, func(bank *domain.QuestionBank) error {
		bank.Enable(id)
		return nil
	})
}

func (s *QuestionService) Disable(ctx context.Context, id string) error {
	return s.mutate(ctx, func(bank *domain.QuestionBank) error {
		bank.Disable(id)
		return nil
	})
}

// Statistics snapshots per-question counters in bank order.
func (s *QuestionService) Statistics(ctx context.Context) ([]domain.QuestionStat, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}
	return bank.Statistics(), nil
}

func (s *QuestionService) mutate(ctx context.Context, fn func(*domain.QuestionBank) error) error {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return err
	}
	if err := fn(bank); err != nil {
		return err
	}
	return s.bank.SaveBank(ctx, bank)
}
