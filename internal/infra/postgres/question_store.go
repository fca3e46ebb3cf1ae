package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-trainer/internal/domain"
)

// QuestionStore keeps the question bank in the questions table.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt, answer, options, enabled, times_shown, times_correct
		FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var records []domain.QuestionRecord
	for rows.Next() {
		var rec domain.QuestionRecord
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.Answer, &rec.Options,
			&rec.Enabled, &rec.TimesShown, &rec.TimesCorrect); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(rec.Options) == 0 {
			rec.Options = nil
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return records, nil
}

// SaveQuestions replaces the table contents in one transaction.
func (s *QuestionStore) SaveQuestions(ctx context.Context, records []domain.QuestionRecord) error {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, rec := range records {
			options := rec.Options
			if options == nil {
				options = []string{}
			}
			batch.Queue(`
				INSERT INTO questions (id, position, prompt, answer, options, enabled, times_shown, times_correct)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				rec.ID, i, rec.Prompt, rec.Answer, options, rec.Enabled, rec.TimesShown, rec.TimesCorrect)
		}
		results := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}
