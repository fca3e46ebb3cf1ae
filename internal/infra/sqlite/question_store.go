package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"quiz-trainer/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    prompt TEXT NOT NULL,
    answer TEXT NOT NULL,
    options TEXT NOT NULL DEFAULT '[]',
    enabled INTEGER NOT NULL DEFAULT 1,
    times_shown INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0
);
`

// QuestionStore keeps the question bank in a local SQLite file.
type QuestionStore struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*QuestionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &QuestionStore{db: db}, nil
}

func (s *QuestionStore) Close() error {
	return s.db.Close()
}

func (s *QuestionStore) LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, answer, options, enabled, times_shown, times_correct
		FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var records []domain.QuestionRecord
	for rows.Next() {
		var (
			rec     domain.QuestionRecord
			options string
		)
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.Answer, &options,
			&rec.Enabled, &rec.TimesShown, &rec.TimesCorrect); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
			return nil, fmt.Errorf("decode options of %s: %w", rec.ID, err)
		}
		if len(rec.Options) == 0 {
			rec.Options = nil
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveQuestions replaces the table contents in one transaction.
func (s *QuestionStore) SaveQuestions(ctx context.Context, records []domain.QuestionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions"); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (id, position, prompt, answer, options, enabled, times_shown, times_correct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		options := rec.Options
		if options == nil {
			options = []string{}
		}
		encoded, err := json.Marshal(options)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, i, rec.Prompt, rec.Answer, string(encoded),
			rec.Enabled, rec.TimesShown, rec.TimesCorrect); err != nil {
			return fmt.Errorf("insert question %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}
