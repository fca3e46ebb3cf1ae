package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"quiz-trainer/internal/domain"
)

const (
	optionSeparator = ';'
	optionEscape    = '\\'
)

var questionHeader = []string{"id", "prompt", "answer", "options", "enabled", "times_shown", "times_correct"}

// QuestionStore reads and writes the question bank as a CSV file. Options
// are joined with ';', a literal ';' or '\' inside an option is escaped
// with '\'. Rows carrying only id, prompt, answer and options load
// as enabled with zero counters.
type QuestionStore struct {
	path string
	mu   sync.Mutex
}

func NewQuestionStore(path string) *QuestionStore {
	return &QuestionStore{path: path}
}

// LoadQuestions returns an empty bank when the file does not exist.
func (s *QuestionStore) LoadQuestions(_ context.Context) ([]domain.QuestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []domain.QuestionRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		if line == 1 && len(row) > 0 && row[0] == questionHeader[0] {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *QuestionStore) SaveQuestions(_ context.Context, records []domain.QuestionRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(questionHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Prompt,
			rec.Answer,
			joinOptions(rec.Options),
			strconv.FormatBool(rec.Enabled),
			strconv.Itoa(rec.TimesShown),
			strconv.Itoa(rec.TimesCorrect),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, buf.Bytes())
}

func parseRow(row []string) (domain.QuestionRecord, error) {
	if len(row) < 3 {
		return domain.QuestionRecord{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}
	rec := domain.QuestionRecord{ID: row[0], Prompt: row[1], Answer: row[2], Enabled: true}
	if len(row) > 3 && row[3] != "" {
		rec.Options = splitOptions(row[3])
	}
	if len(row) > 4 && row[4] != "" {
		enabled, err := strconv.ParseBool(row[4])
		if err != nil {
			return rec, fmt.Errorf("enabled: %w", err)
		}
		rec.Enabled = enabled
	}
	var err error
	if len(row) > 5 && row[5] != "" {
		if rec.TimesShown, err = strconv.Atoi(row[5]); err != nil {
			return rec, fmt.Errorf("times_shown: %w", err)
		}
	}
	if len(row) > 6 && row[6] != "" {
		if rec.TimesCorrect, err = strconv.Atoi(row[6]); err != nil {
			return rec, fmt.Errorf("times_correct: %w", err)
		}
	}
	return rec, nil
}

func joinOptions(options []string) string {
	var b strings.Builder
	for i, opt := range options {
		if i > 0 {
			b.WriteRune(optionSeparator)
		}
		for _, r := range opt {
			if r == optionSeparator || r == optionEscape {
				b.WriteRune(optionEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitOptions(raw string) []string {
	var (
		out     []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == optionEscape:
			escaped = true
		case r == optionSeparator:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}
