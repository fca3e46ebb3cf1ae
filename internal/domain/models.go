package domain

import "strings"

// Question is a single quiz item. Counters are only changed through CheckAnswer
// so that times_correct never exceeds times_shown.
type Question struct {
	id      string
	prompt  string
	answer  string
	options []string
	enabled bool

	timesShown   int
	timesCorrect int
}

// QuestionRecord is the storage shape of a Question.
type QuestionRecord struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Answer       string   `json:"answer" yaml:"answer"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	TimesShown   int      `json:"timesShown" yaml:"times_shown"`
	TimesCorrect int      `json:"timesCorrect" yaml:"times_correct"`
}

// QuestionStat is a read-only view of a question's counters.
type QuestionStat struct {
	ID           string `json:"id"`
	TimesShown   int    `json:"timesShown"`
	TimesCorrect int    `json:"timesCorrect"`
}

// NewQuestion creates an enabled question with zeroed counters.
// Options may be nil for free-text questions.
func NewQuestion(id, prompt, answer string, options []string) (*Question, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	return &Question{
		id:      id,
		prompt:  prompt,
		answer:  answer,
		options: cloneOptions(options),
		enabled: true,
	}, nil
}

// FromRecord rebuilds a question loaded from storage.
func FromRecord(rec QuestionRecord) (*Question, error) {
	q, err := NewQuestion(rec.ID, rec.Prompt, rec.Answer, rec.Options)
	if err != nil {
		return nil, err
	}
	if rec.TimesShown < 0 || rec.TimesCorrect < 0 || rec.TimesCorrect > rec.TimesShown {
		return nil, ErrInvalidCounters
	}
	q.enabled = rec.Enabled
	q.timesShown = rec.TimesShown
	q.timesCorrect = rec.TimesCorrect
	return q, nil
}

// Record returns a detached copy suitable for persistence.
func (q *Question) Record() QuestionRecord {
	return QuestionRecord{
		ID:           q.id,
		Prompt:       q.prompt,
		Answer:       q.answer,
		Options:      cloneOptions(q.options),
		Enabled:      q.enabled,
		TimesShown:   q.timesShown,
		TimesCorrect: q.timesCorrect,
	}
}

func (q *Question) ID() string { return q.id }

func (q *Question) Prompt() string { return q.prompt }

// SetPrompt replaces the prompt text. Blank text is rejected and the old
// prompt is kept.
func (q *Question) SetPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	q.prompt = prompt
	return nil
}

func (q *Question) CorrectAnswer() string { return q.answer }

// Options returns a copy of the multiple-choice options, nil for free-text.
func (q *Question) Options() []string { return cloneOptions(q.options) }

func (q *Question) IsMultipleChoice() bool { return len(q.options) > 0 }

func (q *Question) Enabled() bool { return q.enabled }

func (q *Question) Enable() { q.enabled = true }

func (q *Question) Disable() { q.enabled = false }

func (q *Question) TimesShown() int { return q.timesShown }

func (q *Question) TimesCorrect() int { return q.timesCorrect }

// Accuracy is times_correct/times_shown. Unseen questions report 1.0.
func (q *Question) Accuracy() float64 {
	if q.timesShown == 0 {
		return 1.0
	}
	return float64(q.timesCorrect) / float64(q.timesShown)
}

// CheckAnswer counts an exposure and reports whether userAnswer matches the
// correct answer ignoring case. Whitespace is significant.
func (q *Question) CheckAnswer(userAnswer string) bool {
	q.timesShown++
	if strings.ToLower(userAnswer) == strings.ToLower(q.answer) {
		q.timesCorrect++
		return true
	}
	return false
}

// Stat snapshots the counters.
func (q *Question) Stat() QuestionStat {
	return QuestionStat{ID: q.id, TimesShown: q.timesShown, TimesCorrect: q.timesCorrect}
}

func cloneOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, len(options))
	copy(out, options)
	return out
}
