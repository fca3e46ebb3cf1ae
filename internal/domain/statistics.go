package domain

import "time"

// ScoreEntry is one finished session in a user's history.
type ScoreEntry struct {
	Mode      string    `json:"mode" yaml:"mode"`
	Correct   int       `json:"correct" yaml:"correct"`
	Presented int       `json:"presented" yaml:"presented"`
	Answered  int       `json:"answered" yaml:"answered"`
	TakenAt   time.Time `json:"takenAt" yaml:"taken_at"`
}

// UserStatistics aggregates a user's results across sessions.
type UserStatistics struct {
	TotalAnswered int          `json:"totalAnswered" yaml:"total_answered"`
	TotalCorrect  int          `json:"totalCorrect" yaml:"total_correct"`
	History       []ScoreEntry `json:"history,omitempty" yaml:"history,omitempty"`
}

func (s *UserStatistics) Record(entry ScoreEntry) {
	s.TotalAnswered += entry.Answered
	s.TotalCorrect += entry.Correct
	s.History = append(s.History, entry)
}

// Percentage of correct answers, 0 when nothing was answered.
func (s UserStatistics) Percentage() float64 {
	if s.TotalAnswered == 0 {
		return 0
	}
	return float64(s.TotalCorrect) * 100 / float64(s.TotalAnswered)
}
