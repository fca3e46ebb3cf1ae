package app

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"quiz-trainer/internal/domain"
)

// SessionRepository abstracts where per-user sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(userID string) *Session
	Get(userID string) (*Session, bool)
	Delete(userID string)
}

// QuestionStore persists question records (CSV file, SQLite, Postgres).
type QuestionStore interface {
	LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error)
	SaveQuestions(ctx context.Context, records []domain.QuestionRecord) error
}

// QuestionRepository hands out the question bank, usually through a cache.
type QuestionRepository interface {
	GetBank(ctx context.Context) (*domain.QuestionBank, error)
	SaveBank(ctx context.Context, bank *domain.QuestionBank) error
}

// StatisticsStore persists per-user statistics keyed by username.
type StatisticsStore interface {
	LoadStatistics(ctx context.Context) (map[string]domain.UserStatistics, error)
	SaveStatistics(ctx context.Context, stats map[string]domain.UserStatistics) error
}

// RandSource hands out one generator per session.
type RandSource func() *rand.Rand

// NewRandSource returns a deterministic source for a non-zero seed and a
// time-seeded one otherwise.
func NewRandSource(seed int64) RandSource {
	if seed == 0 {
		return func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	var mu sync.Mutex
	master := rand.New(rand.NewSource(seed))
	return func() *rand.Rand {
		mu.Lock()
		defer mu.Unlock()
		return rand.New(rand.NewSource(master.Int63()))
	}
}

// NewSession is exported for infrastructure layers that create sessions.
func NewSession(rnd *rand.Rand) *Session {
	return newSession(rnd)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(rnd *rand.Rand, now func() time.Time) *Session {
	return newSessionWithClock(rnd, now)
}

// AnswerResult summarizes one evaluated answer.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Score      Score  `json:"score"`
}

// PracticeService runs quiz, practice and test sessions for many users over
// a shared question bank.
type PracticeService struct {
	sessions SessionRepository
	bank     QuestionRepository
	stats    StatisticsStore
	logger   *slog.Logger
	now      func() time.Time

	// mu serializes session access and mutation of shared question counters.
	mu sync.Mutex
}

// NewPracticeService wires the use cases. stats may be nil to skip user
// statistics.
func NewPracticeService(sessions SessionRepository, bank QuestionRepository, stats StatisticsStore, logger *slog.Logger) *PracticeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeService{
		sessions: sessions,
		bank:     bank,
		stats:    stats,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins a new session for userID over the enabled questions of the
// bank, replacing any session the user already had.
func (s *PracticeService) Start(ctx context.Context, userID string, mode Mode, testSize int) (StartInfo, error) {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return StartInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions.GetOrCreate(userID)
	info, err := session.Start(mode, bank.EnabledQuestions(), testSize)
	if err != nil {
		return StartInfo{}, err
	}
	if info.Degraded {
		s.logger.Warn("test size exceeds pool, using whole pool",
			"user", userID, "requested", testSize, "pool", info.PoolSize)
	}
	s.logger.Info("session started", "user", userID, "mode", mode, "size", info.Size)
	return info, nil
}

// Next selects the next question. ErrSessionExhausted ends the session.
func (s *PracticeService) Next(_ context.Context, userID string) (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.SelectNext()
}

// Answer evaluates an answer to a question presented in the user's session.
func (s *PracticeService) Answer(_ context.Context, userID, questionID, answer string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return AnswerResult{}, domain.ErrSessionNotFound
	}
	q, ok := session.Presented(questionID)
	if !ok {
		return AnswerResult{}, ErrQuestionNotPresented
	}
	correct, err := session.Evaluate(q, answer)
	if err != nil {
		return AnswerResult{}, err
	}
	return AnswerResult{QuestionID: questionID, Correct: correct, Score: session.FinalScore()}, nil
}

// Score reports the running score of the user's session.
func (s *PracticeService) Score(_ context.Context, userID string) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return Score{}, domain.ErrSessionNotFound
	}
	return session.FinalScore(), nil
}

// Reset discards the user's session progress without persisting anything.
func (s *PracticeService) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Reset()
	return nil
}

// Finish persists question counters and the user's score history, then
// drops the session.
func (s *PracticeService) Finish(ctx context.Context, userID string) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked(ctx, userID)
}

// finishLocked requires s.mu.
func (s *PracticeService) finishLocked(ctx context.Context, userID string) (Score, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return Score{}, domain.ErrSessionNotFound
	}
	if session.State() == StateNotStarted {
		return Score{}, ErrSessionNotStarted
	}

	score := session.FinalScore()
	answers := session.Answers()
	if err := s.persistCounters(ctx, answers); err != nil {
		s.logger.Error("failed to save question bank", "user", userID, "error", err)
		return score, err
	}
	if s.stats != nil {
		entry := domain.ScoreEntry{
			Mode:      string(session.Mode()),
			Correct:   score.Correct,
			Presented: score.Presented,
			Answered:  len(answers),
			TakenAt:   s.now(),
		}
		if err := s.recordStatistics(ctx, userID, entry); err != nil {
			s.logger.Error("failed to save statistics", "user", userID, "error", err)
			return score, err
		}
	}

	s.logger.Info("session finished", "user", userID, "mode", session.Mode(),
		"score", score.Correct, "presented", score.Presented)
	session.Reset()
	s.sessions.Delete(userID)
	return score, nil
}

// persistCounters saves the bank. A repository that rebuilt the bank since
// the session started holds different question values, so the answer log
// is replayed onto them first.
func (s *PracticeService) persistCounters(ctx context.Context, answers []AnswerRecord) error {
	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return err
	}
	for _, rec := range answers {
		q, ok := bank.Fetch(rec.Question.ID())
		if !ok || q == rec.Question {
			continue
		}
		q.CheckAnswer(rec.Answer)
	}
	return s.bank.SaveBank(ctx, bank)
}

func (s *PracticeService) recordStatistics(ctx context.Context, userID string, entry domain.ScoreEntry) error {
	all, err := s.stats.LoadStatistics(ctx)
	if err != nil {
		return err
	}
	if all == nil {
		all = make(map[string]domain.UserStatistics)
	}
	userStats := all[userID]
	userStats.Record(entry)
	all[userID] = userStats
	return s.stats.SaveStatistics(ctx, all)
}

// Leave ends the user's session when the client goes away, persisting any
// progress of a started session.
func (s *PracticeService) Leave(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(userID)
	if !ok {
		return
	}
	if session.State() == StateNotStarted {
		s.sessions.Delete(userID)
		return
	}
	if _, err := s.finishLocked(ctx, userID); err != nil {
		s.logger.Error("failed to finish abandoned session", "user", userID, "error", err)
	}
}
