package app

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"quiz-trainer/internal/domain"
)

var (
	// ErrSessionNotStarted is returned by operations that need an active session.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionExhausted signals that every question in the pool was presented.
	ErrSessionExhausted = errors.New("no questions remaining")
	// ErrQuestionNotPresented guards against scoring a question that was never selected.
	ErrQuestionNotPresented = errors.New("question was not presented in this session")
	// ErrAlreadyAnswered is returned when a presented question is evaluated twice.
	ErrAlreadyAnswered = errors.New("question already answered in this session")
	ErrUnknownMode     = errors.New("unknown session mode")
	ErrInvalidTestSize = errors.New("test size must be positive")
)

// Mode selects the question selection policy for a session.
type Mode string

const (
	// ModeQuiz draws uniformly at random from the remaining pool.
	ModeQuiz Mode = "quiz"
	// ModePractice serves the least accurate questions first.
	ModePractice Mode = "practice"
	// ModeTest draws a fixed-size random subset, then behaves like quiz.
	ModeTest Mode = "test"
)

// ParseMode maps user input to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case ModeQuiz, ModePractice, ModeTest:
		return m, nil
	}
	return "", ErrUnknownMode
}

type State int

const (
	StateNotStarted State = iota
	StateActive
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	default:
		return "not_started"
	}
}

// AnswerRecord is one evaluated answer.
type AnswerRecord struct {
	Question *domain.Question
	Answer   string
	Correct  bool
}

// Score is the (correct, presented) pair of a session.
type Score struct {
	Correct   int `json:"correct"`
	Presented int `json:"presented"`
}

// Ratio returns Correct/Presented, 0 for an empty session.
func (s Score) Ratio() float64 {
	if s.Presented == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Presented)
}

// StartInfo describes a freshly started session.
type StartInfo struct {
	Mode     Mode
	First    *domain.Question // nil when the pool is empty
	PoolSize int
	Size     int  // questions the session will serve
	Degraded bool // test size exceeded the pool; the whole pool is used
}

// Session runs one quiz, practice or test over a pool of questions.
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	rnd       *rand.Rand
	createdAt time.Time
	now       func() time.Time

	state State
	mode  Mode
	pool  []*domain.Question
	used  map[string]*domain.Question
	order []*domain.Question // presentation order of used questions
	done  map[string]bool
	score int
	log   []AnswerRecord
}

func newSession(rnd *rand.Rand) *Session {
	return newSessionWithClock(rnd, time.Now)
}

func newSessionWithClock(rnd *rand.Rand, now func() time.Time) *Session {
	return &Session{
		rnd:       rnd,
		createdAt: now(),
		now:       now,
		used:      make(map[string]*domain.Question),
		done:      make(map[string]bool),
	}
}

// Start resets the session and selects the first question. testSize is only
// read in test mode.
func (s *Session) Start(mode Mode, pool []*domain.Question, testSize int) (StartInfo, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return StartInfo{}, err
	}
	if mode == ModeTest && testSize <= 0 {
		return StartInfo{}, ErrInvalidTestSize
	}

	s.Reset()
	s.mode = mode
	s.state = StateActive

	candidates := enabledUnique(pool)
	info := StartInfo{Mode: mode, PoolSize: len(candidates)}

	switch mode {
	case ModePractice:
		s.pool = weakestFirst(candidates)
	case ModeTest:
		if testSize > len(candidates) {
			info.Degraded = true
			testSize = len(candidates)
		}
		s.pool = s.sample(candidates, testSize)
	default:
		s.pool = candidates
	}
	info.Size = len(s.pool)

	first, err := s.SelectNext()
	if err != nil && !errors.Is(err, ErrSessionExhausted) {
		return StartInfo{}, err
	}
	info.First = first
	return info, nil
}

// SelectNext returns the next unused question and marks it used. Once the
// pool is drained the session becomes exhausted and ErrSessionExhausted is
// returned.
func (s *Session) SelectNext() (*domain.Question, error) {
	switch s.state {
	case StateNotStarted:
		return nil, ErrSessionNotStarted
	case StateExhausted:
		return nil, ErrSessionExhausted
	}

	remaining := s.remaining()
	if len(remaining) == 0 {
		s.state = StateExhausted
		return nil, ErrSessionExhausted
	}

	var next *domain.Question
	if s.mode == ModePractice {
		next = remaining[0]
	} else {
		next = remaining[s.rnd.Intn(len(remaining))]
	}
	s.used[next.ID()] = next
	s.order = append(s.order, next)
	return next, nil
}

// Evaluate checks userAnswer against a presented question, updating its
// lifetime counters and the session score.
func (s *Session) Evaluate(q *domain.Question, userAnswer string) (bool, error) {
	if s.state == StateNotStarted {
		return false, ErrSessionNotStarted
	}
	if q == nil || s.used[q.ID()] != q {
		return false, ErrQuestionNotPresented
	}
	if s.done[q.ID()] {
		return false, ErrAlreadyAnswered
	}

	correct := q.CheckAnswer(userAnswer)
	if correct {
		s.score++
	}
	s.done[q.ID()] = true
	s.log = append(s.log, AnswerRecord{Question: q, Answer: userAnswer, Correct: correct})
	return correct, nil
}

// Presented looks up a question selected in this session by ID.
func (s *Session) Presented(id string) (*domain.Question, bool) {
	q, ok := s.used[id]
	return q, ok
}

// FinalScore is valid in any state.
func (s *Session) FinalScore() Score {
	return Score{Correct: s.score, Presented: len(s.used)}
}

// Reset returns to the not-started state. Question counters are untouched.
func (s *Session) Reset() {
	s.state = StateNotStarted
	s.mode = ""
	s.pool = nil
	s.used = make(map[string]*domain.Question)
	s.order = nil
	s.done = make(map[string]bool)
	s.score = 0
	s.log = nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Current is the most recently selected question, nil before the first one.
func (s *Session) Current() *domain.Question {
	if len(s.order) == 0 {
		return nil
	}
	return s.order[len(s.order)-1]
}

// Used lists presented questions in presentation order.
func (s *Session) Used() []*domain.Question {
	out := make([]*domain.Question, len(s.order))
	copy(out, s.order)
	return out
}

// Pool lists the questions this session can serve.
func (s *Session) Pool() []*domain.Question {
	out := make([]*domain.Question, len(s.pool))
	copy(out, s.pool)
	return out
}

func (s *Session) Remaining() int { return len(s.pool) - len(s.used) }

// Answers returns a copy of the answer log.
func (s *Session) Answers() []AnswerRecord {
	out := make([]AnswerRecord, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) remaining() []*domain.Question {
	out := make([]*domain.Question, 0, len(s.pool)-len(s.used))
	for _, q := range s.pool {
		if _, ok := s.used[q.ID()]; !ok {
			out = append(out, q)
		}
	}
	return out
}

// sample draws k questions without replacement, keeping pool order.
func (s *Session) sample(pool []*domain.Question, k int) []*domain.Question {
	picked := s.rnd.Perm(len(pool))[:k]
	sort.Ints(picked)
	out := make([]*domain.Question, 0, k)
	for _, i := range picked {
		out = append(out, pool[i])
	}
	return out
}

func enabledUnique(pool []*domain.Question) []*domain.Question {
	seen := make(map[string]struct{}, len(pool))
	out := make([]*domain.Question, 0, len(pool))
	for _, q := range pool {
		if q == nil || !q.Enabled() {
			continue
		}
		if _, ok := seen[q.ID()]; ok {
			continue
		}
		seen[q.ID()] = struct{}{}
		out = append(out, q)
	}
	return out
}

// weakestFirst orders by ascending accuracy; ties keep pool order.
func weakestFirst(pool []*domain.Question) []*domain.Question {
	ordered := make([]*domain.Question, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Accuracy() < ordered[j].Accuracy()
	})
	return ordered
}
