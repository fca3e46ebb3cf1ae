package domain

// QuestionBank owns a set of questions keyed by ID. Insertion order is kept
// for listings only.
type QuestionBank struct {
	order     []string
	questions map[string]*Question
}

func NewQuestionBank() *QuestionBank {
	return &QuestionBank{questions: make(map[string]*Question)}
}

// BankFromRecords builds a bank from stored records, failing on the first
// invalid record.
func BankFromRecords(records []QuestionRecord) (*QuestionBank, error) {
	bank := NewQuestionBank()
	for _, rec := range records {
		q, err := FromRecord(rec)
		if err != nil {
			return nil, err
		}
		bank.Add(q)
	}
	return bank, nil
}

// Add inserts q. A question with an existing ID replaces the old one and
// keeps its original position.
func (b *QuestionBank) Add(q *Question) {
	if _, ok := b.questions[q.ID()]; !ok {
		b.order = append(b.order, q.ID())
	}
	b.questions[q.ID()] = q
}

// Remove deletes the question with the given ID. Unknown IDs are ignored.
func (b *QuestionBank) Remove(id string) {
	if _, ok := b.questions[id]; !ok {
		return
	}
	delete(b.questions, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *QuestionBank) Fetch(id string) (*Question, bool) {
	q, ok := b.questions[id]
	return q, ok
}

// Enable is a no-op for unknown IDs.
func (b *QuestionBank) Enable(id string) {
	if q, ok := b.questions[id]; ok {
		q.Enable()
	}
}

// Disable is a no-op for unknown IDs.
func (b *QuestionBank) Disable(id string) {
	if q, ok := b.questions[id]; ok {
		q.Disable()
	}
}

func (b *QuestionBank) Len() int { return len(b.order) }

// Questions lists every question in insertion order.
func (b *QuestionBank) Questions() []*Question {
	out := make([]*Question, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.questions[id])
	}
	return out
}

// EnabledQuestions is the session pool: enabled questions in insertion order.
func (b *QuestionBank) EnabledQuestions() []*Question {
	out := make([]*Question, 0, len(b.order))
	for _, id := range b.order {
		if q := b.questions[id]; q.Enabled() {
			out = append(out, q)
		}
	}
	return out
}

// Statistics snapshots counters for all questions in insertion order.
func (b *QuestionBank) Statistics() []QuestionStat {
	out := make([]QuestionStat, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.questions[id].Stat())
	}
	return out
}

func (b *QuestionBank) Records() []QuestionRecord {
	out := make([]QuestionRecord, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.questions[id].Record())
	}
	return out
}
