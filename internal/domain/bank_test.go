package domain

import "testing"

func mustQuestion(t *testing.T, id, prompt string) *Question {
	t.Helper()
	q, err := NewQuestion(id, prompt, "a", nil)
	if err != nil {
		t.Fatalf("new question: %v", err)
	}
	return q
}

func ids(qs []*Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID())
	}
	return out
}

func TestBankAddOverwriteKeepsPosition(t *testing.T) {
	b := NewQuestionBank()
	b.Add(mustQuestion(t, "a", "first"))
	b.Add(mustQuestion(t, "b", "second"))
	b.Add(mustQuestion(t, "a", "replaced"))

	if b.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", b.Len())
	}
	got := ids(b.Questions())
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected order [a b], got %v", got)
	}
	q, ok := b.Fetch("a")
	if !ok || q.Prompt() != "replaced" {
		t.Fatalf("expected last write to win, got %v", q)
	}
}

func TestBankRemoveAndFetch(t *testing.T) {
	b := NewQuestionBank()
	for _, id := range []string{"a", "b", "c"} {
		b.Add(mustQuestion(t, id, "p"))
	}
	b.Remove("b")
	b.Remove("missing")

	if _, ok := b.Fetch("b"); ok {
		t.Fatalf("expected b removed")
	}
	if got := ids(b.Questions()); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
	if _, ok := b.Fetch("zzz"); ok {
		t.Fatalf("fetch of unknown id must report absence")
	}
}

func TestBankEnabledQuestions(t *testing.T) {
	b := NewQuestionBank()
	for _, id := range []string{"a", "b", "c"} {
		b.Add(mustQuestion(t, id, "p"))
	}
	b.Disable("b")
	b.Disable("missing")
	b.Enable("missing")

	if got := ids(b.EnabledQuestions()); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
	b.Enable("b")
	if len(b.EnabledQuestions()) != 3 {
		t.Fatalf("expected all enabled")
	}
}

func TestBankStatisticsAndRecords(t *testing.T) {
	records := []QuestionRecord{
		{ID: "x", Prompt: "p", Answer: "a", Enabled: true, TimesShown: 2, TimesCorrect: 1},
		{ID: "y", Prompt: "p", Answer: "a", Enabled: false},
	}
	b, err := BankFromRecords(records)
	if err != nil {
		t.Fatalf("bank from records: %v", err)
	}
	stats := b.Statistics()
	if len(stats) != 2 || stats[0] != (QuestionStat{ID: "x", TimesShown: 2, TimesCorrect: 1}) || stats[1].ID != "y" {
		t.Fatalf("unexpected statistics %+v", stats)
	}
	back := b.Records()
	if back[0].TimesShown != 2 || back[1].Enabled {
		t.Fatalf("unexpected records %+v", back)
	}

	if _, err := BankFromRecords([]QuestionRecord{{ID: "z", Prompt: ""}}); err == nil {
		t.Fatalf("expected invalid record to fail")
	}
}
