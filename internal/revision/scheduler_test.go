package revision

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
)

var base = time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)

func snapshotWith(t *testing.T, studies map[string][]time.Time, order []string) learner.Snapshot {
	t.Helper()
	st, err := learner.NewStore([]learner.Seed{{ID: "p", MasteryScore: 2}})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := st.Get("p")
	for _, c := range order {
		for _, at := range studies[c] {
			p.AppendRevision(c, at)
		}
	}
	return p.Snapshot()
}

func TestSummarize(t *testing.T) {
	if got := Summarize(learner.Snapshot{}); got != NoHistory {
		t.Errorf("Summarize(empty) = %q, want %q", got, NoHistory)
	}

	snap := snapshotWith(t, map[string][]time.Time{
		"inflation": {base, base.Add(26 * time.Hour)},
		"gravity":   {base.Add(time.Hour)},
	}, []string{"inflation", "gravity"})

	want := "- Concept: inflation, Last Studied: 2025-01-11 10:00, Times Studied: 2\n" +
		"- Concept: gravity, Last Studied: 2025-01-10 09:00, Times Studied: 1"
	if got := Summarize(snap); got != want {
		t.Errorf("Summarize() =\n%s\nwant\n%s", got, want)
	}
}

func TestStale(t *testing.T) {
	snap := snapshotWith(t, map[string][]time.Time{
		"a": {base},
		"b": {base.Add(-48 * time.Hour)},
		"c": {base.Add(-72 * time.Hour), base.Add(20 * time.Hour)},
	}, []string{"a", "b", "c"})

	got := Stale(snap, base.Add(24*time.Hour), 12*time.Hour)
	want := []string{"b", "a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Stale() = %v, want %v", got, want)
	}
	if got := Stale(learner.Snapshot{}, base, time.Hour); len(got) != 0 {
		t.Errorf("Stale(empty) = %v", got)
	}
}

func TestRecommend_EmptyHistory(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextReply("1. **Next Study Topic:** Saving Money\n2. **Study Plan:** ..."))
	s := NewScheduler(mock, agents.DefaultConfig(), DefaultStaleAfter, nil)

	got := s.Recommend(context.Background(), learner.Snapshot{MasteryScore: 1})
	if !strings.Contains(got, "Next Study Topic") {
		t.Errorf("Recommend() = %q", got)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, NoHistory) {
		t.Errorf("prompt missing the no-history notice:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Mastery Score: 1/5") {
		t.Errorf("prompt missing mastery:\n%s", prompt)
	}
	if strings.Contains(prompt, "Overdue") {
		t.Errorf("empty history should list nothing overdue")
	}
}

func TestRecommend_FlagsOverdue(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextReply("plan"))
	s := NewScheduler(mock, agents.DefaultConfig(), 24*time.Hour, nil)
	s.now = func() time.Time { return base.Add(72 * time.Hour) }

	snap := snapshotWith(t, map[string][]time.Time{
		"crop rotation": {base},
		"interest":      {base.Add(60 * time.Hour)},
	}, []string{"crop rotation", "interest"})

	s.Recommend(context.Background(), snap)
	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "Overdue for review: crop rotation\n") {
		t.Errorf("prompt:\n%s", prompt)
	}
}

func TestRecommend_Failure(t *testing.T) {
	s := NewScheduler(llm.NewMockProvider(llm.FailReply(errors.New("quota"))), agents.DefaultConfig(), 0, nil)
	got := s.Recommend(context.Background(), learner.Snapshot{})
	if !strings.HasPrefix(got, "Error in RevisionScheduler") || !strings.Contains(got, "quota") {
		t.Errorf("Recommend() = %q", got)
	}
}
