package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

type fakeLearner struct{}

func (fakeLearner) Location() string   { return "Pune, Maharashtra" }
func (fakeLearner) Background() string { return "Agriculture/Farming" }
func (fakeLearner) Language() string   { return "Marathi" }

var errAPI = errors.New("api key rejected")

func TestExplainer(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextReply("  Inflation is a general rise in prices.  "))
	e := NewExplainer(mock, DefaultConfig(), nil)

	got := e.Explain(context.Background(), "inflation")
	assert.Equal(t, "Inflation is a general rise in prices.", got)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "'inflation'")
	assert.Equal(t, DefaultConfig().MaxTokens, req.MaxTokens)
}

func TestExplainer_FailureIsText(t *testing.T) {
	e := NewExplainer(llm.NewMockProvider(llm.FailReply(errAPI)), DefaultConfig(), nil)

	rec := trace.NewRecorder(nil)
	got := e.Explain(trace.WithRecorder(context.Background(), rec), "gravity")

	assert.True(t, strings.HasPrefix(got, "Error in SubjectExplainer"), got)
	assert.Contains(t, got, errAPI.Error())
	require.Len(t, rec.Events(), 2)
	assert.Equal(t, trace.StageExplain, rec.Events()[1].Stage)
}

func TestLocalizer(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextReply("Like sharing water between fields..."))
	l := NewLocalizer(mock, DefaultConfig(), nil)

	got := l.Localize(context.Background(), "Core explanation text.", fakeLearner{})
	assert.Equal(t, "Like sharing water between fields...", got)

	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"Agriculture/Farming in Pune, Maharashtra", "Marathi", "Core explanation text."} {
		assert.Contains(t, prompt, want)
	}
}

func TestLocalizer_FailureIsText(t *testing.T) {
	l := NewLocalizer(llm.NewMockProvider(), DefaultConfig(), nil)
	got := l.Localize(context.Background(), "x", fakeLearner{})
	assert.True(t, strings.HasPrefix(got, "Error in Localizer"), got)
}

func TestQuestionSetter(t *testing.T) {
	tests := []struct {
		name  string
		reply llm.MockResponse
		want  TestItem
	}{
		{
			name:  "valid",
			reply: llm.JSONReply(`{"question":"Why do objects fall?","answer":"Gravity pulls masses together."}`),
			want:  TestItem{Question: "Why do objects fall?", Answer: "Gravity pulls masses together."},
		},
		{
			name:  "missing answer",
			reply: llm.JSONReply(`{"question":"Why do objects fall?"}`),
			want:  FallbackTestItem("gravity"),
		},
		{
			name:  "blank question",
			reply: llm.JSONReply(`{"question":"  ","answer":"Gravity."}`),
			want:  FallbackTestItem("gravity"),
		},
		{
			name:  "not json",
			reply: llm.JSONReply(`here is your question`),
			want:  FallbackTestItem("gravity"),
		},
		{
			name:  "provider error",
			reply: llm.FailReply(errAPI),
			want:  FallbackTestItem("gravity"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.reply)
			q := NewQuestionSetter(mock, DefaultConfig(), nil)

			got := q.Generate(context.Background(), "gravity")
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Complete())
			assert.Same(t, TestItemSchema, mock.Calls[0].Schema)
		})
	}
}

func TestFallbackTestItem(t *testing.T) {
	item := FallbackTestItem("Photosynthesis")
	assert.Equal(t, "What is Photosynthesis?", item.Question)
	assert.Equal(t, "A brief explanation of Photosynthesis.", item.Answer)
}

func TestTestItemSchema(t *testing.T) {
	props, ok := TestItemSchema.Definition["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "question")
	assert.Contains(t, props, "answer")
	assert.ElementsMatch(t, []any{"question", "answer"}, TestItemSchema.Definition["required"])
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(2), 2},
		{2.9, 2},
		{"3", 3},
		{" 1 ", 1},
		{"2.5", 2},
		{"two", 0},
		{nil, 0},
		{true, 1},
		{[]any{1}, 0},
		{map[string]any{}, 0},
	}
	for _, tt := range tests {
		if got := coerceInt(tt.in); got != tt.want {
			t.Errorf("coerceInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func gradeProfile(t *testing.T, score int) *learner.Profile {
	t.Helper()
	st, err := learner.NewStore([]learner.Seed{{ID: "p", Name: "P", MasteryScore: score}})
	require.NoError(t, err)
	p, _ := st.Get("p")
	return p
}

func TestGrader(t *testing.T) {
	pending := learner.PendingAnswer{Concept: "gravity", ExpectedAnswer: "A force pulling masses together."}

	tests := []struct {
		name        string
		score       int
		startInc    int
		reply       llm.MockResponse
		wantScore   string
		wantLine    string
		wantMastery int
		wantInc     int
	}{
		{
			name:        "partial progress",
			score:       1,
			reply:       llm.JSONReply(`{"score":2,"feedback":"Mostly right.","mastery_increment":2}`),
			wantScore:   "**Score:** 2/3",
			wantLine:    "**Mastery Progress:** Gained 2 point(s). Current mastery progress is 2/3 towards the next level.",
			wantMastery: 1,
			wantInc:     2,
		},
		{
			name:        "level up",
			score:       1,
			startInc:    2,
			reply:       llm.JSONReply(`{"score":3,"feedback":"Excellent.","mastery_increment":"3"}`),
			wantScore:   "**Score:** 3/3",
			wantLine:    "**🌟 MASTERY LEVEL UP!** Your overall mastery score increased to 2/5!",
			wantMastery: 2,
			wantInc:     0,
		},
		{
			name:        "zero increment",
			score:       1,
			reply:       llm.JSONReply(`{"score":0,"feedback":"Not quite.","mastery_increment":0}`),
			wantScore:   "**Score:** 0/3",
			wantLine:    "No mastery progress gained this time.",
			wantMastery: 1,
		},
		{
			name:        "unparseable increment",
			score:       1,
			reply:       llm.JSONReply(`{"score":"2","feedback":"Okay.","mastery_increment":"lots"}`),
			wantScore:   "**Score:** 2/3",
			wantLine:    "No mastery progress gained this time.",
			wantMastery: 1,
		},
		{
			name:        "score clamped",
			score:       1,
			reply:       llm.JSONReply(`{"score":7,"feedback":"Wow.","mastery_increment":1.0}`),
			wantScore:   "**Score:** 3/3",
			wantLine:    "Gained 1 point(s)",
			wantMastery: 1,
			wantInc:     1,
		},
		{
			name:        "at the cap",
			score:       5,
			startInc:    1,
			reply:       llm.JSONReply(`{"score":3,"feedback":"Great.","mastery_increment":3}`),
			wantScore:   "**Score:** 3/3",
			wantLine:    "Gained 3 point(s). Current mastery progress is 0/3",
			wantMastery: 5,
		},
		{
			name:        "string increment",
			score:       1,
			reply:       llm.JSONReply(`{"score":2,"feedback":"Mostly right.","mastery_increment":"2"}`),
			wantScore:   "**Score:** 2/3",
			wantLine:    "Gained 2 point(s)",
			wantMastery: 1,
			wantInc:     2,
		},
		{
			name:        "missing increment keeps score and feedback",
			score:       1,
			reply:       llm.JSONReply(`{"score":2,"feedback":"Mostly right."}`),
			wantScore:   "**Score:** 2/3",
			wantLine:    "**Feedback:** Mostly right.",
			wantMastery: 1,
		},
		{
			name:        "fractional string increment",
			score:       1,
			reply:       llm.JSONReply(`{"score":1,"feedback":"Half.","mastery_increment":"2.5"}`),
			wantScore:   "**Score:** 1/3",
			wantLine:    "No mastery progress gained this time.",
			wantMastery: 1,
		},
		{
			name:        "missing feedback",
			score:       1,
			reply:       llm.JSONReply(`{"score":1,"mastery_increment":1}`),
			wantScore:   "**Score:** 1/3",
			wantLine:    "**Feedback:** No feedback provided.",
			wantMastery: 1,
			wantInc:     1,
		},
		{
			name:        "feedback of the wrong type is rejected",
			score:       1,
			reply:       llm.JSONReply(`{"score":3,"feedback":42,"mastery_increment":3}`),
			wantScore:   "**Score:** 0/3",
			wantLine:    "Grading failed due to an API error.",
			wantMastery: 1,
		},
		{
			name:        "provider failure",
			score:       1,
			reply:       llm.FailReply(errAPI),
			wantScore:   "**Score:** 0/3",
			wantLine:    "No mastery progress gained this time.",
			wantMastery: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := gradeProfile(t, tt.score)
			p.ApplyMasteryIncrement(tt.startInc)
			p.SetPendingAnswer(pending.Concept, pending.ExpectedAnswer)

			g := NewGrader(llm.NewMockProvider(tt.reply), DefaultConfig(), nil)
			got := g.Grade(context.Background(), p, "Things fall down.", pending)

			assert.True(t, strings.HasPrefix(got, "--- ✅ Test Graded: Gravity ---"), got)
			assert.Contains(t, got, tt.wantScore)
			assert.Contains(t, got, tt.wantLine)

			score, inc := p.Mastery()
			assert.Equal(t, tt.wantMastery, score)
			assert.Equal(t, tt.wantInc, inc)

			_, pendingLeft := p.PendingAnswer()
			assert.False(t, pendingLeft, "pending answer must be cleared")
		})
	}
}

func TestGradeSchema_StrictRequestLooseValidation(t *testing.T) {
	assert.Equal(t, []string{"score", "feedback", "mastery_increment"}, GradeSchema.Definition["required"])
	assert.Equal(t, false, GradeSchema.Definition["additionalProperties"])
	assert.NotContains(t, GradeSchema.Validation, "required")

	for _, raw := range []string{
		`{"score":2,"feedback":"Mostly right.","mastery_increment":"2"}`,
		`{"score":2,"feedback":"Mostly right."}`,
		`{"score":"2","feedback":"Okay.","mastery_increment":"lots"}`,
	} {
		_, err := llm.Decode[map[string]any](&llm.Response{Content: []byte(raw)}, GradeSchema)
		assert.NoError(t, err, raw)
	}
}

func TestGrader_FailureFeedback(t *testing.T) {
	p := gradeProfile(t, 0)
	g := NewGrader(llm.NewMockProvider(llm.FailReply(errAPI)), DefaultConfig(), nil)

	got := g.Grade(context.Background(), p, "no idea", learner.PendingAnswer{Concept: "soil", ExpectedAnswer: "x"})
	assert.Contains(t, got, "**Feedback:** Grading failed due to an API error. Check API Key configuration. Error details:")
	assert.Contains(t, got, errAPI.Error())
}

// clearSpy records when the pending answer is cleared relative to the
// provider call.
type clearSpy struct {
	*learner.Profile
	cleared bool
}

func (s *clearSpy) ClearPendingAnswer() {
	s.cleared = true
	s.Profile.ClearPendingAnswer()
}

func TestGrader_ClearsBeforeCalling(t *testing.T) {
	spy := &clearSpy{Profile: gradeProfile(t, 0)}
	var clearedFirst bool
	provider := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		clearedFirst = spy.cleared
		assert.Equal(t, llm.PurposeGrade, llm.PurposeFrom(ctx))
		assert.Same(t, GradeSchema, req.Schema)
		assert.Contains(t, req.Messages[0].Content, "Learner Response: my reply")
		return nil, errAPI
	})

	NewGrader(provider, DefaultConfig(), nil).Grade(context.Background(), spy, "my reply",
		learner.PendingAnswer{Concept: "tides", ExpectedAnswer: "The moon."})
	assert.True(t, clearedFirst)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Photosynthesis In Plants", Title("photosynthesis in plants"))
	assert.Equal(t, "Cloud Computing", Title("Cloud Computing"))
}

type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
