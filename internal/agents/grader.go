package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

const maxScore = 3

// Grade is the outcome of grading one reply.
type Grade struct {
	Score            int    `json:"score"`
	Feedback         string `json:"feedback"`
	MasteryIncrement int    `json:"mastery_increment"`
}

// GradeSchema is written by hand. The model is asked for the strict shape
// (every property required, nothing else allowed); replies are only held to
// the loose Validation form and the grader repairs types itself.
var GradeSchema = &llm.Schema{
	Name:        "answer-grade",
	Description: "The grade for a learner's answer with feedback and mastery progress.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"description": "0 (completely wrong) to 3 (excellent and comprehensive).",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Why the learner received that score and what they missed.",
			},
			"mastery_increment": map[string]any{
				"type":        "integer",
				"description": "The score (0-3) to add to the learner's mastery progress.",
			},
		},
		"required":             []string{"score", "feedback", "mastery_increment"},
		"additionalProperties": false,
	},
	Validation: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":             map[string]any{"type": looseNumber},
			"feedback":          map[string]any{"type": []string{"string", "null"}},
			"mastery_increment": map[string]any{"type": looseNumber},
		},
	},
}

var looseNumber = []string{"integer", "number", "string", "boolean", "null"}

// Progress is the part of a learner profile the grader updates.
type Progress interface {
	ClearPendingAnswer()
	ApplyMasteryIncrement(delta int) bool
	Mastery() (score, increment int)
}

// Grader scores a reply against the pending answer and updates mastery.
type Grader struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewGrader creates a Grader. logger may be nil.
func NewGrader(provider llm.Provider, cfg Config, logger *zap.Logger) *Grader {
	return &Grader{provider: provider, cfg: cfg, logger: orNop(logger)}
}

// Grade clears the profile's pending answer, grades reply, applies the
// mastery increment and returns the message for the learner. The pending
// answer is cleared before the provider is called so a failed call never
// leaves the learner stuck answering the same question.
func (g *Grader) Grade(ctx context.Context, profile Progress, reply string, pending learner.PendingAnswer) string {
	profile.ClearPendingAnswer()
	trace.Add(ctx, trace.StageState, "Cleared pending answer")

	ctx = llm.WithPurpose(ctx, llm.PurposeGrade)
	trace.Add(ctx, trace.StageGrade, fmt.Sprintf("Grading answer for %q", pending.Concept))

	grade, err := g.grade(ctx, reply, pending)
	if err != nil {
		g.logger.Warn("grading failed", zap.String("concept", pending.Concept), zap.Error(err))
		trace.Add(ctx, trace.StageGrade, "Grading failed: "+err.Error())
		grade = Grade{
			Feedback: fmt.Sprintf("Grading failed due to an API error. Check API Key configuration. Error details: %v", err),
		}
	}

	leveledUp := profile.ApplyMasteryIncrement(grade.MasteryIncrement)
	score, increment := profile.Mastery()
	trace.Add(ctx, trace.StageState, fmt.Sprintf("Mastery now %d/%d, progress %d/%d",
		score, learner.MaxMasteryScore, increment, learner.LevelUpThreshold))

	return formatGrade(pending.Concept, grade, leveledUp, score, increment)
}

// rawGrade accepts whatever types the model sent.
type rawGrade struct {
	Score            any    `json:"score"`
	Feedback         string `json:"feedback"`
	MasteryIncrement any    `json:"mastery_increment"`
}

func (g *Grader) grade(ctx context.Context, reply string, pending learner.PendingAnswer) (Grade, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      graderSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGradePrompt(pending.Concept, pending.ExpectedAnswer, reply)}},
		Schema:      GradeSchema,
		MaxTokens:   g.cfg.StructuredMaxTokens,
		Temperature: g.cfg.StructuredTemperature,
	})
	if err != nil {
		return Grade{}, fmt.Errorf("grading: %w", err)
	}

	var raw rawGrade
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return Grade{}, fmt.Errorf("parse grade: %w", &llm.ErrInvalidResponse{Schema: GradeSchema.Name, Content: resp.Content, Err: err})
	}

	feedback := strings.TrimSpace(raw.Feedback)
	if feedback == "" {
		feedback = "No feedback provided."
	}
	return Grade{
		Score:            clampScore(coerceInt(raw.Score)),
		Feedback:         feedback,
		MasteryIncrement: coerceInt(raw.MasteryIncrement),
	}, nil
}

// coerceInt reads an integer from a decoded JSON value. Numbers are
// truncated, integer strings are parsed, anything else (including "2.5")
// is 0.
func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

func formatGrade(concept string, g Grade, leveledUp bool, score, increment int) string {
	var mastery string
	switch {
	case leveledUp:
		mastery = fmt.Sprintf("**🌟 MASTERY LEVEL UP!** Your overall mastery score increased to %d/%d! Keep up the great work!",
			score, learner.MaxMasteryScore)
	case g.MasteryIncrement > 0:
		mastery = fmt.Sprintf("**Mastery Progress:** Gained %d point(s). Current mastery progress is %d/%d towards the next level.",
			g.MasteryIncrement, increment, learner.LevelUpThreshold)
	default:
		mastery = "No mastery progress gained this time. Don't worry, every review helps!"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("--- ✅ Test Graded: %s ---\n\n", Title(concept)))
	b.WriteString(fmt.Sprintf("**Score:** %d/%d\n\n", g.Score, maxScore))
	b.WriteString(fmt.Sprintf("**Feedback:** %s\n\n", g.Feedback))
	b.WriteString("***\n")
	b.WriteString(mastery)
	return b.String()
}
