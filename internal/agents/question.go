package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

// TestItem is one active recall question and the answer it expects.
type TestItem struct {
	Question string `json:"question" jsonschema:"description=The active recall question."`
	Answer   string `json:"answer" jsonschema:"description=The detailed expected answer."`
}

// Complete reports whether both fields are non-blank.
func (t TestItem) Complete() bool {
	return strings.TrimSpace(t.Question) != "" && strings.TrimSpace(t.Answer) != ""
}

// FallbackTestItem is the question used when none could be generated.
func FallbackTestItem(concept string) TestItem {
	return TestItem{
		Question: fmt.Sprintf("What is %s?", concept),
		Answer:   fmt.Sprintf("A brief explanation of %s.", concept),
	}
}

// TestItemSchema is the structured output schema for recall questions.
var TestItemSchema = llm.SchemaFor[TestItem]("recall-question",
	"One open-ended active recall question and its comprehensive expected answer.")

// QuestionSetter writes active recall questions.
type QuestionSetter struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewQuestionSetter creates a QuestionSetter. logger may be nil.
func NewQuestionSetter(provider llm.Provider, cfg Config, logger *zap.Logger) *QuestionSetter {
	return &QuestionSetter{provider: provider, cfg: cfg, logger: orNop(logger)}
}

// Generate always returns a complete TestItem. When the provider fails
// or its reply is missing a field, the deterministic fallback is used.
func (q *QuestionSetter) Generate(ctx context.Context, concept string) TestItem {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)
	trace.Add(ctx, trace.StageQuestion, fmt.Sprintf("Generating active recall question for %q", concept))

	item, err := q.generate(ctx, concept)
	if err != nil {
		q.logger.Warn("question generation failed", zap.String("concept", concept), zap.Error(err))
		trace.Add(ctx, trace.StageQuestion, "Question generation failed, using fallback: "+err.Error())
		return FallbackTestItem(concept)
	}
	return item
}

func (q *QuestionSetter) generate(ctx context.Context, concept string) (TestItem, error) {
	resp, err := q.provider.Generate(ctx, llm.Request{
		System:      questionSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildQuestionPrompt(concept)}},
		Schema:      TestItemSchema,
		MaxTokens:   q.cfg.StructuredMaxTokens,
		Temperature: q.cfg.StructuredTemperature,
	})
	if err != nil {
		return TestItem{}, fmt.Errorf("question generation: %w", err)
	}

	item, err := llm.Decode[TestItem](resp, TestItemSchema)
	if err != nil {
		return TestItem{}, fmt.Errorf("parse question: %w", err)
	}
	if !item.Complete() {
		return TestItem{}, fmt.Errorf("parse question: %w", &llm.ErrInvalidResponse{
			Schema:  TestItemSchema.Name,
			Content: resp.Content,
			Err:     fmt.Errorf("question or answer is blank"),
		})
	}
	return item, nil
}
