// Package agents holds the tutor's single-purpose LLM adapters. Each one
// formats one instruction, calls the provider and turns the reply into a
// value the rest of the tutor can use. None of them return errors: a
// failed call becomes diagnostic text or a fallback value.
package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

// Explainer produces the foundational, jargon-free explanation of a concept.
type Explainer struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewExplainer creates an Explainer. logger may be nil.
func NewExplainer(provider llm.Provider, cfg Config, logger *zap.Logger) *Explainer {
	return &Explainer{provider: provider, cfg: cfg, logger: orNop(logger)}
}

// Explain returns the explanation, or a message starting with "Error"
// when the provider fails.
func (e *Explainer) Explain(ctx context.Context, concept string) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)
	trace.Add(ctx, trace.StageExplain, fmt.Sprintf("Generating core explanation for %q", concept))

	text, err := llm.Complete(ctx, e.provider, explainerSystemPrompt, buildExplainPrompt(concept),
		e.cfg.MaxTokens, e.cfg.Temperature)
	if err != nil {
		e.logger.Warn("explanation failed", zap.String("concept", concept), zap.Error(err))
		trace.Add(ctx, trace.StageExplain, "Explanation failed: "+err.Error())
		return llm.FailureMessage("SubjectExplainer", err)
	}
	return text
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
