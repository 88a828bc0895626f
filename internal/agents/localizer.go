package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

// Learner is the part of a learner profile the localizer needs.
type Learner interface {
	Location() string
	Background() string
	Language() string
}

// Localizer rewrites an explanation as an analogy from the learner's own
// surroundings, in English followed by the learner's language.
type Localizer struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewLocalizer creates a Localizer. logger may be nil.
func NewLocalizer(provider llm.Provider, cfg Config, logger *zap.Logger) *Localizer {
	return &Localizer{provider: provider, cfg: cfg, logger: orNop(logger)}
}

// Localize returns the localized analogy, or a message starting with
// "Error" when the provider fails.
func (l *Localizer) Localize(ctx context.Context, explanation string, learner Learner) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeLocalize)
	trace.Add(ctx, trace.StageLocalize, fmt.Sprintf("Localizing for %s in %s (%s)",
		learner.Background(), learner.Location(), learner.Language()))

	text, err := llm.Complete(ctx, l.provider, localizerSystemPrompt, buildLocalizePrompt(explanation, learner),
		l.cfg.MaxTokens, l.cfg.Temperature)
	if err != nil {
		l.logger.Warn("localization failed", zap.String("language", learner.Language()), zap.Error(err))
		trace.Add(ctx, trace.StageLocalize, "Localization failed: "+err.Error())
		return llm.FailureMessage("Localizer", err)
	}
	return text
}
