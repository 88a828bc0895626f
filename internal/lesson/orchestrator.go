// Package lesson runs a full lesson turn: explanation, localized analogy
// and an active recall question, composed into one message.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/trace"
)

// Orchestrator composes the agents into a lesson.
type Orchestrator struct {
	explainer *agents.Explainer
	localizer *agents.Localizer
	questions *agents.QuestionSetter
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrchestrator creates an Orchestrator. logger may be nil.
func NewOrchestrator(e *agents.Explainer, l *agents.Localizer, q *agents.QuestionSetter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		explainer: e,
		localizer: l,
		questions: q,
		logger:    logger,
		now:       time.Now,
	}
}

// Teach runs a lesson on concept for profile and returns the lesson
// message. The explanation and the question are generated concurrently;
// the analogy waits for the explanation. Degraded agent output still
// produces a lesson: the revision is recorded and the question, which is
// always complete, becomes the profile's pending answer.
func (o *Orchestrator) Teach(ctx context.Context, profile *learner.Profile, concept string) string {
	trace.Add(ctx, trace.StageLesson, fmt.Sprintf("Starting lesson on %q", concept))

	var (
		explanation string
		analogy     string
		item        agents.TestItem
	)

	// Agents never return errors; the group only carries panics back here.
	g, gctx := errgroup.WithContext(ctx)
	goRecover(g, func() {
		explanation = o.explainer.Explain(gctx, concept)
		analogy = o.localizer.Localize(gctx, explanation, profile)
	})
	goRecover(g, func() {
		item = o.questions.Generate(gctx, concept)
	})
	if err := g.Wait(); err != nil {
		var pe *stepPanic
		if errors.As(err, &pe) {
			o.logger.Error("lesson step panicked",
				zap.String("concept", concept),
				zap.Any("panic", pe.value),
				zap.ByteString("stack", pe.stack))
			// Raised again on the caller's goroutine, before any state
			// changes, so the turn's own recovery handles it.
			panic(pe)
		}
	}

	if item.Complete() {
		profile.SetPendingAnswer(concept, item.Answer)
		trace.Add(ctx, trace.StageState, fmt.Sprintf("Pending answer set for %q", concept))
	}

	profile.AppendRevision(concept, o.now())
	trace.Add(ctx, trace.StageState, fmt.Sprintf("Recorded study of %q", concept))

	o.logger.Info("lesson delivered",
		zap.String("profile", profile.ID()),
		zap.String("concept", concept))

	return FormatLesson(concept, explanation, analogy, item.Question)
}

// stepPanic carries a panic out of a lesson goroutine.
type stepPanic struct {
	value any
	stack []byte
}

func (p *stepPanic) Error() string {
	return fmt.Sprintf("lesson step panicked: %v", p.value)
}

func goRecover(g *errgroup.Group, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &stepPanic{value: r, stack: debug.Stack()}
			}
		}()
		fn()
		return nil
	})
}

// FormatLesson builds the four-part lesson message.
func FormatLesson(concept, explanation, analogy, question string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Subject: %s**\n\n", agents.Title(concept)))
	b.WriteString(fmt.Sprintf("**Core Concept:**\n> %s\n\n", quote(explanation)))
	b.WriteString(fmt.Sprintf("**Localized Analogy:**\n> %s\n\n", quote(analogy)))
	b.WriteString(FormatQuestion(question))
	return b.String()
}

// FormatQuestion builds the active recall block shown on its own when the
// learner asks to be tested.
func FormatQuestion(question string) string {
	return fmt.Sprintf("--- Active Recall Check ---\n**Question:**\n> %s", quote(question))
}

// quote keeps multi-line text inside a markdown block quote.
func quote(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n> ")
}
