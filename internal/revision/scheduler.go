// Package revision recommends what a learner should study next from
// their revision history.
package revision

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/trace"
)

// NoHistory replaces the history summary for a learner who has not
// studied anything yet.
const NoHistory = "No revision history found."

// DefaultStaleAfter is how long after the last study a concept is flagged
// as overdue in the planner prompt.
const DefaultStaleAfter = 7 * 24 * time.Hour

const timeLayout = "2006-01-02 15:04"

// Scheduler asks the provider for a next-topic recommendation.
type Scheduler struct {
	provider   llm.Provider
	cfg        agents.Config
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a Scheduler. logger may be nil; a non-positive
// staleAfter disables the overdue list.
func NewScheduler(provider llm.Provider, cfg agents.Config, staleAfter time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		provider:   provider,
		cfg:        cfg,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Recommend returns the provider's study plan verbatim, or a message
// starting with "Error" when the call fails.
func (s *Scheduler) Recommend(ctx context.Context, snap learner.Snapshot) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeSchedule)
	trace.Add(ctx, trace.StageSchedule, fmt.Sprintf("Planning next topic from %d studied concept(s)", len(snap.Revisions)))

	var overdue []string
	if s.staleAfter > 0 {
		overdue = Stale(snap, s.now(), s.staleAfter)
	}

	text, err := llm.Complete(ctx, s.provider, schedulerSystemPrompt, buildSchedulePrompt(snap, overdue),
		s.cfg.MaxTokens, s.cfg.Temperature)
	if err != nil {
		s.logger.Warn("revision planning failed", zap.String("profile", snap.ID), zap.Error(err))
		trace.Add(ctx, trace.StageSchedule, "Planning failed: "+err.Error())
		return llm.FailureMessage("RevisionScheduler", err)
	}
	return text
}

// Summarize formats the history one line per concept in first-study
// order, or returns NoHistory.
func Summarize(snap learner.Snapshot) string {
	if len(snap.Revisions) == 0 {
		return NoHistory
	}
	lines := make([]string, 0, len(snap.Revisions))
	for _, r := range snap.Revisions {
		lines = append(lines, fmt.Sprintf("- Concept: %s, Last Studied: %s, Times Studied: %d",
			r.Concept, r.Last().Local().Format(timeLayout), len(r.Studied)))
	}
	return strings.Join(lines, "\n")
}

// Stale lists concepts last studied more than after before now, the
// longest-neglected first.
func Stale(snap learner.Snapshot, now time.Time, after time.Duration) []string {
	var stale []learner.RevisionEntry
	for _, r := range snap.Revisions {
		if now.Sub(r.Last()) > after {
			stale = append(stale, r)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].Last().Before(stale[j].Last())
	})

	out := make([]string, len(stale))
	for i, r := range stale {
		out[i] = r.Concept
	}
	return out
}

const schedulerSystemPrompt = `You are a study planner for adult learners. You are warm, specific and brief.`

func buildSchedulePrompt(snap learner.Snapshot, overdue []string) string {
	var b strings.Builder

	b.WriteString("Based on the learner's revision history, recommend the single best concept for them to study next. ")
	b.WriteString("The best concept should be one they haven't studied often or one studied long ago. ")
	b.WriteString("Then, suggest a brief, encouraging study schedule for the next week.\n")

	b.WriteString("\n--- Learner Data ---\n")
	b.WriteString(fmt.Sprintf("Mastery Score: %d/%d\n", snap.MasteryScore, learner.MaxMasteryScore))
	b.WriteString("Revision History:\n")
	b.WriteString(Summarize(snap))
	b.WriteString("\n")
	if len(overdue) > 0 {
		b.WriteString(fmt.Sprintf("Overdue for review: %s\n", strings.Join(overdue, ", ")))
	}

	b.WriteString(`
--- Output Structure ---
1. **Next Study Topic:** [Suggested Concept Name]
2. **Study Plan:** [A short, encouraging weekly plan]`)

	return b.String()
}
