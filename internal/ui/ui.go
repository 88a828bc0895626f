// Package ui renders the terminal views of the chat: the learner card,
// the trace panel and the command hints.
package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/trace"
	"github.com/abhisek/eduindia/internal/ui/components"
	"github.com/abhisek/eduindia/internal/ui/theme"
)

// ProfileCard renders the active learner with their progress.
func ProfileCard(s learner.Snapshot) string {
	rows := []string{
		theme.Title.Render("🎓 " + s.DisplayName),
		field("Location", s.Location),
		field("Background", s.Background),
		field("Language", s.Language),
		"",
		theme.Label.Render("Mastery     ") + components.NewMeter(s.MasteryScore, learner.MaxMasteryScore).View(),
		theme.Label.Render("Next level  ") + components.NewMeter(s.MasteryIncrement, learner.LevelUpThreshold).View(),
	}
	if s.AwaitingAnswer {
		rows = append(rows, "", theme.Hint.Render(fmt.Sprintf("Waiting for your answer on %q", s.PendingConcept)))
	}
	return theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func field(label, value string) string {
	return theme.Label.Render(fmt.Sprintf("%-12s", label)) + theme.Value.Render(value)
}

// ProfileList renders every profile, marking the active one.
func ProfileList(profiles []learner.Snapshot, activeID string) string {
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		line := fmt.Sprintf("%-20s %s · %s · %s", p.ID, p.DisplayName, p.Location, p.Language)
		if p.ID == activeID {
			lines = append(lines, theme.Selected.Render("▸ "+line))
			continue
		}
		lines = append(lines, theme.Value.Render("  "+line))
	}
	return strings.Join(lines, "\n")
}

// TracePanel renders the trace of one turn.
func TracePanel(events []trace.Event) string {
	if len(events) == 0 {
		return ""
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, theme.TraceStage.Render(fmt.Sprintf("%-9s", e.Stage))+" "+theme.TraceMessage.Render(e.Message))
	}
	return theme.TracePanel.Render(strings.Join(lines, "\n"))
}

// Hint is one chat command and what it does.
type Hint struct {
	Command     string
	Description string
}

// ChatHints are the commands the chat loop understands.
var ChatHints = []Hint{
	{"/profile <id>", "switch learner (clears the conversation)"},
	{"/profiles", "list learners"},
	{"/card", "show the current learner"},
	{"/trace", "toggle the agent trace"},
	{"/quit", "leave"},
}

// RenderHints renders command hints one per line.
func RenderHints(hints []Hint) string {
	lines := make([]string, 0, len(hints))
	for _, h := range hints {
		lines = append(lines, theme.Value.Render(fmt.Sprintf("  %-14s", h.Command))+theme.Hint.Render(h.Description))
	}
	return strings.Join(lines, "\n")
}

// Warn renders a one-line warning.
func Warn(msg string) string {
	return theme.Warning.Render(msg)
}
