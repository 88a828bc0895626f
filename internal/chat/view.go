package chat

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/ui"
	"github.com/abhisek/eduindia/internal/ui/components"
	"github.com/abhisek/eduindia/internal/ui/theme"
)

const (
	minWidth  = 40
	minHeight = 10
)

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if m.width < minWidth || m.height < minHeight {
		v.SetContent(theme.Hint.Render(fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.",
			m.width, m.height, minWidth, minHeight)))
		return v
	}

	v.SetContent(lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.footer()))
	return v
}

func (m *Model) header() string {
	s := m.active().Snapshot()
	title := theme.Title.Render("EduIndia") + theme.Label.Render(" · ") + theme.Value.Render(s.DisplayName)
	meter := theme.Label.Render("mastery ") + components.NewMeter(s.MasteryScore, learner.MaxMasteryScore).View()
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(meter)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + meter
}

func (m *Model) footer() string {
	status := theme.Hint.Render("/help for commands · PgUp/PgDn scroll · Ctrl+C quit")
	if m.waiting {
		status = theme.Hint.Render("Thinking…")
	}
	return m.input.View() + "\n" + status
}

// resize lays out the viewport between the header and the footer.
func (m *Model) resize(width, height int) {
	if width != m.width {
		m.md = ui.NewMarkdown(m.style, max(width-2, 20))
		m.invalidate()
	}
	m.width, m.height = width, height
	m.input.SetWidth(max(width-4, 1))

	h := height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(max(h, 1))
	m.refresh()
}

// invalidate drops cached renderings after a width or trace change.
func (m *Model) invalidate() {
	for i := range m.transcript {
		m.transcript[i].rendered = ""
	}
}

// refresh redraws the transcript and follows the newest entry.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.transcript))
	for i := range m.transcript {
		e := &m.transcript[i]
		if e.rendered == "" {
			e.rendered = m.renderEntry(*e)
		}
		blocks = append(blocks, e.rendered)
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderEntry(e entry) string {
	switch e.speaker {
	case speakerLearner:
		return theme.Selected.Render("You") + "\n" + theme.Value.Render(e.text)
	case speakerTutor:
		out := m.md.Render(e.text)
		if m.showTrace {
			if panel := ui.TracePanel(e.trace); panel != "" {
				out = panel + "\n" + out
			}
		}
		return out
	default:
		return e.text
	}
}
