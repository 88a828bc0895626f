package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, warm and readable on dark and light terminals
var (
	Primary   = lipgloss.Color("#F59E0B") // Saffron
	Secondary = lipgloss.Color("#10B981") // Leaf Green
	Accent    = lipgloss.Color("#3B82F6") // Indigo Blue
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Value = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Warning = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Panels
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(0, 2)

	TracePanel = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Border).
			PaddingLeft(1)

	TraceStage = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	TraceMessage = lipgloss.NewStyle().
			Foreground(TextDim)
)

// Meters
var (
	MeterFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	MeterEmpty = lipgloss.NewStyle().
			Foreground(Border)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)
