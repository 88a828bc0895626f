package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Glamour style names accepted by NewMarkdown.
const (
	StylePlain = ""
	StyleAuto  = "auto"
	StyleDark  = "dark"
)

// Markdown renders tutor replies for the terminal. It falls back to the
// raw text when glamour cannot render.
type Markdown struct {
	r *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width. StylePlain disables
// rendering; StyleAuto asks the terminal for its background, so it must
// not be used while a full-screen program owns the terminal.
func NewMarkdown(style string, width int) *Markdown {
	if style == StylePlain {
		return &Markdown{}
	}
	styleOpt := glamour.WithStandardStyle(style)
	if style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return &Markdown{}
	}
	return &Markdown{r: r}
}

// Render returns text as styled terminal output without a trailing
// newline.
func (m *Markdown) Render(text string) string {
	if m.r == nil {
		return strings.TrimRight(text, "\n")
	}
	out, err := m.r.Render(text)
	if err != nil {
		return strings.TrimRight(text, "\n")
	}
	return strings.TrimRight(out, "\n")
}
