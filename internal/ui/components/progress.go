package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/eduindia/internal/ui/theme"
)

// Meter renders a whole-number level as a row of pips, e.g. "●●●○○ 3/5".
type Meter struct {
	Value int
	Max   int
}

// NewMeter creates a meter. Value is clamped to [0, total].
func NewMeter(value, total int) Meter {
	if total < 1 {
		total = 1
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	return Meter{Value: value, Max: total}
}

// View renders the meter.
func (m Meter) View() string {
	filled := theme.MeterFilled.Render(strings.Repeat("●", m.Value))
	empty := theme.MeterEmpty.Render(strings.Repeat("○", m.Max-m.Value))
	return filled + empty + theme.Label.Render(fmt.Sprintf(" %d/%d", m.Value, m.Max))
}
