package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/ui/theme"
)

// ButtonWidth is the fixed width of arcade buttons.
const ButtonWidth = 22

// ContentWidth returns the uniform inner width used for all arcade sections.
// All boxes are rendered at this width so they visually align.
func ContentWidth(frameWidth int) int {
	// Leave room for cabinet border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 64)
}

// CabinetFrame wraps content in a double-border cabinet frame,
// centering vertically and horizontally within the given dimensions.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int, accent bool) string {
	border := theme.Border
	if accent {
		border = theme.Secondary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

// Button renders a fixed-width arcade button. Disabled buttons are dimmed
// and never drawn as selected.
func Button(label string, selected, disabled bool) string {
	base := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	switch {
	case disabled:
		return base.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(label)
	case selected:
		return base.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Coin).
			BorderForeground(theme.Coin).
			Render("▸ " + label)
	default:
		return base.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
	}
}
