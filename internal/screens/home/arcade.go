package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/ui/theme"
)

// Block-letter title.
const arcadeTitleFull = `█▄▀ █ █▀▄   █▀█ █ █ █▀▀ █▀ ▀█▀
█ █ █ █▄▀   ▀▀█ █▄█ ██▄ ▄█  █ `

const arcadeTitleCompact = "K · I · D · Q · U · E · S · T"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Coin).
		Bold(true).
		Render(title)
}

// renderStatsBar renders the wallet in a bordered box matching content width.
func renderStatsBar(w rewards.Wallet, played, total, cw int, compact bool) string {
	coinStyle := lipgloss.NewStyle().Foreground(theme.Coin).Bold(true)
	xpStyle := lipgloss.NewStyle().Foreground(theme.XP).Bold(true)
	badgeStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s %s",
			coinStyle.Render(fmt.Sprintf("●%d", w.Coins)),
			xpStyle.Render(fmt.Sprintf("✦%d", w.XP)),
			badgeStyle.Render(fmt.Sprintf("🏆%d", w.BadgeTotal)),
			dimStyle.Render(fmt.Sprintf("%d/%d", played, total)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s  %s",
			coinStyle.Render(fmt.Sprintf("● %d COINS", w.Coins)),
			xpStyle.Render(fmt.Sprintf("✦ %d XP", w.XP)),
			badgeStyle.Render(fmt.Sprintf("🏆 %d", w.BadgeTotal)),
			dimStyle.Render(fmt.Sprintf("%d/%d CLEARED", played, total)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.XP).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}
