package play

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/ui/components"
	"github.com/abhisek/kidquest/internal/ui/layout"
	"github.com/abhisek/kidquest/internal/ui/theme"
)

func (p *PlayScreen) View(width, height int) string {
	if p.confirmQuit {
		return renderQuitConfirm(width)
	}

	var b strings.Builder
	b.WriteString(p.renderStatus(width))
	b.WriteString("\n\n")

	c := p.shown()
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), c.Prompt))
	b.WriteString("\n\n")

	if p.feedback {
		b.WriteString(p.renderFeedback(c, width))
	} else {
		b.WriteString(p.renderAnswer(c, width))
		if p.hint != "" {
			b.WriteString("\n")
			b.WriteString(layout.Centered(width, theme.Warning, p.hint))
		}
	}

	if p.warning != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(width, theme.Hint, p.warning))
	}
	return b.String()
}

// shown returns the challenge on screen: the judged one while feedback is
// visible, the current one otherwise.
func (p *PlayScreen) shown() engine.Challenge {
	if p.feedback {
		answered, _ := p.session.Progress()
		return p.session.Challenges()[answered-1]
	}
	c, _ := p.session.Current()
	return c
}

func (p *PlayScreen) renderStatus(width int) string {
	answered, total := p.session.Progress()
	bar := components.NewProgressBar("", answered, total, min(width/2, 40)).View()

	coins := lipgloss.NewStyle().Foreground(theme.Coin).Bold(true).
		Render(fmt.Sprintf("● %d", p.session.Reward()))
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render("  " + p.game.Pillar.DisplayName())

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(bar) - lipgloss.Width(coins) - 6; pad > 0 {
		line += strings.Repeat(" ", pad) + bar + "    " + coins
	}
	return line + "\n" + layout.Divider(width)
}

func (p *PlayScreen) renderAnswer(c engine.Challenge, width int) string {
	var block string
	switch c.Variant {
	case engine.VariantText:
		block = "Answer: " + p.input.View()
		if c.MinTextLength > 0 {
			block += "\n\n" + theme.Hint.Render(fmt.Sprintf("Write at least %d characters.", c.MinTextLength))
		}
	case engine.VariantMatch:
		block = p.matcher.View()
	default:
		block = p.choices.View(nil)
		switch c.Variant {
		case engine.VariantSet:
			block += "\n" + theme.Hint.Render(setHint(c))
		case engine.VariantOrder:
			block += "\n" + theme.Hint.Render("Press Space on each card in the right order.")
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}

func setHint(c engine.Challenge) string {
	if c.SetPolicy == engine.SetAtLeast {
		return fmt.Sprintf("Pick at least %d that fit.", c.MinSelected)
	}
	return "Pick every answer that fits."
}

func (p *PlayScreen) renderFeedback(c engine.Challenge, width int) string {
	last, _ := p.session.LastResponse()

	var b strings.Builder
	if last.Satisfied {
		msg := "Great job!"
		if last.RewardDelta > 0 {
			msg = fmt.Sprintf("Great job! +%d %s", last.RewardDelta, plural(last.RewardDelta, "coin", "coins"))
		}
		b.WriteString(layout.Centered(width, theme.Correct, msg))
	} else {
		b.WriteString(layout.Centered(width, theme.Incorrect, "Not quite"))
	}
	b.WriteString("\n\n")

	if answer := revealAnswer(c, last); answer != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, answer))
		b.WriteString("\n")
	}

	if c.Explanation != "" {
		exp := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(c.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	if !last.Satisfied {
		b.WriteString(layout.Centered(width, theme.Hint, "Press any key to continue..."))
	}
	return b.String()
}

// revealAnswer shows the learner's answer against the expected one.
func revealAnswer(c engine.Challenge, last engine.Response) string {
	sel := last.Selection
	switch c.Variant {
	case engine.VariantSingle:
		marks := map[string]bool{sel.OptionID: false}
		if o, ok := c.CorrectOption(); ok {
			marks[o.ID] = true
		}
		return listFor(c, components.ChooseOne).View(marks)
	case engine.VariantSet:
		marks := make(map[string]bool)
		for _, id := range sel.OptionIDs {
			marks[id] = slices.Contains(c.Target, id)
		}
		for _, id := range c.Target {
			marks[id] = true
		}
		return listFor(c, components.ChooseMany).View(marks)
	case engine.VariantOrder:
		if last.Satisfied {
			return ""
		}
		return theme.Body.Render("Right order: " + labels(c, c.Target, " → "))
	case engine.VariantMatch:
		if last.Satisfied {
			return ""
		}
		left, _ := c.MatchSides()
		var lines []string
		for _, l := range left {
			lines = append(lines, labels(c, []string{l}, "")+"  ⟷  "+labels(c, []string{c.Pairs[l]}, ""))
		}
		return theme.Body.Render(strings.Join(lines, "\n"))
	default:
		if last.Satisfied {
			return theme.Body.Render("Thanks for sharing your thoughts!")
		}
		return theme.Body.Render(fmt.Sprintf("Try writing at least %d characters next time.", max(c.MinTextLength, 1)))
	}
}

func listFor(c engine.Challenge, mode components.ChoiceMode) components.ChoiceList {
	return components.NewChoiceList(choicesOf(c, nil), mode)
}

func labels(c engine.Challenge, ids []string, sep string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if o, ok := c.Option(id); ok {
			out = append(out, o.Label)
		}
	}
	return strings.Join(out, sep)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave this game?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Answers so far will not count."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep playing"))
	return b.String()
}
