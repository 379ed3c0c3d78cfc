package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/ui/theme"
)

// Choice is one option shown to the player.
type Choice struct {
	ID    string
	Label string
}

// ChoiceMode controls how a ChoiceList collects the player's answer.
type ChoiceMode int

const (
	ChooseOne   ChoiceMode = iota // cursor position is the answer
	ChooseMany                    // space toggles options
	ChooseOrder                   // space appends to or removes from the sequence
)

// ChoiceList is a cursor-driven option selector. It never submits on its
// own; the owning screen reads Picked when the player confirms.
type ChoiceList struct {
	Choices []Choice
	Mode    ChoiceMode
	Cursor  int

	picked []string // toggled ids (ChooseMany) or sequence (ChooseOrder)
}

// NewChoiceList creates a selector over choices.
func NewChoiceList(choices []Choice, mode ChoiceMode) ChoiceList {
	return ChoiceList{Choices: choices, Mode: mode}
}

// Update handles cursor movement and toggling.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Choices) == 0 {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		c.Cursor = max(c.Cursor-1, 0)
	case "down", "j":
		c.Cursor = min(c.Cursor+1, len(c.Choices)-1)
	case "space", " ":
		if c.Mode != ChooseOne {
			c.toggle(c.Choices[c.Cursor].ID)
		}
	case "backspace":
		if c.Mode == ChooseOrder && len(c.picked) > 0 {
			c.picked = c.picked[:len(c.picked)-1]
		}
	default:
		if n, ok := digit(key); ok && n <= len(c.Choices) {
			c.Cursor = n - 1
			if c.Mode != ChooseOne {
				c.toggle(c.Choices[c.Cursor].ID)
			}
		}
	}
	return c, nil
}

func (c *ChoiceList) toggle(id string) {
	if i := slices.Index(c.picked, id); i >= 0 {
		c.picked = slices.Delete(c.picked, i, i+1)
		return
	}
	c.picked = append(c.picked, id)
}

// Picked returns the answer collected so far: the highlighted id for
// ChooseOne, toggled ids in option order for ChooseMany, and the sequence
// for ChooseOrder.
func (c ChoiceList) Picked() []string {
	switch c.Mode {
	case ChooseOne:
		if c.Cursor < len(c.Choices) {
			return []string{c.Choices[c.Cursor].ID}
		}
		return nil
	case ChooseMany:
		var ids []string
		for _, ch := range c.Choices {
			if slices.Contains(c.picked, ch.ID) {
				ids = append(ids, ch.ID)
			}
		}
		return ids
	default:
		return slices.Clone(c.picked)
	}
}

// View renders the options. Marks shows per-option feedback once an answer
// is judged; pass nil while the player is still choosing.
func (c ChoiceList) View(marks map[string]bool) string {
	var b strings.Builder
	for i, ch := range c.Choices {
		cursor := "  "
		if i == c.Cursor && marks == nil {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s %d) %s", cursor, c.marker(ch.ID), i+1, ch.Label)

		style := theme.Unselected
		if correct, judged := marks[ch.ID]; judged {
			style = theme.Incorrect
			if correct {
				style = theme.Correct
			}
		} else if marks != nil {
			style = theme.Locked
		} else if i == c.Cursor {
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (c ChoiceList) marker(id string) string {
	switch c.Mode {
	case ChooseMany:
		if slices.Contains(c.picked, id) {
			return "[x]"
		}
		return "[ ]"
	case ChooseOrder:
		if i := slices.Index(c.picked, id); i >= 0 {
			return fmt.Sprintf("(%d)", i+1)
		}
		return "( )"
	default:
		return ""
	}
}

// Matcher pairs every left item with one right item. Left/right arrows
// cycle the partner of the highlighted left item.
type Matcher struct {
	Left   []Choice
	Right  []Choice
	Cursor int

	assigned map[string]int // left id -> index into Right
}

// NewMatcher creates an empty pairing.
func NewMatcher(left, right []Choice) Matcher {
	return Matcher{Left: left, Right: right, assigned: make(map[string]int)}
}

// Update handles navigation and partner cycling.
func (m Matcher) Update(msg tea.Msg) (Matcher, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Left) == 0 || len(m.Right) == 0 {
		return m, nil
	}

	id := m.Left[m.Cursor].ID
	switch kmsg.String() {
	case "up", "k":
		m.Cursor = max(m.Cursor-1, 0)
	case "down", "j":
		m.Cursor = min(m.Cursor+1, len(m.Left)-1)
	case "right", "l", "space", " ":
		m.assign(id, 1)
	case "left", "h":
		m.assign(id, -1)
	case "backspace":
		m.assigned = cloneAssigned(m.assigned)
		delete(m.assigned, id)
	}
	return m, nil
}

func (m *Matcher) assign(left string, step int) {
	m.assigned = cloneAssigned(m.assigned)
	cur, ok := m.assigned[left]
	switch {
	case !ok && step > 0:
		cur = 0
	case !ok:
		cur = len(m.Right) - 1
	default:
		cur = (cur + step + len(m.Right)) % len(m.Right)
	}
	m.assigned[left] = cur
}

func cloneAssigned(a map[string]int) map[string]int {
	out := make(map[string]int, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Complete reports whether every left item has a partner.
func (m Matcher) Complete() bool {
	return len(m.assigned) == len(m.Left)
}

// Pairs returns the chosen left id to right id mapping.
func (m Matcher) Pairs() map[string]string {
	pairs := make(map[string]string, len(m.assigned))
	for left, i := range m.assigned {
		pairs[left] = m.Right[i].ID
	}
	return pairs
}

// View renders one row per left item with its current partner.
func (m Matcher) View() string {
	width := 0
	for _, l := range m.Left {
		width = max(width, lipgloss.Width(l.Label))
	}

	var b strings.Builder
	for i, l := range m.Left {
		partner := "?"
		if j, ok := m.assigned[l.ID]; ok {
			partner = m.Right[j].Label
		}
		cursor := "  "
		style := theme.Unselected
		if i == m.Cursor {
			cursor = "▸ "
			style = theme.Selected
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(l.Label))
		b.WriteString(style.Render(fmt.Sprintf("%s%s%s  ⟷  ‹ %s ›", cursor, l.Label, pad, partner)))
		b.WriteString("\n")
	}
	return b.String()
}

func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}
