package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/ui/theme"
)

// MenuItem represents a single row in a navigation menu.
type MenuItem struct {
	Label    string
	Detail   string // dim text after the label
	Action   func() tea.Cmd
	Disabled bool
	Heading  bool // section title, never selectable
}

func (i MenuItem) selectable() bool {
	return !i.Disabled && !i.Heading
}

// Menu is a vertical navigation menu with optional section headings.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first selectable item highlighted.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	for i, item := range items {
		if item.selectable() {
			m.Selected = i
			break
		}
	}
	return m
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if m.Items[i].selectable() {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if m.Items[i].selectable() {
				m.Selected = i
				break
			}
		}
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil {
			return m, item.Action()
		}
	}

	return m, nil
}

// Current returns the highlighted item.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// View renders at most lines rows, scrolled so the selection stays visible.
// A non-positive lines renders every row.
func (m Menu) View(lines int) string {
	start, end := 0, len(m.Items)
	if lines > 0 && len(m.Items) > lines {
		start = max(m.Selected-lines/2, 0)
		end = min(start+lines, len(m.Items))
		start = max(end-lines, 0)
	}

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderItem(i))
	}
	return strings.Join(rows, "\n")
}

func (m Menu) renderItem(i int) string {
	item := m.Items[i]
	detail := ""
	if item.Detail != "" {
		detail = "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Detail)
	}

	switch {
	case item.Heading:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(item.Label)
	case item.Disabled:
		return theme.Locked.Render("    "+item.Label) + detail
	case i == m.Selected:
		return theme.Selected.Render("  ▸ "+item.Label) + detail
	default:
		return theme.Unselected.Render("    "+item.Label) + detail
	}
}
