package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/store"
	"github.com/abhisek/kidquest/internal/ui/layout"
	"github.com/abhisek/kidquest/internal/ui/theme"
)

// Limit is the number of sessions shown.
const Limit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Badges   map[string][]store.BadgeEventRecord // sessionID → badges
	Err      error
}

// HistoryScreen displays past sessions and the badges they earned.
type HistoryScreen struct {
	env      screens.Env
	sessions []store.SessionSummaryRecord
	badges   map[string][]store.BadgeEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. env.Events must be set.
func New(env screens.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env.WithDefaults(),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.env.Events
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: Limit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Badges are a nice-to-have; show sessions even if they fail to load.
		all, err := repo.QueryBadgeEvents(ctx, store.QueryOpts{})
		bySession := make(map[string][]store.BadgeEventRecord)
		if err == nil {
			for _, b := range all {
				bySession[b.SessionID] = append(bySession[b.SessionID], b)
			}
		}
		return historyLoadedMsg{Sessions: sessions, Badges: bySession}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Badges"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.badges = msg.Badges
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = max(min(s.selected+1, len(s.sessions)-1), 0)
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return layout.Centered(width, theme.Hint, "\n\n  No games played yet. Pick one on the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+s.line(rec))))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderBadges(rec.SessionID, width))
		}
	}
	return b.String()
}

func (s *HistoryScreen) line(rec store.SessionSummaryRecord) string {
	title := rec.GameID
	if g, ok := s.env.Registry.Get(rec.GameID); ok {
		title = g.Title
	}
	status := "✗"
	if rec.Passed {
		status = "✓"
	}
	secs := rec.DurationMs / 1000
	return fmt.Sprintf("%s  %-28s %s %d/%d  %d:%02d  ● %d",
		rec.Timestamp.Format("Jan 02, 2006"), truncate(title, 28), status,
		rec.CorrectCount, rec.Total, secs/60, secs%60, rec.Reward)
}

func (s *HistoryScreen) renderBadges(sessionID string, width int) string {
	badges := s.badges[sessionID]
	if len(badges) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("    No badges this time")) + "\n"
	}
	var b strings.Builder
	for _, rec := range badges {
		bt, rarity := rewards.BadgeType(rec.BadgeType), rewards.Rarity(rec.Rarity)
		line := fmt.Sprintf("    %s %s %s: %s", bt.Icon(), rarity.DisplayName(), bt.DisplayName(), rec.Reason)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.RarityColor(rec.Rarity)).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
