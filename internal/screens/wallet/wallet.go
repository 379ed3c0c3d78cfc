package wallet

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

type loadedMsg struct {
	Wallet rewards.Wallet
	Badges []store.BadgeEventRecord
	Err    error
}

// WalletScreen displays coins, XP, badges by rarity and unlocked games.
type WalletScreen struct {
	env          screens.Env
	wallet       rewards.Wallet
	badges       []store.BadgeEventRecord
	rarity       int // index into rewards.AllRarities
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*WalletScreen)(nil)
var _ screen.KeyHintProvider = (*WalletScreen)(nil)

// New creates a new WalletScreen.
func New(env screens.Env) *WalletScreen {
	return &WalletScreen{env: env.WithDefaults()}
}

func (s *WalletScreen) Init() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		ctx := context.Background()
		w, err := env.Rewards.Wallet(ctx)
		if err != nil || env.Events == nil {
			return loadedMsg{Wallet: w, Err: err}
		}
		badges, err := env.Events.QueryBadgeEvents(ctx, store.QueryOpts{})
		return loadedMsg{Wallet: w, Badges: badges, Err: err}
	}
}

func (s *WalletScreen) Title() string {
	return "Wallet"
}

func (s *WalletScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Rarity"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *WalletScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.wallet = msg.Wallet
		s.badges = msg.Badges
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		rarities := rewards.AllRarities()
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "right", "l":
			s.rarity = (s.rarity + 1) % len(rarities)
			s.scrollOffset = 0
		case "shift+tab", "left", "h":
			s.rarity = (s.rarity - 1 + len(rarities)) % len(rarities)
			s.scrollOffset = 0
		case "up", "k":
			s.scrollOffset = max(s.scrollOffset-1, 0)
		case "down", "j":
			s.scrollOffset = max(min(s.scrollOffset+1, len(s.filtered())-1), 0)
		}
	}
	return s, nil
}

func (s *WalletScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Opening wallet...")
	}

	var b strings.Builder
	b.WriteString("\n")
	totals := lipgloss.NewStyle().Foreground(theme.Coin).Bold(true).Render(fmt.Sprintf("● %d coins", s.wallet.Coins)) +
		"     " +
		lipgloss.NewStyle().Foreground(theme.XP).Bold(true).Render(fmt.Sprintf("✦ %d XP", s.wallet.XP)) +
		"     " +
		lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("%d badges", s.wallet.BadgeTotal))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, totals))
	b.WriteString("\n\n")

	// Rarity tabs.
	var tabs []string
	for i, r := range rewards.AllRarities() {
		label := fmt.Sprintf("%s (%d)", r.DisplayName(), s.wallet.Badges[r])
		if i == s.rarity {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.RarityColor(string(r))).Bold(true).Underline(true).Render(label))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "     ")))
	b.WriteString("\n\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	b.WriteString(s.renderBadges(width, height))

	if len(s.wallet.Unlocked) > 0 {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Unlocked games"))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Secondary), s.unlockedTitles()))
	}
	return b.String()
}

func (s *WalletScreen) renderBadges(width, height int) string {
	filtered := s.filtered()
	if len(filtered) == 0 {
		return layout.Centered(width, theme.Hint, "No badges of this rarity yet")
	}

	maxVisible := max(height-14, 3)
	start := s.scrollOffset
	end := min(start+maxVisible, len(filtered))

	var b strings.Builder
	for _, rec := range filtered[start:end] {
		bt := rewards.BadgeType(rec.BadgeType)
		line := fmt.Sprintf("  %s %-40s %s", bt.Icon(), rec.Reason, rec.Timestamp.Format("Jan 02, 2006"))
		style := lipgloss.NewStyle().Foreground(theme.RarityColor(rec.Rarity))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	if end < len(filtered) {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("... %d more", len(filtered)-end)))
	}
	return b.String()
}

func (s *WalletScreen) filtered() []store.BadgeEventRecord {
	want := string(rewards.AllRarities()[s.rarity])
	var out []store.BadgeEventRecord
	for _, b := range s.badges {
		if b.Rarity == want {
			out = append(out, b)
		}
	}
	return out
}

func (s *WalletScreen) unlockedTitles() string {
	titles := make([]string, 0, len(s.wallet.Unlocked))
	for _, id := range s.wallet.Unlocked {
		if g, ok := s.env.Registry.Get(id); ok {
			titles = append(titles, g.Title)
		} else {
			titles = append(titles, id)
		}
	}
	return strings.Join(titles, " · ")
}
