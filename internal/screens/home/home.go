package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/screens/history"
	"github.com/abhisek/kidquest/internal/screens/play"
	"github.com/abhisek/kidquest/internal/screens/wallet"
	"github.com/abhisek/kidquest/internal/ui/components"
	"github.com/abhisek/kidquest/internal/ui/layout"
	"github.com/abhisek/kidquest/internal/ui/theme"
)

// HomeScreen lists the games grouped by pillar. Games stay locked until the
// game that leads to them is passed.
type HomeScreen struct {
	env     screens.Env
	wallet  rewards.Wallet
	menu    components.Menu
	ids     []string // game id per menu row, empty for other rows
	loaded  bool
	warning string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env screens.Env) *HomeScreen {
	h := &HomeScreen{env: env.WithDefaults()}
	h.rebuild()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return screens.LoadWallet(h.env)
}

// Resume reloads the wallet after a game so new unlocks show up.
func (h *HomeScreen) Resume() tea.Cmd {
	return screens.LoadWallet(h.env)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(screens.WalletLoadedMsg); ok {
		h.loaded = true
		h.warning = ""
		if msg.Err != nil {
			h.warning = "Couldn't load your progress: " + msg.Err.Error()
		} else {
			h.wallet = msg.Wallet
		}
		h.rebuild()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// rebuild recreates the menu from the registry and wallet, keeping the
// highlighted row.
func (h *HomeScreen) rebuild() {
	var current string
	if h.menu.Selected >= 0 && h.menu.Selected < len(h.ids) {
		current = h.ids[h.menu.Selected]
	}

	var items []components.MenuItem
	h.ids = h.ids[:0]
	add := func(item components.MenuItem, id string) {
		items = append(items, item)
		h.ids = append(h.ids, id)
	}

	for _, p := range h.env.Registry.Pillars() {
		add(components.MenuItem{Label: p.DisplayName(), Heading: true}, "")
		for _, g := range h.env.Registry.ByPillar(p) {
			add(h.gameItem(g), g.ID)
		}
	}

	add(components.MenuItem{Label: "More", Heading: true}, "")
	add(components.MenuItem{Label: "Wallet", Action: h.push(func() screen.Screen { return wallet.New(h.env) })}, "")
	if h.env.Events != nil {
		add(components.MenuItem{Label: "History", Action: h.push(func() screen.Screen { return history.New(h.env) })}, "")
	}
	add(components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }}, "")

	h.menu = components.NewMenu(items)
	if current == "" {
		return
	}
	for i, id := range h.ids {
		if id == current && !items[i].Disabled {
			h.menu.Selected = i
		}
	}
}

func (h *HomeScreen) gameItem(g catalog.Game) components.MenuItem {
	item := components.MenuItem{Label: g.Title}
	switch {
	case !screens.Playable(h.env, h.wallet, g.ID):
		item.Disabled = true
		item.Detail = "🔒 locked"
		if src, ok := h.env.Registry.UnlockedBy(g.ID); ok {
			item.Detail = "🔒 pass " + src.Title
		}
		return item
	case h.wallet.HasPassed(g.ID):
		item.Detail = "✓"
	}

	env := h.env
	item.Action = func() tea.Cmd {
		p, err := play.New(env, g)
		if err != nil {
			env.Logger.Error("start game failed", "game", g.ID, "error", err)
			return nil
		}
		return func() tea.Msg { return router.PushScreenMsg{Screen: p} }
	}
	return item
}

func (h *HomeScreen) push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height+8)
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.wallet, len(h.wallet.Passed), h.env.Registry.Len(), cw, compact),
	}
	if h.warning != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.Accent).Render(h.warning))
	}

	used := 2 // cabinet border
	for _, s := range sections {
		used += lipgloss.Height(s) + 1
	}
	menu := lipgloss.NewStyle().Width(cw).Render(h.menu.View(max(height-used-1, 3)))
	sections = append(sections, menu)

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
