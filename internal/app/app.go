package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/screens/home"
	"github.com/abhisek/kidquest/internal/screens/play"
	"github.com/abhisek/kidquest/internal/ui/layout"
)

// Options configures the terminal app.
type Options struct {
	Env screens.Env

	// GameID, when set, opens that game on top of the home screen.
	GameID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  screen.Screen // opened on Init above home
	stats  layout.Stats
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) (AppModel, error) {
	env := opts.Env.WithDefaults()
	if env.Registry == nil {
		return AppModel{}, fmt.Errorf("no game catalog configured")
	}

	m := AppModel{router: router.New(home.New(env))}
	if opts.GameID != "" {
		g, ok := env.Registry.Get(opts.GameID)
		if !ok {
			return AppModel{}, fmt.Errorf("unknown game %q", opts.GameID)
		}
		p, err := play.New(env, g)
		if err != nil {
			return AppModel{}, fmt.Errorf("start %s: %w", g.ID, err)
		}
		m.start = p
	}
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.start != nil {
		start := m.start
		return tea.Batch(cmd, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screens.WalletLoadedMsg:
		if msg.Err == nil {
			m.stats = layout.Stats{Coins: msg.Wallet.Coins, XP: msg.Wallet.XP}
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.stats, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
