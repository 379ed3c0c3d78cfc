package result

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/ui/components"
	"github.com/abhisek/kidquest/internal/ui/layout"
	"github.com/abhisek/kidquest/internal/ui/theme"
)

// ReplayFunc opens a play screen for an in-progress session of game.
type ReplayFunc func(game catalog.Game, s engine.Session) screen.Screen

// NextFunc opens a play screen for a fresh session of game.
type NextFunc func(game catalog.Game) (screen.Screen, error)

type recordedMsg struct {
	Award *rewards.Award
	Err   error
}

type action int

const (
	actionContinue action = iota
	actionRetry
	actionHome
)

var actionLabels = []string{"CONTINUE", "TRY AGAIN", "HOME"}

// ResultScreen shows the outcome of a completed session and records it.
type ResultScreen struct {
	env     screens.Env
	game    catalog.Game
	res     rewards.Result
	outcome engine.Outcome
	award   rewards.Award
	next    *catalog.Game

	replay ReplayFunc
	open   NextFunc

	selected action
	saving   bool
	warning  string
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates the result screen for a completed session.
func New(env screens.Env, game catalog.Game, res rewards.Result, replay ReplayFunc, open NextFunc) (*ResultScreen, error) {
	env = env.WithDefaults()
	outcome, err := engine.ComputeOutcome(res.Session)
	if err != nil {
		return nil, err
	}
	award, err := env.Rewards.Evaluate(res)
	if err != nil {
		return nil, err
	}

	r := &ResultScreen{
		env:     env,
		game:    game,
		res:     res,
		outcome: outcome,
		award:   award,
		replay:  replay,
		open:    open,
		saving:  true,
	}
	if g, ok := env.Registry.Next(game.ID); ok {
		r.next = &g
	}
	r.selected = actionRetry
	if r.canContinue() {
		r.selected = actionContinue
	}
	return r, nil
}

// Init records the session. Recording runs in the background; a failure is
// shown as a warning and never retried.
func (r *ResultScreen) Init() tea.Cmd {
	svc, res := r.env.Rewards, r.res
	return func() tea.Msg {
		award, err := svc.Record(context.Background(), res)
		return recordedMsg{Award: award, Err: err}
	}
}

func (r *ResultScreen) Title() string {
	return "Results"
}

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
}

// canContinue reports whether the next game is open: the session passed and
// this game leads somewhere.
func (r *ResultScreen) canContinue() bool {
	return r.outcome.Passed && r.next != nil
}

func (r *ResultScreen) enabled(a action) bool {
	return a != actionContinue || r.canContinue()
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case recordedMsg:
		r.saving = false
		if msg.Err != nil {
			r.warning = "Couldn't save your rewards: " + msg.Err.Error()
		}
		return r, screens.LoadWallet(r.env)

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "up", "k":
			r.move(-1)
		case "right", "l", "down", "j", "tab":
			r.move(1)
		case "esc":
			return r, func() tea.Msg { return router.PopToRootMsg{} }
		case "enter":
			return r.activate()
		}
	}
	return r, nil
}

func (r *ResultScreen) move(step int) {
	for a := r.selected + action(step); a >= actionContinue && a <= actionHome; a += action(step) {
		if r.enabled(a) {
			r.selected = a
			return
		}
	}
}

func (r *ResultScreen) activate() (screen.Screen, tea.Cmd) {
	switch r.selected {
	case actionContinue:
		if !r.canContinue() {
			return r, nil
		}
		next, err := r.open(*r.next)
		if err != nil {
			r.warning = err.Error()
			return r, nil
		}
		return r, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case actionRetry:
		// Reset is the only way to try a completed session again.
		s := r.replay(r.game, engine.Reset(r.res.Session))
		return r, func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
	default:
		return r, func() tea.Msg { return router.PopToRootMsg{} }
	}
}

func (r *ResultScreen) View(width, height int) string {
	o := r.outcome
	var sections []string

	mood, headline, style := components.MoodEncourage, "Almost there! Give it another try.", theme.Warning
	if o.Passed {
		mood, headline, style = components.MoodCheer, "You passed!", theme.Correct
	}
	if !layout.IsCompact(width, height+8) {
		sections = append(sections, components.Mascot(mood))
	}
	sections = append(sections, style.Render(headline))

	score := fmt.Sprintf("%d / %d correct   (%s needed)", o.CorrectCount, o.Total, r.res.Session.Rules().PassThreshold)
	sections = append(sections, theme.Body.Render(score))

	sections = append(sections, r.renderRewards())

	if len(r.award.Badges) > 0 {
		var lines []string
		for _, b := range r.award.Badges {
			line := fmt.Sprintf("%s %s %s: %s", b.Type.Icon(), b.Rarity.DisplayName(), b.Type.DisplayName(), b.Reason)
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.RarityColor(string(b.Rarity))).Render(line))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if r.award.Unlocked != "" && r.next != nil {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render("Unlocked: "+r.next.Title))
	}

	sections = append(sections, r.renderButtons())

	switch {
	case r.warning != "":
		sections = append(sections, theme.Warning.Render(r.warning))
	case r.saving:
		sections = append(sections, theme.Hint.Render("Saving..."))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, withGaps(sections)...)
	return components.CabinetFrame(content, width, height)
}

func (r *ResultScreen) renderRewards() string {
	o := r.outcome
	coins := lipgloss.NewStyle().Foreground(theme.Coin).Bold(true).Render(fmt.Sprintf("● %d coins", o.TotalReward))
	parts := []string{coins}
	if o.Bonus > 0 {
		parts = append(parts, theme.Hint.Render(fmt.Sprintf("(includes %d bonus)", o.Bonus)))
	}
	if o.XP > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.XP).Bold(true).Render(fmt.Sprintf("✦ %d XP", o.XP)))
	}
	return strings.Join(parts, "   ")
}

func (r *ResultScreen) renderButtons() string {
	buttons := make([]string, 0, len(actionLabels))
	for i, label := range actionLabels {
		a := action(i)
		buttons = append(buttons, components.Button(label, a == r.selected, !r.enabled(a)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}

func withGaps(sections []string) []string {
	out := make([]string, 0, len(sections)*2)
	for i, s := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}
