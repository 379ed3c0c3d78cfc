package play

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/screens/result"
	"github.com/abhisek/kidquest/internal/ui/components"
	"github.com/abhisek/kidquest/internal/ui/layout"
)

// CelebrationDelay is how long a correct answer is celebrated before the
// next challenge appears.
const CelebrationDelay = time.Second

// textCharLimit caps reflective answers.
const textCharLimit = 280

// PlayScreen runs one session of a game. It owns all timing: the engine
// returns the judged state immediately and the screen decides when to show
// the next challenge.
type PlayScreen struct {
	env       screens.Env
	game      catalog.Game
	session   engine.Session
	sessionID string
	started   time.Time

	choices components.ChoiceList
	matcher components.Matcher
	input   components.TextInput

	feedback    bool // showing the judgement of the last response
	confirmQuit bool
	hint        string // why the last submit was declined
	warning     string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

// New starts a fresh session of game.
func New(env screens.Env, game catalog.Game) (*PlayScreen, error) {
	s, err := game.Start()
	if err != nil {
		return nil, err
	}
	return Resume(env, game, s), nil
}

// Resume plays an existing in-progress session, typically one returned by
// engine.Reset.
func Resume(env screens.Env, game catalog.Game, s engine.Session) *PlayScreen {
	env = env.WithDefaults()
	p := &PlayScreen{
		env:       env,
		game:      game,
		session:   s,
		sessionID: env.NewSessionID(),
		started:   env.Now(),
	}
	p.prepare()
	return p
}

// Replay is the result screen's way back into a session.
func Replay(env screens.Env) result.ReplayFunc {
	return func(game catalog.Game, s engine.Session) screen.Screen {
		return Resume(env, game, s)
	}
}

func (p *PlayScreen) Init() tea.Cmd {
	env, gameID, sessionID := p.env, p.game.ID, p.sessionID
	started := func() tea.Msg {
		return startedMsg{Err: env.Rewards.Started(context.Background(), gameID, sessionID)}
	}
	if c, ok := p.session.Current(); ok && c.Variant == engine.VariantText {
		return tea.Batch(started, p.input.Init())
	}
	return started
}

func (p *PlayScreen) Title() string {
	return p.game.Title
}

func (p *PlayScreen) KeyHints() []layout.KeyHint {
	if p.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave game"},
			{Key: "N", Description: "Keep playing"},
		}
	}
	if p.feedback {
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}

	hints := []layout.KeyHint{{Key: "↑↓", Description: "Move"}}
	c, _ := p.session.Current()
	switch c.Variant {
	case engine.VariantSet:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"})
	case engine.VariantOrder:
		hints = append(hints,
			layout.KeyHint{Key: "Space", Description: "Place"},
			layout.KeyHint{Key: "⌫", Description: "Undo"})
	case engine.VariantMatch:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Pair"})
	case engine.VariantText:
		hints = hints[:0]
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Submit"},
		layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (p *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.Err != nil {
			p.warning = "Progress may not be saved."
		}
		return p, nil

	case advanceMsg:
		// Ignore ticks from a celebration the player already skipped.
		if answered, _ := p.session.Progress(); p.feedback && msg.answered == answered {
			return p.advance()
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if c, ok := p.session.Current(); ok && c.Variant == engine.VariantText && !p.feedback {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *PlayScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if p.confirmQuit {
		switch key {
		case "y", "Y":
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			p.confirmQuit = false
		}
		return p, nil
	}

	if p.feedback {
		return p.advance()
	}

	switch key {
	case "esc":
		p.confirmQuit = true
		return p, nil
	case "enter":
		return p.submit()
	}

	c, _ := p.session.Current()
	var cmd tea.Cmd
	switch c.Variant {
	case engine.VariantText:
		p.input, cmd = p.input.Update(msg)
	case engine.VariantMatch:
		p.matcher, cmd = p.matcher.Update(msg)
	default:
		p.choices, cmd = p.choices.Update(msg)
	}
	p.hint = ""
	return p, cmd
}

// selection builds the engine selection from the widget state. It returns a
// hint instead when the answer is obviously incomplete.
func (p *PlayScreen) selection(c engine.Challenge) (engine.Selection, string) {
	switch c.Variant {
	case engine.VariantSingle:
		picked := p.choices.Picked()
		if len(picked) == 0 {
			return engine.Selection{}, "Pick an answer first."
		}
		return engine.Pick(picked[0]), ""
	case engine.VariantSet:
		picked := p.choices.Picked()
		if len(picked) == 0 {
			return engine.Selection{}, "Pick at least one answer with Space."
		}
		return engine.PickSet(picked...), ""
	case engine.VariantOrder:
		// Targets may leave distractor cards out, so only the target
		// length is required.
		picked := p.choices.Picked()
		switch {
		case len(picked) >= len(c.Target):
		case len(c.Target) == len(c.Options):
			return engine.Selection{}, "Place every card in order first."
		default:
			return engine.Selection{}, fmt.Sprintf("Place %d cards in order first.", len(c.Target))
		}
		return engine.PickOrder(picked...), ""
	case engine.VariantMatch:
		if !p.matcher.Complete() {
			return engine.Selection{}, "Give every item a partner first."
		}
		return engine.Match(p.matcher.Pairs()), ""
	default:
		if strings.TrimSpace(p.input.Value()) == "" {
			return engine.Selection{}, "Write your answer first."
		}
		return engine.Answer(p.input.Value()), ""
	}
}

func (p *PlayScreen) submit() (screen.Screen, tea.Cmd) {
	c, ok := p.session.Current()
	if !ok {
		return p, nil
	}
	sel, hint := p.selection(c)
	if hint != "" {
		p.hint = hint
		return p, nil
	}

	next, err := engine.Submit(p.session, sel)
	if err != nil {
		// The session is unchanged; let the player fix the answer.
		p.hint = err.Error()
		var invalid *engine.InvalidSelectionError
		if !errors.As(err, &invalid) {
			p.env.Logger.Error("submit failed", "game", p.game.ID, "session", p.sessionID, "error", err)
		}
		return p, nil
	}

	p.session = next
	p.feedback = true
	p.hint = ""

	last, _ := p.session.LastResponse()
	if !last.Satisfied {
		return p, nil
	}
	answered, _ := p.session.Progress()
	return p, tea.Tick(CelebrationDelay, func(time.Time) tea.Msg {
		return advanceMsg{answered: answered}
	})
}

// advance leaves the feedback view: on to the next challenge, or to the
// result screen once the session is complete.
func (p *PlayScreen) advance() (screen.Screen, tea.Cmd) {
	p.feedback = false
	if p.session.Done() {
		res := rewards.Result{
			GameID:    p.game.ID,
			Title:     p.game.Title,
			SessionID: p.sessionID,
			Next:      p.game.Next,
			Session:   p.session,
			Duration:  p.env.Now().Sub(p.started),
		}
		next, err := result.New(p.env, p.game, res, Replay(p.env), p.nextScreen)
		if err != nil {
			p.env.Logger.Error("show result failed", "game", p.game.ID, "error", err)
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return p, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}

	p.prepare()
	if c, _ := p.session.Current(); c.Variant == engine.VariantText {
		return p, p.input.Init()
	}
	return p, nil
}

// nextScreen opens the game unlocked by this one.
func (p *PlayScreen) nextScreen(g catalog.Game) (screen.Screen, error) {
	return New(p.env, g)
}

// prepare resets the answer widget for the current challenge.
func (p *PlayScreen) prepare() {
	p.hint = ""
	c, ok := p.session.Current()
	if !ok {
		return
	}

	switch c.Variant {
	case engine.VariantText:
		p.input = components.NewTextInput("Type your answer...", c.MinTextLength, textCharLimit)
	case engine.VariantMatch:
		left, right := c.MatchSides()
		p.matcher = components.NewMatcher(choicesOf(c, left), choicesOf(c, right))
	case engine.VariantSet:
		p.choices = components.NewChoiceList(choicesOf(c, nil), components.ChooseMany)
	case engine.VariantOrder:
		p.choices = components.NewChoiceList(choicesOf(c, nil), components.ChooseOrder)
	default:
		p.choices = components.NewChoiceList(choicesOf(c, nil), components.ChooseOne)
	}
}

// choicesOf returns the options with the given ids, or every option when
// ids is nil.
func choicesOf(c engine.Challenge, ids []string) []components.Choice {
	var out []components.Choice
	if ids == nil {
		for _, o := range c.Options {
			out = append(out, components.Choice{ID: o.ID, Label: o.Label})
		}
		return out
	}
	for _, id := range ids {
		if o, ok := c.Option(id); ok {
			out = append(out, components.Choice{ID: o.ID, Label: o.Label})
		}
	}
	return out
}
