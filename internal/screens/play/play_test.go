package play

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screens/result"
	"github.com/abhisek/kidquest/internal/screens/screenstest"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(p *PlayScreen, s string) {
	for _, r := range s {
		p.Update(keyPress(r))
	}
}

func newTestPlay(t *testing.T, id string) *PlayScreen {
	t.Helper()
	p, err := New(screenstest.Env(t), screenstest.Game(t, id))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func answered(p *PlayScreen) int {
	n, _ := p.session.Progress()
	return n
}

func TestPlayScreen_Title(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)
	if p.Title() != "Coin Quiz" {
		t.Errorf("Title() = %q, want %q", p.Title(), "Coin Quiz")
	}
}

func TestPlayScreen_Init(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)
	cmd := p.Init()
	if cmd == nil {
		t.Fatal("Init should record the session start")
	}
	msg, ok := cmd().(startedMsg)
	if !ok {
		t.Fatalf("Init produced %T, want startedMsg", cmd())
	}
	if msg.Err != nil {
		t.Errorf("startedMsg.Err = %v, want nil", msg.Err)
	}
}

func TestPlayScreen_StartFailureWarns(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)
	p.Update(startedMsg{Err: errors.New("disk full")})
	if !strings.Contains(p.View(80, 24), "Progress may not be saved.") {
		t.Error("view should warn when the session start was not recorded")
	}
}

func TestPlayScreen_CorrectAnswerCelebrates(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)

	p.Update(specialKey(tea.KeyDown))
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("correct answer should schedule the next challenge")
	}
	if !p.feedback {
		t.Fatal("expected feedback after a correct answer")
	}
	if answered(p) != 1 {
		t.Fatalf("answered = %d, want 1", answered(p))
	}
	view := p.View(80, 24)
	if !strings.Contains(view, "Great job! +1 coin") {
		t.Errorf("view should celebrate the answer, got:\n%s", view)
	}
	if !strings.Contains(view, "A quarter is 25 cents.") {
		t.Error("view should show the explanation")
	}

	p.Update(advanceMsg{answered: 1})
	if p.feedback {
		t.Error("advanceMsg should end the celebration")
	}
	c, _ := p.session.Current()
	if c.ID != "q2" {
		t.Errorf("current challenge = %q, want q2", c.ID)
	}
}

func TestPlayScreen_WrongAnswerWaitsForKey(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)

	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("wrong answer should not advance on its own")
	}
	if !p.feedback {
		t.Fatal("expected feedback after a wrong answer")
	}
	view := p.View(80, 24)
	if !strings.Contains(view, "Not quite") {
		t.Errorf("view should show the miss, got:\n%s", view)
	}
	if !strings.Contains(view, "Press any key to continue...") {
		t.Error("view should ask for a key press")
	}

	p.Update(keyPress('x'))
	if p.feedback {
		t.Error("any key should dismiss feedback")
	}
	if c, _ := p.session.Current(); c.ID != "q2" {
		t.Errorf("current challenge = %q, want q2", c.ID)
	}
}

func TestPlayScreen_StaleTickIgnored(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)

	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(keyPress('x')) // skip the celebration

	// Answer q2 wrong, then deliver the tick from q1.
	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(advanceMsg{answered: 1})

	if !p.feedback {
		t.Error("stale tick should not dismiss the feedback for q2")
	}
	if answered(p) != 2 {
		t.Errorf("answered = %d, want 2", answered(p))
	}
}

func TestPlayScreen_CompletionShowsResult(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)

	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(advanceMsg{answered: 1})
	p.Update(specialKey(tea.KeyEnter))
	_, cmd := p.Update(advanceMsg{answered: 2})
	if cmd == nil {
		t.Fatal("completing the game should open the result screen")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*result.ResultScreen); !ok {
		t.Errorf("replacement screen is %T, want *result.ResultScreen", msg.Screen)
	}
}

func TestPlayScreen_QuitConfirm(t *testing.T) {
	p := newTestPlay(t, screenstest.Quiz)

	p.Update(specialKey(tea.KeyEscape))
	if !p.confirmQuit {
		t.Fatal("esc should ask before leaving")
	}
	if !strings.Contains(p.View(80, 24), "Leave this game?") {
		t.Error("view should show the quit prompt")
	}

	p.Update(keyPress('n'))
	if p.confirmQuit {
		t.Error("n should keep playing")
	}

	p.Update(specialKey(tea.KeyEscape))
	_, cmd := p.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("y should leave the game")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestPlayScreen_EveryVariant(t *testing.T) {
	p := newTestPlay(t, screenstest.Mixed)

	// Set: nothing picked yet.
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if cmd != nil || p.feedback {
		t.Fatal("empty set answer should be declined")
	}
	if p.hint != "Pick at least one answer with Space." {
		t.Errorf("hint = %q", p.hint)
	}
	p.Update(keyPress('1'))
	p.Update(keyPress('3'))
	if p.hint != "" {
		t.Error("hint should clear once the player acts")
	}
	if _, cmd = p.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("share and thank should satisfy the set")
	}
	p.Update(advanceMsg{answered: 1})

	// Order: lunch, wake, sleep on screen.
	p.Update(keyPress('2'))
	p.Update(specialKey(tea.KeyEnter))
	if p.feedback || p.hint != "Place every card in order first." {
		t.Fatalf("partial order should be declined, hint = %q", p.hint)
	}
	p.Update(keyPress('1'))
	p.Update(keyPress('3'))
	if _, cmd = p.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("wake, lunch, sleep should satisfy the order")
	}
	p.Update(advanceMsg{answered: 2})

	// Match: truth and lie on the left, trust and trouble on the right.
	p.Update(specialKey(tea.KeyEnter))
	if p.hint != "Give every item a partner first." {
		t.Fatalf("hint = %q", p.hint)
	}
	p.Update(specialKey(tea.KeyRight))
	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyRight))
	p.Update(specialKey(tea.KeyRight))
	if _, cmd = p.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("truth-trust and lie-trouble should satisfy the match")
	}
	p.Update(advanceMsg{answered: 3})

	// Text.
	p.Update(specialKey(tea.KeyEnter))
	if p.hint != "Write your answer first." {
		t.Fatalf("hint = %q", p.hint)
	}
	typeText(p, "helpothers")
	if _, cmd = p.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("a long enough answer should satisfy the text challenge")
	}

	if got := p.session.Reward(); got != 4 {
		t.Errorf("Reward() = %d, want 4", got)
	}
	_, cmd = p.Update(advanceMsg{answered: 4})
	if cmd == nil {
		t.Fatal("expected the result screen after the last challenge")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg, got %T", cmd())
	}
}

const distractorYAML = `id: brain-kids-1
title: Morning Steps
version: v1.0.0
rules:
  pass_threshold: 1
challenges:
  - id: steps
    prompt: Put the steps in order. One card does not belong.
    variant: order
    options:
      - id: a
        label: Wake up
      - id: b
        label: Brush teeth
      - id: c
        label: Eat breakfast
      - id: x
        label: Fly to the moon
    target: [a, b, c]
`

func TestPlayScreen_OrderWithDistractor(t *testing.T) {
	reg, err := catalog.Load(fstest.MapFS{"steps.yaml": {Data: []byte(distractorYAML)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	game, _ := reg.Get("brain-kids-1")
	p, err := New(screenstest.Env(t), game)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p.Update(keyPress('1'))
	p.Update(keyPress('2'))
	p.Update(specialKey(tea.KeyEnter))
	if p.feedback || p.hint != "Place 3 cards in order first." {
		t.Fatalf("two cards should be declined, hint = %q", p.hint)
	}

	p.Update(keyPress('3'))
	if _, cmd := p.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Fatal("the three target cards should be submitted")
	}
	if answered(p) != 1 {
		t.Fatalf("answered = %d, want 1", answered(p))
	}
	if r, ok := p.session.LastResponse(); !ok || !r.Satisfied {
		t.Errorf("response = %+v, want satisfied", r)
	}
}

func TestPlayScreen_ShortTextIsJudged(t *testing.T) {
	p := newTestPlay(t, screenstest.Mixed)

	// Miss the first three challenges.
	p.Update(keyPress('1'))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(keyPress('x'))
	p.Update(keyPress('1'))
	p.Update(keyPress('2'))
	p.Update(keyPress('3'))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(keyPress('x'))
	p.Update(specialKey(tea.KeyRight))
	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyRight))
	p.Update(specialKey(tea.KeyEnter))
	p.Update(keyPress('x'))
	if answered(p) != 3 || p.feedback {
		t.Fatalf("answered = %d, feedback = %v; want 3 and false", answered(p), p.feedback)
	}

	typeText(p, "kind")
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("short answer should not be celebrated")
	}
	if !strings.Contains(p.View(80, 24), "Try writing at least 10 characters next time.") {
		t.Error("view should explain the length requirement")
	}
}

func TestPlayScreen_KeyHints(t *testing.T) {
	p := newTestPlay(t, screenstest.Mixed)
	hints := p.KeyHints()
	var keys []string
	for _, h := range hints {
		keys = append(keys, h.Key)
	}
	joined := strings.Join(keys, ",")
	if !strings.Contains(joined, "Space") || !strings.Contains(joined, "Enter") {
		t.Errorf("set hints = %s, want Space and Enter", joined)
	}

	p.Update(specialKey(tea.KeyEscape))
	if hints := p.KeyHints(); len(hints) != 2 || hints[0].Key != "Y" {
		t.Errorf("quit confirm hints = %v", hints)
	}
}
