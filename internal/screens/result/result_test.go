package result

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/router"
	"github.com/abhisek/kidquest/internal/screen"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/screens/screenstest"
)

type stubScreen struct {
	title string
}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// played completes the quiz with the given answers.
func played(t *testing.T, game catalog.Game, answers ...string) engine.Session {
	t.Helper()
	s, err := game.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, a := range answers {
		if s, err = engine.Submit(s, engine.Pick(a)); err != nil {
			t.Fatalf("submit %s: %v", a, err)
		}
	}
	return s
}

type harness struct {
	replayed []engine.Session
	opened   []string
}

func (h *harness) newResult(t *testing.T, env screens.Env, answers ...string) *ResultScreen {
	t.Helper()
	game, _ := env.Registry.Get(screenstest.Quiz)
	res := rewards.Result{
		GameID:    game.ID,
		Title:     game.Title,
		SessionID: "session-1",
		Next:      game.Next,
		Session:   played(t, game, answers...),
		Duration:  30 * time.Second,
	}
	replay := func(g catalog.Game, s engine.Session) screen.Screen {
		h.replayed = append(h.replayed, s)
		return &stubScreen{title: "replay " + g.ID}
	}
	open := func(g catalog.Game) (screen.Screen, error) {
		h.opened = append(h.opened, g.ID)
		return &stubScreen{title: "play " + g.ID}, nil
	}
	r, err := New(env, game, res, replay, open)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestResultScreen_PassedView(t *testing.T) {
	var h harness
	r := h.newResult(t, screenstest.Env(t), "b", "a")

	view := r.View(80, 30)
	for _, want := range []string{
		"You passed!",
		"2 / 2 correct",
		"(2 needed)",
		"● 4 coins",
		"(includes 2 bonus)",
		"✦ 10 XP",
		"Unlocked: Bank Trip",
		"Saving...",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestResultScreen_ContinueOpensNextGame(t *testing.T) {
	var h harness
	r := h.newResult(t, screenstest.Env(t), "b", "a")
	if r.selected != actionContinue {
		t.Fatalf("selected = %d, want continue", r.selected)
	}

	_, cmd := r.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("continue should open the next game")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "play "+screenstest.Followup {
		t.Errorf("next screen = %q", msg.Screen.Title())
	}
	if len(h.opened) != 1 || h.opened[0] != screenstest.Followup {
		t.Errorf("opened = %v, want [%s]", h.opened, screenstest.Followup)
	}
}

func TestResultScreen_FailedCannotContinue(t *testing.T) {
	var h harness
	r := h.newResult(t, screenstest.Env(t), "a", "b")

	if r.selected != actionRetry {
		t.Fatalf("selected = %d, want retry", r.selected)
	}
	r.Update(specialKey(tea.KeyLeft))
	if r.selected != actionRetry {
		t.Error("left should skip the disabled continue button")
	}
	view := r.View(80, 30)
	if !strings.Contains(view, "Almost there!") {
		t.Errorf("view should encourage another try:\n%s", view)
	}
	if strings.Contains(view, "Unlocked:") {
		t.Error("a failed session unlocks nothing")
	}
}

func TestResultScreen_TryAgainResetsSession(t *testing.T) {
	var h harness
	r := h.newResult(t, screenstest.Env(t), "a", "b")

	_, cmd := r.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("try again should reopen the game")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if len(h.replayed) != 1 {
		t.Fatalf("replay called %d times, want 1", len(h.replayed))
	}
	s := h.replayed[0]
	if answered, total := s.Progress(); answered != 0 || total != 2 {
		t.Errorf("replayed session progress = %d/%d, want 0/2", answered, total)
	}
	if s.Reward() != 0 {
		t.Errorf("replayed session reward = %d, want 0", s.Reward())
	}
}

func TestResultScreen_HomeAndEsc(t *testing.T) {
	var h harness
	r := h.newResult(t, screenstest.Env(t), "b", "a")

	_, cmd := r.Update(specialKey(tea.KeyEscape))
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("esc: expected PopToRootMsg, got %T", cmd())
	}

	r.Update(specialKey(tea.KeyRight))
	r.Update(specialKey(tea.KeyRight))
	if r.selected != actionHome {
		t.Fatalf("selected = %d, want home", r.selected)
	}
	_, cmd = r.Update(specialKey(tea.KeyEnter))
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("home: expected PopToRootMsg, got %T", cmd())
	}
}

func TestResultScreen_RecordsSession(t *testing.T) {
	s := screenstest.Store(t)
	env := screenstest.StoreEnv(t, s)
	var h harness
	r := h.newResult(t, env, "b", "a")

	msg, ok := r.Init()().(recordedMsg)
	if !ok {
		t.Fatal("Init should record the session")
	}
	if msg.Err != nil {
		t.Fatalf("record: %v", msg.Err)
	}
	if msg.Award == nil || msg.Award.Unlocked != screenstest.Followup {
		t.Errorf("award = %+v, want unlock of %s", msg.Award, screenstest.Followup)
	}

	_, cmd := r.Update(msg)
	if r.saving {
		t.Error("saving should end once recorded")
	}
	loaded, ok := cmd().(screens.WalletLoadedMsg)
	if !ok {
		t.Fatalf("expected WalletLoadedMsg, got %T", cmd())
	}
	if loaded.Err != nil {
		t.Fatalf("wallet: %v", loaded.Err)
	}
	if loaded.Wallet.Coins != 4 || loaded.Wallet.XP != 10 {
		t.Errorf("wallet = %d coins %d xp, want 4 and 10", loaded.Wallet.Coins, loaded.Wallet.XP)
	}
	if !loaded.Wallet.HasUnlocked(screenstest.Followup) {
		t.Errorf("wallet should list %s as unlocked", screenstest.Followup)
	}
}

func TestResultScreen_RecordFailureWarns(t *testing.T) {
	s := screenstest.Store(t)
	env := screenstest.StoreEnv(t, s)
	var h harness
	r := h.newResult(t, env, "b", "a")
	s.Close()

	msg := r.Init()().(recordedMsg)
	if msg.Err == nil {
		t.Fatal("recording into a closed store should fail")
	}
	r.Update(msg)
	view := r.View(80, 30)
	if !strings.Contains(view, "Couldn't save your rewards") {
		t.Errorf("view should warn about the failed save:\n%s", view)
	}
	if !strings.Contains(view, "● 4 coins") {
		t.Error("the award should still be shown")
	}
}
