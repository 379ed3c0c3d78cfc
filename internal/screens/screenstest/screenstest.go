// Package screenstest provides a small game catalog and environment for
// testing screens.
package screenstest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/screens"
	"github.com/abhisek/kidquest/internal/store"
)

// Game ids in the test catalog.
const (
	Quiz     = "finance-kids-1" // two single-choice challenges, leads to Followup
	Followup = "finance-kids-2" // locked until Quiz is passed
	Mixed    = "moral-kids-1"   // one challenge of every other variant
)

const quizYAML = `id: finance-kids-1
title: Coin Quiz
version: v1.0.0
next: finance-kids-2
rules:
  pass_threshold: 2
  step_reward: 1
  completion_bonus: 2
  completion_xp: 10
challenges:
  - id: q1
    prompt: Which coin is worth more?
    explanation: A quarter is 25 cents.
    variant: single
    options:
      - id: a
        label: Penny
      - id: b
        label: Quarter
        correct: true
  - id: q2
    prompt: Where should savings go?
    variant: single
    options:
      - id: a
        label: Piggy bank
        correct: true
      - id: b
        label: Candy store
`

const followupYAML = `id: finance-kids-2
title: Bank Trip
version: v1.0.0
rules:
  pass_threshold: 1
challenges:
  - id: q1
    prompt: Is a bank a safe place for money?
    variant: single
    options:
      - id: "y"
        label: "Yes"
        correct: true
      - id: "n"
        label: "No"
`

const mixedYAML = `id: moral-kids-1
title: Good Choices
version: v1.0.0
rules:
  pass_threshold: 1
  step_reward: 1
challenges:
  - id: kind
    prompt: Pick every kind action.
    variant: set
    options:
      - id: share
        label: Share toys
      - id: push
        label: Push in line
      - id: thank
        label: Say thank you
    target: [share, thank]
  - id: day
    prompt: Put the day in order.
    variant: order
    options:
      - id: lunch
        label: Lunch
      - id: wake
        label: Wake up
      - id: sleep
        label: Sleep
    target: [wake, lunch, sleep]
  - id: pairs
    prompt: Match each action to what follows.
    variant: match
    options:
      - id: truth
        label: Truth
      - id: lie
        label: Lie
      - id: trust
        label: Trust
      - id: trouble
        label: Trouble
    pairs:
      truth: trust
      lie: trouble
  - id: think
    prompt: What does kindness mean to you?
    variant: text
    min_text_length: 10
`

// Registry returns the test catalog.
func Registry(t testing.TB) *catalog.Registry {
	t.Helper()
	reg, err := catalog.Load(fstest.MapFS{
		"quiz.yaml":     {Data: []byte(quizYAML)},
		"followup.yaml": {Data: []byte(followupYAML)},
		"mixed.yaml":    {Data: []byte(mixedYAML)},
	})
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return reg
}

// Game returns one game of the test catalog.
func Game(t testing.TB, id string) catalog.Game {
	t.Helper()
	g, ok := Registry(t).Get(id)
	if !ok {
		t.Fatalf("test catalog has no game %q", id)
	}
	return g
}

// Env returns an environment without persistence, a fixed session id and a
// fixed clock.
func Env(t testing.TB) screens.Env {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return screens.Env{
		Registry:     Registry(t),
		NewSessionID: func() string { return "session-1" },
		Now:          func() time.Time { return now },
	}.WithDefaults()
}

// Store opens an in-memory SQLite store that is closed when the test ends.
func Store(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(store.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// StoreEnv is Env backed by an in-memory store.
func StoreEnv(t testing.TB, s *store.Store) screens.Env {
	t.Helper()
	env := Env(t)
	env.Events = s.EventRepo()
	env.Rewards = nil
	return env.WithDefaults()
}

// Record plays a single-choice game with the given option ids and records
// the completed session through env.Rewards.
func Record(t testing.TB, env screens.Env, id, sessionID string, answers ...string) *rewards.Award {
	t.Helper()
	g, ok := env.Registry.Get(id)
	if !ok {
		t.Fatalf("test catalog has no game %q", id)
	}
	s, err := g.Start()
	if err != nil {
		t.Fatalf("start %s: %v", id, err)
	}
	for _, a := range answers {
		if s, err = engine.Submit(s, engine.Pick(a)); err != nil {
			t.Fatalf("submit %s: %v", a, err)
		}
	}
	award, err := env.Rewards.Record(context.Background(), rewards.Result{
		GameID:    g.ID,
		Title:     g.Title,
		SessionID: sessionID,
		Next:      g.Next,
		Session:   s,
		Duration:  95 * time.Second,
	})
	if err != nil {
		t.Fatalf("record %s: %v", id, err)
	}
	return award
}
