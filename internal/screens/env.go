// Package screens holds what every screen of the terminal shell shares: the
// services it reads from and the messages used to keep the header current.
package screens

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/rewards"
	"github.com/abhisek/kidquest/internal/store"
)

// Env carries the services screens depend on.
type Env struct {
	Registry *catalog.Registry
	Rewards  *rewards.Service
	Events   store.EventRepo // nil disables history
	Logger   hclog.Logger

	NewSessionID func() string
	Now          func() time.Time
}

// WithDefaults fills unset fields.
func (e Env) WithDefaults() Env {
	if e.Logger == nil {
		e.Logger = hclog.NewNullLogger()
	}
	if e.Rewards == nil {
		e.Rewards = rewards.NewService(e.Events, e.Logger)
	}
	if e.NewSessionID == nil {
		e.NewSessionID = func() string { return uuid.New().String() }
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// WalletLoadedMsg delivers the learner's wallet. The app uses it to refresh
// the header; screens use it to decide which games are locked.
type WalletLoadedMsg struct {
	Wallet rewards.Wallet
	Err    error
}

// LoadWallet reads the wallet asynchronously.
func LoadWallet(env Env) tea.Cmd {
	return func() tea.Msg {
		w, err := env.Rewards.Wallet(context.Background())
		return WalletLoadedMsg{Wallet: w, Err: err}
	}
}

// Playable reports whether the game may be started with the given wallet.
func Playable(env Env, w rewards.Wallet, id string) bool {
	return w.Playable(id, env.Registry.IsEntry(id))
}
