package catalog

import "github.com/abhisek/kidquest/internal/engine"

// Game is one playable mini-game: metadata plus the challenge sequence and
// scoring rules handed to the engine.
type Game struct {
	ID          string
	Title       string
	Description string
	Pillar      Pillar
	AgeGroup    string
	Version     string
	Next        string // id of the game unlocked by passing this one

	Rules      engine.Rules
	Challenges []engine.Challenge

	Source string // file the game was loaded from
}

// Start begins a new session of the game.
func (g Game) Start() (engine.Session, error) {
	return engine.Start(g.Challenges, g.Rules)
}
