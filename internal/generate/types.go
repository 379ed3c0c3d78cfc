package generate

import (
	"fmt"
	"time"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
)

// Input describes the game to generate.
type Input struct {
	Topic    string
	Pillar   catalog.Pillar
	AgeGroup string // "kids" or "teens"
	Count    int    // number of challenges

	// Variants limits the challenge kinds the model may use. Empty allows
	// every generatable variant.
	Variants []engine.Variant

	GameID string // derived from pillar and age group when empty
	Next   string // game unlocked by passing this one
}

// Generatable lists the variants the model can author. Match challenges
// need paired ids the model tends to get wrong, so they stay hand-written.
var Generatable = []engine.Variant{engine.VariantSingle, engine.VariantSet, engine.VariantOrder, engine.VariantText}

// Age groups accepted in Input.AgeGroup.
var AgeGroups = []string{"kids", "teens"}

// Config controls generation.
type Config struct {
	MinChallenges int
	MaxChallenges int

	// Attempts is how many times a game failing validation is regenerated,
	// with the failure fed back into the prompt.
	Attempts int

	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // per LLM call, 0 for none

	// MaxAvoid caps the existing prompts listed as "do not repeat".
	MaxAvoid int

	StepReward      int
	CompletionBonus int
	CompletionXP    int
}

func DefaultConfig() Config {
	return Config{
		MinChallenges:   3,
		MaxChallenges:   10,
		Attempts:        2,
		MaxTokens:       4096,
		Temperature:     0.7,
		Timeout:         60 * time.Second,
		MaxAvoid:        12,
		StepReward:      1,
		CompletionBonus: 3,
		CompletionXP:    10,
	}
}

// ValidationError describes why a generated game was rejected.
type ValidationError struct {
	Check     string // e.g. "structure", "engine"
	Message   string
	Retryable bool // whether regenerating is likely to help
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated game failed %s check: %s", e.Check, e.Message)
}
