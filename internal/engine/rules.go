package engine

import "fmt"

// Rules configure scoring for a game.
type Rules struct {
	PassThreshold   Threshold
	StepReward      int // coins per satisfied challenge unless overridden
	CompletionBonus int // coins added when the pass threshold is met
	CompletionXP    int // experience granted when the pass threshold is met
}

func (r Rules) stepReward(c Challenge) int {
	if c.Reward != nil {
		return *c.Reward
	}
	return r.StepReward
}

func (r Rules) validate(total int) error {
	if r.StepReward < 0 {
		return &ValidationError{Message: fmt.Sprintf("step reward %d is negative", r.StepReward)}
	}
	if r.CompletionBonus < 0 {
		return &ValidationError{Message: fmt.Sprintf("completion bonus %d is negative", r.CompletionBonus)}
	}
	if r.CompletionXP < 0 {
		return &ValidationError{Message: fmt.Sprintf("completion xp %d is negative", r.CompletionXP)}
	}
	return r.PassThreshold.validate(total)
}
