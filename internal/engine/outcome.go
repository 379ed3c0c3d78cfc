package engine

// Outcome summarizes a completed session.
type Outcome struct {
	CorrectCount int
	Total        int
	Passed       bool
	StepReward   int // sum of per-response reward deltas
	Bonus        int // completion bonus, zero unless Passed
	TotalReward  int // StepReward + Bonus
	XP           int // completion experience, zero unless Passed
}

// Accuracy returns the share of satisfied challenges in [0, 1].
func (o Outcome) Accuracy() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.CorrectCount) / float64(o.Total)
}

// ComputeOutcome returns the outcome of a completed session. It is a pure
// read and fails with *InvalidStateError while the session is in progress.
func ComputeOutcome(s Session) (Outcome, error) {
	if s.status != StatusCompleted {
		return Outcome{}, &InvalidStateError{Op: "compute outcome", Status: s.status}
	}
	return s.outcome, nil
}

func tally(s Session) Outcome {
	o := Outcome{Total: len(s.challenges)}
	for _, r := range s.responses {
		if r.Satisfied {
			o.CorrectCount++
		}
		o.StepReward += r.RewardDelta
	}
	o.Passed = s.rules.PassThreshold.Met(o.CorrectCount, o.Total)
	if o.Passed {
		o.Bonus = s.rules.CompletionBonus
		o.XP = s.rules.CompletionXP
	}
	o.TotalReward = o.StepReward + o.Bonus
	return o
}
