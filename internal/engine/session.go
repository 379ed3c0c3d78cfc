package engine

import "slices"

// Status is the lifecycle state of a Session.
type Status int

const (
	StatusInProgress Status = iota + 1
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	}
	return "uninitialized"
}

// Response records the judgement of one resolved challenge.
type Response struct {
	ChallengeID string
	Selection   Selection
	Satisfied   bool
	RewardDelta int
}

// Session is one learner's run through a fixed challenge sequence. It is a
// value: Submit and Reset return a new Session and never modify their input.
// The zero Session is uninitialized and every operation on it fails.
type Session struct {
	challenges []Challenge
	rules      Rules
	index      int
	responses  []Response
	reward     int
	status     Status
	outcome    Outcome
}

// Start validates the challenge sequence and rules and returns a fresh
// in-progress session. Malformed input yields a *ValidationError.
func Start(challenges []Challenge, rules Rules) (Session, error) {
	if err := Validate(challenges, rules); err != nil {
		return Session{}, err
	}
	owned := make([]Challenge, len(challenges))
	for i, c := range challenges {
		owned[i] = c.clone()
	}
	return Session{
		challenges: owned,
		rules:      rules,
		status:     StatusInProgress,
	}, nil
}

// Submit judges sel against the current challenge and returns the advanced
// session. On error the returned session equals s. Submitting the last
// challenge completes the session and fixes its Outcome.
func Submit(s Session, sel Selection) (Session, error) {
	if s.status != StatusInProgress {
		return s, &InvalidStateError{Op: "submit", Status: s.status}
	}

	c := s.challenges[s.index]
	satisfied, err := evaluate(c, sel)
	if err != nil {
		return s, err
	}

	delta := 0
	if satisfied {
		delta = s.rules.stepReward(c)
	}

	next := s
	next.responses = append(slices.Clip(s.responses), Response{
		ChallengeID: c.ID,
		Selection:   sel.clone(),
		Satisfied:   satisfied,
		RewardDelta: delta,
	})
	next.reward += delta
	next.index++

	if next.index == len(next.challenges) {
		next.status = StatusCompleted
		next.outcome = tally(next)
	}
	return next, nil
}

// Reset returns a fresh in-progress session over the same challenges and
// rules. Resetting an uninitialized session returns it unchanged.
func Reset(s Session) Session {
	if s.status == 0 {
		return s
	}
	return Session{
		challenges: s.challenges,
		rules:      s.rules,
		status:     StatusInProgress,
	}
}

// Status returns the lifecycle state.
func (s Session) Status() Status { return s.status }

// Done reports whether every challenge has been resolved.
func (s Session) Done() bool { return s.status == StatusCompleted }

// Index returns the 0-based cursor. It equals len(Responses()).
func (s Session) Index() int { return s.index }

// Len returns the number of challenges in the session.
func (s Session) Len() int { return len(s.challenges) }

// Progress returns the number of resolved challenges and the total.
func (s Session) Progress() (answered, total int) {
	return len(s.responses), len(s.challenges)
}

// Rules returns the scoring rules fixed at Start.
func (s Session) Rules() Rules { return s.rules }

// Reward returns the coins accrued from satisfied steps so far, excluding any
// completion bonus.
func (s Session) Reward() int { return s.reward }

// Current returns the challenge awaiting a selection. It returns false once
// the session is completed.
func (s Session) Current() (Challenge, bool) {
	if s.status != StatusInProgress {
		return Challenge{}, false
	}
	return s.challenges[s.index].clone(), true
}

// Challenges returns a copy of the challenge sequence.
func (s Session) Challenges() []Challenge {
	out := make([]Challenge, len(s.challenges))
	for i, c := range s.challenges {
		out[i] = c.clone()
	}
	return out
}

// Responses returns a copy of the recorded responses in submission order.
func (s Session) Responses() []Response {
	out := make([]Response, len(s.responses))
	for i, r := range s.responses {
		r.Selection = r.Selection.clone()
		out[i] = r
	}
	return out
}

// LastResponse returns the most recently recorded response.
func (s Session) LastResponse() (Response, bool) {
	if len(s.responses) == 0 {
		return Response{}, false
	}
	r := s.responses[len(s.responses)-1]
	r.Selection = r.Selection.clone()
	return r, true
}

// CorrectSoFar counts satisfied responses recorded so far.
func (s Session) CorrectSoFar() int {
	n := 0
	for _, r := range s.responses {
		if r.Satisfied {
			n++
		}
	}
	return n
}
