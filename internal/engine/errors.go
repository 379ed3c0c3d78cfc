package engine

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrValidation       = errors.New("invalid game definition")
	ErrInvalidState     = errors.New("operation not allowed in session state")
	ErrInvalidSelection = errors.New("selection does not fit the current challenge")
)

// ValidationError reports malformed challenge data or rules passed to Start.
// It is fatal to session creation.
type ValidationError struct {
	ChallengeID string // empty for sequence- or rule-level problems
	Message     string
}

func (e *ValidationError) Error() string {
	if e.ChallengeID == "" {
		return fmt.Sprintf("invalid game: %s", e.Message)
	}
	return fmt.Sprintf("invalid game: challenge %q: %s", e.ChallengeID, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidStateError reports an operation invoked in a state that forbids it,
// e.g. Submit on a completed session. It is always a caller bug.
type InvalidStateError struct {
	Op     string
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: session is %s", e.Op, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// InvalidSelectionError reports a selection that references unknown options
// or does not match the current challenge's variant. The session is left
// untouched and no response is recorded.
type InvalidSelectionError struct {
	ChallengeID string
	OptionID    string // offending option id, if any
	Message     string
}

func (e *InvalidSelectionError) Error() string {
	if e.OptionID != "" {
		return fmt.Sprintf("challenge %q: option %q: %s", e.ChallengeID, e.OptionID, e.Message)
	}
	return fmt.Sprintf("challenge %q: %s", e.ChallengeID, e.Message)
}

func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }
