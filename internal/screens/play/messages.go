package play

// startedMsg reports whether the session start was recorded.
type startedMsg struct {
	Err error
}

// advanceMsg ends the celebration shown after the given number of answered
// challenges.
type advanceMsg struct {
	answered int
}
