package pipeline

import "github.com/jonboulle/clockwork"

// clock times the run and its phases. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for run timing. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
