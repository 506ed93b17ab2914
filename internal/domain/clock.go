package domain

import "github.com/jonboulle/clockwork"

// clock stamps ReceivedAt on decoded events.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source used by ParseRawEvent. Nil restores the
// real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}
