// Package clockutil wraps clockwork.Clock the way the teacher's view
// configs do (cfg.Clock clockwork.Clock, defaulted to the real clock),
// giving the CLI an injectable source for the historize reference instant.
package clockutil

import "github.com/jonboulle/clockwork"

// Resolve returns clock if non-nil, otherwise a real clockwork.Clock -
// the teacher's "if cfg.Clock == nil { cfg.Clock = clockwork.NewRealClock() }"
// default pattern.
func Resolve(clock clockwork.Clock) clockwork.Clock {
	if clock == nil {
		return clockwork.NewRealClock()
	}
	return clock
}
