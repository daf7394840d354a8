package app

import "time"

// Ticker delivers countdown ticks. It mirrors time.Ticker so tests can drive
// the countdown without waiting on the wall clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }

func (t timeTicker) Stop() { t.t.Stop() }
