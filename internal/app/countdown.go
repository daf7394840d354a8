package app

// Countdown tracks the seconds left in a timed attempt.
type Countdown struct {
	remaining int
	expired   bool
	stopped   bool
}

// NewCountdown returns nil when the quiz has no time limit.
func NewCountdown(limitMinutes int) *Countdown {
	if limitMinutes <= 0 {
		return nil
	}
	return &Countdown{remaining: limitMinutes * 60}
}

// Tick removes one second. It returns true only on the tick that reaches zero;
// ticks after expiry or Stop change nothing.
func (c *Countdown) Tick() bool {
	if c.stopped || c.expired {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.expired = true
		return true
	}
	return false
}

func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) Expired() bool { return c.expired }

// Stop freezes the countdown at its current value.
func (c *Countdown) Stop() { c.stopped = true }

func (c *Countdown) Stopped() bool { return c.stopped }
