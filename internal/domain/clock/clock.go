// Package clock provides the countdown timer shared by cooldowns, effects,
// the cage and the match timer.
// This package is PURE and must NOT import any infrastructure packages.
package clock

// Epsilon absorbs float drift from summing fixed frame deltas, so a 3 s timer
// ticked at 1/60 s expires on frame 180 and not 181.
const Epsilon = 1e-9

// Countdown decays toward zero and reports the frame it expires.
type Countdown struct {
	Duration  float64 `json:"duration"`
	Remaining float64 `json:"remaining"`
}

// New returns a countdown that starts fully charged.
func New(duration float64) Countdown {
	return Countdown{Duration: duration, Remaining: duration}
}

// Reset recharges the countdown to its full duration.
func (c *Countdown) Reset() {
	c.Remaining = c.Duration
}

// Restart sets a new duration and recharges.
func (c *Countdown) Restart(duration float64) {
	c.Duration = duration
	c.Remaining = duration
}

// Clear expires the countdown without reporting a crossing.
func (c *Countdown) Clear() {
	c.Remaining = 0
}

// Done reports whether the countdown has run out.
func (c Countdown) Done() bool {
	return c.Remaining <= Epsilon
}

// Tick decays the countdown by dt, clamped at zero. It returns true only on the
// call that crosses from running to done.
func (c *Countdown) Tick(dt float64) bool {
	if c.Done() {
		c.Remaining = 0
		return false
	}
	c.Remaining -= dt
	if c.Remaining <= Epsilon {
		c.Remaining = 0
		return true
	}
	return false
}

// Elapsed is the time spent since the last reset.
func (c Countdown) Elapsed() float64 {
	return c.Duration - c.Remaining
}
