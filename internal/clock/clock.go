// Package clock provides the simulator's fast-forward wall-clock source:
// a monotonic time.Time feed scaled by a 0..5 factor (0 freezes the
// simulation), with pause/resume re-baselined so no elapsed-time spike
// appears on the tick immediately after a resume.
package clock

import (
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
)

// MinFactor and MaxFactor bound SetFactor's accepted range.
const (
	MinFactor = 0.0
	MaxFactor = 5.0
)

// Clock turns real elapsed time into scaled simulated time.
type Clock struct {
	now    func() time.Time
	factor float64
	paused bool

	lastReal  time.Time
	simulated time.Duration
}

// New constructs a Clock sourced from time.Now, running at factor 1.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource constructs a Clock using a custom time source, so tests
// can drive it deterministically instead of against the wall clock.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now, factor: 1, lastReal: now()}
}

// SetFactor changes the fast-forward multiplier. 0 pauses the simulated
// clock in place (Tick always returns 0) without touching the paused
// flag Pause/Resume manage.
func (c *Clock) SetFactor(f float64) error {
	if f < MinFactor || f > MaxFactor {
		return simerr.New(simerr.ConfigurationInvalid, "fast-forward factor out of [0,5] range")
	}
	c.factor = f
	return nil
}

// Factor returns the current fast-forward multiplier.
func (c *Clock) Factor() float64 { return c.factor }

// Pause freezes simulated time; subsequent Tick calls return 0 until
// Resume.
func (c *Clock) Pause() { c.paused = true }

// Resume re-baselines the real-time reference to now, so the elapsed
// real time spent paused never gets counted on the next Tick.
func (c *Clock) Resume() {
	c.paused = false
	c.lastReal = c.now()
}

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool { return c.paused }

// Tick samples the time source, advances SimulatedTime by the scaled
// elapsed real time (0 while paused or when factor is 0), and returns the
// scaled delta for this call.
func (c *Clock) Tick() time.Duration {
	real := c.now()
	elapsed := real.Sub(c.lastReal)
	c.lastReal = real

	if c.paused || c.factor == 0 || elapsed <= 0 {
		return 0
	}

	scaled := time.Duration(float64(elapsed) * c.factor)
	c.simulated += scaled
	return scaled
}

// SimulatedTime is the cumulative simulated duration since the last
// Reset.
func (c *Clock) SimulatedTime() time.Duration { return c.simulated }

// Reset zeroes simulated time and re-baselines the real-time reference,
// leaving the fast-forward factor untouched.
func (c *Clock) Reset() {
	c.simulated = 0
	c.lastReal = c.now()
	c.paused = false
}
