package sim

import (
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/clock"
)

// Test hooks: drive the tick body directly against a deterministic time
// source instead of the wall-clock run loop, so scenario tests are
// reproducible to the bit.

// SetTimeSource replaces the simulator's clock with one reading from
// now, keeping the configured fast-forward factor.
func (s *Simulator) SetTimeSource(now func() time.Time) {
	s.clk = clock.NewWithSource(now)
	if s.clk.SetFactor(s.config.FastForwardFactor) != nil {
		s.clk.SetFactor(1)
	}
}

// Clock exposes the simulator's clock so tests can pause/resume it
// without the run loop's running-state checks.
func (s *Simulator) Clock() *clock.Clock { return s.clk }

// TickOnce runs exactly one tick body.
func (s *Simulator) TickOnce() { s.runTick() }
