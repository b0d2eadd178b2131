package sim

import (
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/integrate"
)

// Config configures a Simulator at construction time: a plain struct of
// tunables plus a DefaultConfig constructor, rather than a builder or
// functional-options API.
type Config struct {
	// ForceModel selects the pedestrian-interaction force law.
	ForceModel force.Kind
	// Integrator selects the numerical integration scheme.
	Integrator integrate.Kind
	// TimeStep is the nominal simulated Δt per tick at fast-forward
	// factor 1.
	TimeStep time.Duration
	// FastForwardFactor is the initial wall-to-simulated time multiplier,
	// in [0,5]; 0 starts paused.
	FastForwardFactor float64
	// Seed drives the RNG behind the clipped-gaussian v_pref sampling,
	// for reproducible runs.
	Seed int64
	// SplitLongSegments, when true, chunks boundary line/polygon
	// geometry into segments no longer than SegmentSplitLength. The
	// default keeps each edge whole; splitting helps some dense scenes
	// and hurts others, so it stays a tunable.
	SplitLongSegments  bool
	SegmentSplitLength float64
	// BoundaryBufferDistance is the distance Boundary.Buffered geometry
	// is inflated by, used by way-finding to keep waypoints clear of
	// walls. 0 disables buffering.
	BoundaryBufferDistance float64
	// ForceParams overrides force.DefaultParams() when non-zero; the
	// zero value means "use force.DefaultParams()".
	ForceParams force.Params

	// PedestrianRadius is every pedestrian's physical radius in metres.
	PedestrianRadius float64
	// PedestrianPreferredSpeed is the mean v_pref new pedestrians are
	// sampled around, in m/s.
	PedestrianPreferredSpeed float64
	// PedestrianSpeedStdDev is the clipped-gaussian spread applied to
	// each new pedestrian's v_pref.
	PedestrianSpeedStdDev float64
	// PedestrianMaxSpeedFactor multiplies a pedestrian's sampled v_pref
	// to get its v_max ceiling.
	PedestrianMaxSpeedFactor float64
}

// DefaultConfig returns the simulator's default configuration: the
// Helbing-Buzna circular force model, simple Euler integration, a 40ms
// (25Hz) nominal tick, running at real-time speed.
func DefaultConfig() Config {
	return Config{
		ForceModel:               force.HelbingBuzna,
		Integrator:               integrate.SimpleEuler,
		TimeStep:                 40 * time.Millisecond,
		FastForwardFactor:        1,
		Seed:                     1,
		ForceParams:              force.DefaultParams(),
		PedestrianRadius:         0.2,
		PedestrianPreferredSpeed: 1.3,
		PedestrianSpeedStdDev:    0.2,
		PedestrianMaxSpeedFactor: 1.3,
	}
}

func (c Config) segmentSplitLength() float64 {
	if !c.SplitLongSegments || c.SegmentSplitLength <= 0 {
		return 0
	}
	return c.SegmentSplitLength
}

func (c Config) forceParams() force.Params {
	if c.ForceParams == (force.Params{}) {
		return force.DefaultParams()
	}
	return c.ForceParams
}

// pedestrianDefaults fills in zero-valued pedestrian kinematic fields so
// a caller-built Config (rather than one from DefaultConfig) still
// behaves sensibly.
func (c Config) pedestrianDefaults() (radius, prefSpeed, speedStd, maxFactor float64) {
	radius = c.PedestrianRadius
	if radius <= 0 {
		radius = 0.2
	}
	prefSpeed = c.PedestrianPreferredSpeed
	if prefSpeed <= 0 {
		prefSpeed = 1.3
	}
	speedStd = c.PedestrianSpeedStdDev
	if speedStd < 0 {
		speedStd = 0
	}
	maxFactor = c.PedestrianMaxSpeedFactor
	if maxFactor <= 0 {
		maxFactor = 1.3
	}
	return
}
