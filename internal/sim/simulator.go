// Package sim is the top-level driver: it owns crowds, boundaries, the
// spatial indices, the force model and integrator, and runs the tick
// loop.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/clock"
	"github.com/elektrokombinacija/crowd-sfm/internal/core"
	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/integrate"
	"github.com/elektrokombinacija/crowd-sfm/internal/mathutil"
	"github.com/elektrokombinacija/crowd-sfm/internal/quadtree"
	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
	"github.com/elektrokombinacija/crowd-sfm/internal/wayfind"
)

// stepIntervalWindow is the sliding-window size (in ticks) used to
// average wall-clock step intervals.
const stepIntervalWindow = 64

// Simulator is the library's top-level entry point.
type Simulator struct {
	mu sync.Mutex

	config Config

	crowds     []*core.Crowd
	boundaries []*core.Boundary

	nextCrowdID      core.CrowdID
	nextBoundaryID   core.BoundaryID
	nextPedestrianID core.PedestrianID

	forceModel force.Model
	integrator integrate.Integrator
	clk        *clock.Clock
	rng        *rand.Rand

	running bool

	pedestrianIndex *quadtree.Tree[core.PedestrianSnapshot]
	boundaryIndex   *quadtree.Tree[*core.Boundary]
	segmentIndex    *quadtree.Tree[*core.BoundarySegment]

	intervals   [stepIntervalWindow]time.Duration
	intervalPos int
	intervalLen int

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Simulator from cfg. It does not start the tick loop;
// call Start for that.
func New(cfg Config) *Simulator {
	if cfg.TimeStep <= 0 {
		cfg.TimeStep = DefaultConfig().TimeStep
	}
	s := &Simulator{
		config:     cfg,
		forceModel: force.New(cfg.ForceModel, cfg.forceParams()),
		integrator: integrate.New(cfg.Integrator),
		clk:        clock.New(),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
	if s.clk.SetFactor(cfg.FastForwardFactor) != nil {
		s.clk.SetFactor(1)
	}
	s.rebuildBoundaryIndexes()
	s.rebuildPedestrianIndex()
	return s
}

// rebuildBoundaryIndexes (re)builds the two static boundary trees from
// the current boundary list. The trees are append-only with respect to
// the tick loop: this runs only when boundaries are added or the
// simulator is reset, never per tick.
func (s *Simulator) rebuildBoundaryIndexes() {
	env := geom.EmptyEnvelope()
	for _, b := range s.boundaries {
		env = env.ExpandToInclude(b.Bounds())
	}
	if env.IsEmpty() {
		env = geom.Envelope{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	}
	env = env.ExpandBy(10)

	boundaryTree := quadtree.New[*core.Boundary](env)
	segmentTree := quadtree.New[*core.BoundarySegment](env)
	for _, b := range s.boundaries {
		boundaryTree.Insert(b)
		for _, seg := range b.Segments {
			segmentTree.Insert(seg)
		}
	}
	s.boundaryIndex = boundaryTree
	s.segmentIndex = segmentTree
}

// AddBoundaries inserts each geometry as a new Boundary, expanding its
// bounding box and segment bounding boxes by the active force model's
// boundary interaction cutoff.
func (s *Simulator) AddBoundaries(geoms []geom.Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	interactionDist := s.forceModel.MaxBoundaryInteractionDistance()
	for i, g := range geoms {
		id := s.nextBoundaryID
		b, err := core.NewBoundary(id, g, interactionDist, s.config.BoundaryBufferDistance, s.config.segmentSplitLength())
		if err != nil {
			return fmt.Errorf("add boundary %d: %w", i, err)
		}
		s.nextBoundaryID++
		s.boundaries = append(s.boundaries, b)
	}
	s.rebuildBoundaryIndexes()
	return nil
}

// CreateCrowd builds a Route from routeCoords/routeWidths (clipped
// against current boundaries) and a Crowd of pedestrians starting at
// each point in starts. When ignoreInvalid is true, start points that
// fall inside a boundary are silently dropped; otherwise such a point is
// a ConfigurationInvalid error.
func (s *Simulator) CreateCrowd(starts []geom.Vec2, routeCoords []geom.Vec2, routeWidths []float64, ignoreInvalid bool) (*core.Crowd, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	boundaryGeoms := make([]geom.Geometry, len(s.boundaries))
	for i, b := range s.boundaries {
		boundaryGeoms[i] = b.Geometry
	}

	route, err := wayfind.NewRoute(routeCoords, routeWidths, boundaryGeoms)
	if err != nil {
		return nil, simerr.Wrap(simerr.ConfigurationInvalid, "invalid route", err)
	}

	radius, prefSpeed, speedStd, maxFactor := s.config.pedestrianDefaults()

	id := s.nextCrowdID
	s.nextCrowdID++
	crowd := core.NewCrowd(id, route)

	for i, start := range starts {
		if s.pointInsideAnyBoundary(start) {
			if ignoreInvalid {
				continue
			}
			return nil, simerr.New(simerr.ConfigurationInvalid, fmt.Sprintf("start point %d falls inside a boundary", i))
		}

		pid := s.nextPedestrianID
		s.nextPedestrianID++

		vPref := clippedSpeed(s.rng, prefSpeed, speedStd)
		ped := core.NewPedestrian(pid, start, vPref, vPref*maxFactor, radius, route)
		crowd.AddPedestrian(ped)
	}

	s.crowds = append(s.crowds, crowd)
	return crowd, nil
}

// AddCrowd registers an already-constructed Crowd (e.g. one built with a
// shared route across several CreateCrowd-like populations).
func (s *Simulator) AddCrowd(c *core.Crowd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 && s.nextCrowdID != 0 {
		c.ID = s.nextCrowdID
	}
	if c.ID >= s.nextCrowdID {
		s.nextCrowdID = c.ID + 1
	}
	s.crowds = append(s.crowds, c)
}

func (s *Simulator) pointInsideAnyBoundary(p geom.Vec2) bool {
	for _, b := range s.boundaries {
		if poly, ok := b.Geometry.(geom.Polygon); ok && poly.ContainsPoint(p) {
			return true
		}
	}
	return false
}

// SetForceModel switches the active force model. Existing boundaries'
// cached interaction distances are not retroactively recomputed; call
// AddBoundaries again (or before SetForceModel) if that matters for a
// given scenario.
func (s *Simulator) SetForceModel(kind force.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceModel = force.New(kind, s.config.forceParams())
	s.config.ForceModel = kind
}

// SetIntegrator switches the active numerical integrator.
func (s *Simulator) SetIntegrator(kind integrate.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrator = integrate.New(kind)
	s.config.Integrator = kind
}

// SetFastForwardFactor sets the wall-to-simulated time multiplier; a
// factor outside [0,5] is rejected by the clock package with a
// ConfigurationInvalid error. 0 pauses time advancement.
func (s *Simulator) SetFastForwardFactor(f float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clk.SetFactor(f)
}

// validate checks the pre-start invariants: at least one populated
// crowd, every crowd routed, every boundary geometry valid.
func (s *Simulator) validate() error {
	if len(s.crowds) == 0 {
		return simerr.New(simerr.ConfigurationInvalid, "simulator has no crowds")
	}
	for _, c := range s.crowds {
		if len(c.Pedestrians) == 0 {
			return simerr.New(simerr.ConfigurationInvalid, fmt.Sprintf("crowd %d has no pedestrians", c.ID))
		}
		if c.Route == nil || len(c.Route.Waypoints) == 0 {
			return simerr.New(simerr.ConfigurationInvalid, fmt.Sprintf("crowd %d has no route", c.ID))
		}
	}
	for _, b := range s.boundaries {
		if !b.Geometry.IsValid() {
			return simerr.New(simerr.GeometryInvalid, fmt.Sprintf("boundary %d geometry is invalid", b.ID))
		}
	}
	return nil
}

// Start validates the simulator, builds the initial spatial indices, and
// launches the tick loop in a background goroutine. Start returns once
// the loop goroutine is running; the loop itself runs until the ctx is
// canceled or Stop is called.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return simerr.New(simerr.AlreadyRunning, "simulator is already running")
	}
	if err := s.validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.rebuildPedestrianIndex()
	s.clk.Resume()
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)
	return nil
}

// Pause freezes the simulated clock at the next tick boundary.
func (s *Simulator) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return simerr.New(simerr.NotRunning, "simulator is not running")
	}
	s.clk.Pause()
	return nil
}

// Resume re-baselines the clock and continues ticking.
func (s *Simulator) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return simerr.New(simerr.NotRunning, "simulator is not running")
	}
	s.clk.Resume()
	return nil
}

// Stop cancels the tick loop and blocks until the current tick drains.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return simerr.New(simerr.NotRunning, "simulator is not running")
	}
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	return nil
}

// Reset clears all crowds and boundaries, rebuilds empty spatial
// indices, and zeroes the clock. The simulator must not be running.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return simerr.New(simerr.AlreadyRunning, "cannot reset while running")
	}

	s.crowds = nil
	s.boundaries = nil
	s.nextCrowdID = 0
	s.nextBoundaryID = 0
	s.nextPedestrianID = 0
	s.clk.Reset()
	s.rng = rand.New(rand.NewSource(s.config.Seed))
	s.intervalPos = 0
	s.intervalLen = 0

	s.rebuildBoundaryIndexes()
	s.rebuildPedestrianIndex()
	return nil
}

// SimulatedTime returns cumulative simulated time in milliseconds.
func (s *Simulator) SimulatedTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clk.SimulatedTime().Milliseconds()
}

// Crowds returns a deep-copied snapshot of every crowd and its
// pedestrians, safe to read while the tick loop runs. The copies share
// each crowd's immutable Route but nothing mutable.
func (s *Simulator) Crowds() []*core.Crowd {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Crowd, len(s.crowds))
	for i, c := range s.crowds {
		out[i] = c.Clone()
	}
	return out
}

// Boundaries returns a shallow snapshot of the boundary slice.
func (s *Simulator) Boundaries() []*core.Boundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Boundary, len(s.boundaries))
	copy(out, s.boundaries)
	return out
}

// AverageSimulationUpdateInterval returns the mean wall-clock duration of
// the last stepIntervalWindow ticks.
func (s *Simulator) AverageSimulationUpdateInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intervalLen == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < s.intervalLen; i++ {
		sum += s.intervals[i]
	}
	return sum / time.Duration(s.intervalLen)
}

func (s *Simulator) recordInterval(d time.Duration) {
	s.intervals[s.intervalPos] = d
	s.intervalPos = (s.intervalPos + 1) % stepIntervalWindow
	if s.intervalLen < stepIntervalWindow {
		s.intervalLen++
	}
}

// clippedSpeed samples a preferred walking speed from a clipped Gaussian
// around mean, guarding against a non-positive draw (which would make
// the intrinsic force drive a pedestrian backward).
func clippedSpeed(rng *rand.Rand, mean, std float64) float64 {
	if std <= 0 {
		return mean
	}
	v := mathutil.ClippedGaussian(rng, mean, std, 3)
	if v <= 0.1 {
		return 0.1
	}
	return v
}
