package sim

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/core"
	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/integrate"
	"github.com/elektrokombinacija/crowd-sfm/internal/quadtree"
)

// pedestrianBounds returns the envelope of every pedestrian position,
// expanded by a fixed margin, for the per-tick pedestrian tree. The
// boundary trees have their own bounds, fixed when boundaries are added.
func (s *Simulator) pedestrianBounds() geom.Envelope {
	env := geom.EmptyEnvelope()
	for _, c := range s.crowds {
		for _, p := range c.Pedestrians {
			env = env.ExpandToInclude(geom.EnvelopeOfPoint(p.Position))
		}
	}
	if env.IsEmpty() {
		env = geom.Envelope{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	}
	return env.ExpandBy(50)
}

// rebuildPedestrianIndex replaces the pedestrian tree wholesale with one
// populated from deep copies, so readers during a tick see a frozen
// view. The boundary and segment trees are append-only and never touched
// here: they change only when boundaries are added or the simulator is
// reset.
func (s *Simulator) rebuildPedestrianIndex() {
	tree := quadtree.New[core.PedestrianSnapshot](s.pedestrianBounds())
	for _, c := range s.crowds {
		for _, p := range c.Pedestrians {
			tree.Insert(core.Snapshot(p))
		}
	}
	s.pedestrianIndex = tree
}

// runLoop drives ticks until ctx is canceled or Stop closes s.stopCh.
func (s *Simulator) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.TimeStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-s.stopCh:
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.runTick()
		}
	}
}

// runTick performs one tick body and records its wall time into the
// sliding-window average. The simulator mutex is held for the whole
// tick, so snapshot accessors always observe fully committed state.
func (s *Simulator) runTick() {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dt := s.clk.Tick()
	if dt <= 0 {
		return
	}
	s.rebuildPedestrianIndex()

	dtSeconds := dt.Seconds()
	simulatedAtTickStart := s.clk.SimulatedTime().Seconds() - dtSeconds
	stepPedestrians(s.crowds, s.pedestrianIndex, s.segmentIndex, s.forceModel, s.integrator, dtSeconds, simulatedAtTickStart)

	s.recordInterval(time.Since(start))
}

// stepPedestrians fans out force computation and integration across
// every pedestrian in every crowd. Each goroutine reads only the shared
// snapshot indices and writes only its own Pedestrian, so no
// synchronization is needed beyond the WaitGroup barrier: each result
// commits to its own slot, with no shared accumulators.
func stepPedestrians(
	crowds []*core.Crowd,
	pedestrianIndex *quadtree.Tree[core.PedestrianSnapshot],
	segmentIndex *quadtree.Tree[*core.BoundarySegment],
	fm force.Model,
	integrator integrate.Integrator,
	dt float64,
	t float64,
) {
	type job struct {
		ped         *core.Pedestrian
		groupSize   int
		groupCenter geom.Vec2
	}

	// Group centroids are fixed before the fan-out so every worker sees
	// start-of-tick aggregates, never a half-updated crowd.
	var jobs []job
	for _, c := range crowds {
		centroids := make(map[core.GroupID]geom.Vec2, len(c.Groups))
		sizes := make(map[core.GroupID]int, len(c.Groups))
		for id, g := range c.Groups {
			centroids[id] = g.Centroid(c.Pedestrians)
			sizes[id] = len(g.Members)
		}
		for _, p := range c.Pedestrians {
			jobs = append(jobs, job{ped: p, groupSize: sizes[p.GroupID], groupCenter: centroids[p.GroupID]})
		}
	}
	if len(jobs) == 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobCh {
				stepOnePedestrian(j.ped, j.groupCenter, j.groupSize, pedestrianIndex, segmentIndex, fm, integrator, dt, t)
			}
		}()
	}
	wg.Wait()
}

func stepOnePedestrian(
	p *core.Pedestrian,
	groupCentroid geom.Vec2,
	groupSize int,
	pedestrianIndex *quadtree.Tree[core.PedestrianSnapshot],
	segmentIndex *quadtree.Tree[*core.BoundarySegment],
	fm force.Model,
	integrator integrate.Integrator,
	dt float64,
	t float64,
) {
	pedDist := fm.MaxPedestrianInteractionDistance()
	boundaryDist := fm.MaxBoundaryInteractionDistance()

	neighbors := pedestrianIndex.Query(geom.EnvelopeOfPoint(p.Position).ExpandBy(pedDist))
	segments := segmentIndex.Query(geom.EnvelopeOfPoint(p.Position).ExpandBy(boundaryDist))

	accel := func(pos, vel geom.Vec2) integrate.Accel {
		var intrinsic geom.Vec2
		if dir := p.DesiredDirection(); dir != (geom.Vec2{}) {
			intrinsic = fm.IntrinsicForce(vel, dir, p.AverageVelocity(), p.PreferredSpeed, p.MaxSpeed)
		}
		total := intrinsic

		for _, n := range neighbors {
			if n.ID == p.ID {
				continue
			}
			d := pos.Distance(n.Position)
			if d > pedDist {
				continue
			}
			total = total.Add(fm.InteractPedestrian(pos, vel, force.Neighbor{
				Position: n.Position,
				Velocity: n.Velocity,
				Radius:   n.Radius,
			}))
		}

		for _, seg := range segments {
			var sgmt geom.Segment
			switch g := seg.Geometry.(type) {
			case geom.Polyline:
				if len(g.Points) < 2 {
					continue
				}
				sgmt = geom.Segment{A: g.Points[0], B: g.Points[1]}
			case geom.Point:
				sgmt = geom.Segment{A: g.P, B: g.P}
			default:
				continue
			}
			if sgmt.DistanceToPoint(pos) > boundaryDist {
				continue
			}
			total = total.Add(fm.InteractBoundary(pos, sgmt))
		}

		if groupSize > 1 {
			total = total.Add(fm.InteractGroup(pos, vel, groupCentroid, groupSize))
		}

		return integrate.Accel{Intrinsic: intrinsic, Total: total}
	}

	blocked := func(from, to geom.Vec2) bool {
		move := geom.Segment{A: from, B: to}
		for _, seg := range segmentIndex.Query(move.Envelope()) {
			if seg.Geometry.Crosses(move) {
				return true
			}
		}
		return false
	}

	oldPos := p.Position
	next, vetoed := integrator.Step(integrate.State{Position: p.Position, Velocity: p.Velocity}, accel, p.MaxSpeed, dt, blocked)

	p.Position = next.Position
	p.Velocity = next.Velocity
	p.LastForce = accel(next.Position, next.Velocity).Total

	if vetoed {
		p.RecordVeto()
	} else {
		p.RecordMove()
	}
	p.AdvanceWayFinding(t+dt, oldPos, next.Position)
	if p.Status == core.StatusArrived {
		// Route done: stop in place instead of coasting past the final
		// target line.
		p.Velocity = geom.Vec2{}
	}
}
