package core

import (
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/wayfind"
)

// PedestrianID uniquely identifies a Pedestrian within a Simulator.
type PedestrianID int

// Status is a coarse, observability-only summary of a pedestrian's
// current behavior, surfaced to cmd/pedsimvis and cmd/pedsimserve.
type Status int

const (
	StatusSeeking Status = iota
	StatusPassing
	StatusReorienting
	StatusStuck
	StatusArrived
)

func (s Status) String() string {
	switch s {
	case StatusPassing:
		return "passing"
	case StatusReorienting:
		return "reorienting"
	case StatusStuck:
		return "stuck"
	case StatusArrived:
		return "arrived"
	default:
		return "seeking"
	}
}

// stuckTicksThreshold is how many consecutive vetoed moves mark a
// pedestrian Stuck. A pedestrian that cannot find any unblocked move is
// not a modeled failure state, just something worth surfacing.
const stuckTicksThreshold = 30

// Pedestrian is one simulated person: its kinematic state, physical
// parameters, way-finding model and group/crowd membership.
type Pedestrian struct {
	ID PedestrianID

	Position geom.Vec2
	Velocity geom.Vec2

	// PreferredSpeed is the speed the intrinsic force drives toward in
	// the absence of any obstruction; MaxSpeed is the hard ceiling
	// integrate.Integrator enforces every step.
	PreferredSpeed float64
	MaxSpeed       float64
	Radius         float64

	WayFinding *wayfind.Model
	CrowdID    CrowdID
	GroupID    GroupID

	Status           Status
	NeedsOrientation bool
	stuckTicks       int

	// LastForce caches the most recently computed total force for
	// observability, not for integration itself.
	LastForce geom.Vec2
}

// NewPedestrian constructs a Pedestrian at position p following route,
// or with no route when route is nil (it then has no intrinsic drive and
// never advances past StatusSeeking, unless vetoed moves mark it
// StatusStuck).
func NewPedestrian(id PedestrianID, p geom.Vec2, preferredSpeed, maxSpeed, radius float64, route *wayfind.Route) *Pedestrian {
	var model *wayfind.Model
	if route != nil {
		model = wayfind.NewModel(route)
	}
	return &Pedestrian{
		ID:             id,
		Position:       p,
		PreferredSpeed: preferredSpeed,
		MaxSpeed:       maxSpeed,
		Radius:         radius,
		WayFinding:     model,
	}
}

// Clone returns an independent copy of p, including a copied way-finding
// model (the underlying Route stays shared; it is immutable).
func (p *Pedestrian) Clone() *Pedestrian {
	out := *p
	if p.WayFinding != nil {
		wf := *p.WayFinding
		out.WayFinding = &wf
	}
	return &out
}

// DesiredDirection returns the unit vector the intrinsic force should
// drive toward: the normalized direction to the current waypoint, or the
// zero vector if there is no active route (in which case the pedestrian's
// velocity changes only under InteractPedestrian/InteractBoundary).
func (p *Pedestrian) DesiredDirection() geom.Vec2 {
	if p.WayFinding == nil || p.WayFinding.IsRouteFinished() {
		return geom.Vec2{}
	}
	return p.WayFinding.GetNormalizedDirection(p.Position)
}

// AverageVelocity returns the way-finding model's blended route-average
// speed, or 0 if the pedestrian has no active route.
func (p *Pedestrian) AverageVelocity() float64 {
	if p.WayFinding == nil {
		return 0
	}
	return p.WayFinding.AverageVelocity()
}

// Bounds implements quadtree.Bounded so a tick's pedestrian snapshot can
// be spatially indexed directly.
func (p *Pedestrian) Bounds() geom.Envelope {
	return geom.EnvelopeOfPoint(p.Position).ExpandBy(p.Radius)
}

// AdvanceWayFinding feeds one step's displacement into the way-finding
// model (no-op if the pedestrian has no route) and refreshes Status from
// the resulting wayfind.State.
func (p *Pedestrian) AdvanceWayFinding(t float64, oldPos, newPos geom.Vec2) {
	if p.WayFinding == nil {
		return
	}
	p.WayFinding.UpdateModel(t, oldPos, newPos)
	p.WayFinding.CheckCourse(newPos, t)
	p.syncStatus()
}

// RecordVeto marks a blocked integration step: it flags the way-finding
// model for reorientation, tracks consecutive vetoes toward StatusStuck,
// and refreshes Status.
func (p *Pedestrian) RecordVeto() {
	p.NeedsOrientation = true
	if p.WayFinding != nil {
		p.WayFinding.SetNeedsOrientation()
	}
	p.stuckTicks++
	if p.stuckTicks >= stuckTicksThreshold {
		p.Status = StatusStuck
		return
	}
	p.syncStatus()
}

// RecordMove clears stuck-tracking after a successful (non-vetoed) step.
func (p *Pedestrian) RecordMove() {
	p.stuckTicks = 0
	p.NeedsOrientation = false
	p.syncStatus()
}

func (p *Pedestrian) syncStatus() {
	if p.stuckTicks >= stuckTicksThreshold {
		p.Status = StatusStuck
		return
	}
	if p.WayFinding == nil {
		p.Status = StatusSeeking
		return
	}
	if p.WayFinding.IsRouteFinished() {
		p.Status = StatusArrived
		return
	}
	switch p.WayFinding.State() {
	case wayfind.Pass:
		p.Status = StatusPassing
	case wayfind.Reorient:
		p.Status = StatusReorienting
	default:
		p.Status = StatusSeeking
	}
}
