package core

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// PedestrianSnapshot is an immutable copy of one pedestrian's
// force-relevant state, indexed by the simulator's quadtree for the
// duration of a tick. Mutating a live Pedestrian never mutates a
// snapshot taken of it.
type PedestrianSnapshot struct {
	ID       PedestrianID
	CrowdID  CrowdID
	GroupID  GroupID
	Position geom.Vec2
	Velocity geom.Vec2
	Radius   float64
}

// Bounds implements quadtree.Bounded.
func (s PedestrianSnapshot) Bounds() geom.Envelope {
	return geom.EnvelopeOfPoint(s.Position).ExpandBy(s.Radius)
}

// Snapshot captures p's current force-relevant state.
func Snapshot(p *Pedestrian) PedestrianSnapshot {
	return PedestrianSnapshot{
		ID:       p.ID,
		CrowdID:  p.CrowdID,
		GroupID:  p.GroupID,
		Position: p.Position,
		Velocity: p.Velocity,
		Radius:   p.Radius,
	}
}
