package force

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// MoussaidModel is a stub: it has no Moussaïd interaction terms or
// parameters. Every interaction method returns the zero vector and both
// cutoffs are 0, rather than panicking, so selecting it cannot crash the
// simulator; it disables pedestrian-pedestrian and boundary forces and
// keeps the shared intrinsic force.
type MoussaidModel struct {
	Params Params
}

// NewMoussaid constructs the stub model. Kept for API completeness and
// for callers that want to select it explicitly and observe pedestrians
// drift under intrinsic force alone.
func NewMoussaid(p Params) *MoussaidModel {
	return &MoussaidModel{Params: p}
}

func (m *MoussaidModel) Kind() Kind { return Moussaid }

func (m *MoussaidModel) IntrinsicForce(v, dir geom.Vec2, vAvg, vPref, vMax float64) geom.Vec2 {
	return intrinsicForce(v, dir, vPref, m.Params.Tau)
}

func (m *MoussaidModel) InteractPedestrian(p, v geom.Vec2, other Neighbor) geom.Vec2 {
	return geom.Vec2{}
}

func (m *MoussaidModel) InteractBoundary(p geom.Vec2, seg geom.Segment) geom.Vec2 {
	return geom.Vec2{}
}

func (m *MoussaidModel) InteractGroup(p, v, centroid geom.Vec2, memberCount int) geom.Vec2 {
	return geom.Vec2{}
}

func (m *MoussaidModel) MaxPedestrianInteractionDistance() float64 { return 0 }

func (m *MoussaidModel) MaxBoundaryInteractionDistance() float64 { return 0 }

func (m *MoussaidModel) PedestrianRadius() float64 { return m.Params.Radius }
