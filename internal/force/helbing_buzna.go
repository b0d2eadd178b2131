package force

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// HelbingBuznaModel is the circular pedestrian-interaction variant, and
// the model sim.DefaultConfig selects.
type HelbingBuznaModel struct {
	Params Params
}

// NewHelbingBuzna constructs a model with the given parameters.
func NewHelbingBuzna(p Params) *HelbingBuznaModel {
	return &HelbingBuznaModel{Params: p}
}

func (m *HelbingBuznaModel) Kind() Kind { return HelbingBuzna }

func (m *HelbingBuznaModel) IntrinsicForce(v, dir geom.Vec2, vAvg, vPref, vMax float64) geom.Vec2 {
	return intrinsicForce(v, dir, vPref, m.Params.Tau)
}

// intrinsicForce is shared by both concrete models: F_int = (vPref*dir -
// v) / tau.
func intrinsicForce(v, dir geom.Vec2, vPref, tau float64) geom.Vec2 {
	if tau <= 0 {
		return geom.Vec2{}
	}
	desired := dir.Scale(vPref)
	return finiteOrZero(desired.Sub(v).Scale(1 / tau))
}

func (m *HelbingBuznaModel) InteractPedestrian(p, v geom.Vec2, other Neighbor) geom.Vec2 {
	r := m.Params.Radius + other.Radius
	diff := p.Sub(other.Position)
	d := diff.Norm()

	if d > m.MaxPedestrianInteractionDistance() {
		return geom.Vec2{}
	}
	if d < 1e-9 {
		// Coincident positions: pin d to a small epsilon so the
		// result stays finite and bounded as d -> 0+.
		d = 1e-9
		diff = geom.Vec2{X: 1e-9, Y: 0}
	}
	n := diff.Scale(1 / d)

	f1 := expDecay(m.Params.A1, m.Params.B1, r, d)
	f2 := expDecay(m.Params.A2, m.Params.B2, r, d)

	cosTheta := 1.0
	if vn := v.Norm(); vn > 1e-9 {
		cosTheta = v.Scale(1 / vn).Dot(n.Scale(-1))
	}
	phi := anisotropy(m.Params.Lambda, cosTheta)

	total := f1 + f2*phi
	return finiteOrZero(n.Scale(total))
}

func (m *HelbingBuznaModel) InteractBoundary(p geom.Vec2, seg geom.Segment) geom.Vec2 {
	nearest := seg.NearestPoint(p)
	diff := p.Sub(nearest)
	d := diff.Norm()

	if d > m.MaxBoundaryInteractionDistance() {
		return geom.Vec2{}
	}
	if d < 1e-9 {
		d = 1e-9
		diff = geom.Vec2{X: 1e-9, Y: 0}
	}
	n := diff.Scale(1 / d)

	f := expDecay(m.Params.BoundaryA, m.Params.BoundaryB, m.Params.Radius, d)
	return finiteOrZero(n.Scale(f))
}

// groupComfortRadius is the distance beyond which cohesion kicks in.
const groupComfortRadius = 1.0

// groupCohesionStrength scales the cohesion pull. Experimental.
const groupCohesionStrength = 0.5

func (m *HelbingBuznaModel) InteractGroup(p, v, centroid geom.Vec2, memberCount int) geom.Vec2 {
	if memberCount <= 1 {
		return geom.Vec2{}
	}
	diff := centroid.Sub(p)
	d := diff.Norm()
	if d <= groupComfortRadius {
		return geom.Vec2{}
	}
	return finiteOrZero(diff.Normalize().Scale(groupCohesionStrength * (d - groupComfortRadius)))
}

func (m *HelbingBuznaModel) MaxPedestrianInteractionDistance() float64 {
	r := 2 * m.Params.Radius
	return maxInteractionDistance(r, m.Params.LimitResultingForce,
		[2]float64{m.Params.A1, m.Params.B1},
		[2]float64{m.Params.A2, m.Params.B2},
	)
}

func (m *HelbingBuznaModel) MaxBoundaryInteractionDistance() float64 {
	return maxInteractionDistance(m.Params.Radius, m.Params.LimitResultingForce,
		[2]float64{m.Params.BoundaryA, m.Params.BoundaryB},
	)
}

func (m *HelbingBuznaModel) PedestrianRadius() float64 { return m.Params.Radius }
