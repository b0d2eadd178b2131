package force

import (
	"math"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
)

// HelbingJohanssonModel is the elliptical pedestrian-interaction variant.
// Still experimental: it needs more numerical testing, so production code
// should prefer HelbingBuznaModel.
type HelbingJohanssonModel struct {
	Params Params
	// StepHorizon is the ΔT used to project the other pedestrian's far
	// focus forward along its current velocity.
	StepHorizon float64
}

// NewHelbingJohansson constructs a model with the given parameters and a
// default 0.5s step horizon.
func NewHelbingJohansson(p Params) *HelbingJohanssonModel {
	return &HelbingJohanssonModel{Params: p, StepHorizon: 0.5}
}

func (m *HelbingJohanssonModel) Kind() Kind { return HelbingJohansson }

func (m *HelbingJohanssonModel) IntrinsicForce(v, dir geom.Vec2, vAvg, vPref, vMax float64) geom.Vec2 {
	return intrinsicForce(v, dir, vPref, m.Params.Tau)
}

// semiMinorAxis computes the ellipse semi-axis b whose foci are p and the
// other pedestrian's projected position: b = 0.5*sqrt((d1+d2)^2 - step^2),
// where d1=|p-other|, d2=|p-otherProjected| and step=|projection-other|.
func (m *HelbingJohanssonModel) semiMinorAxis(p geom.Vec2, other Neighbor) float64 {
	step := other.Velocity.Scale(m.StepHorizon)
	farFocus := other.Position.Add(step)

	d1 := p.Distance(other.Position)
	d2 := p.Distance(farFocus)
	stepLen := step.Norm()

	sum := d1 + d2
	val := sum*sum - stepLen*stepLen
	if val < 0 {
		val = 0
	}
	return 0.5 * math.Sqrt(val)
}

func (m *HelbingJohanssonModel) InteractPedestrian(p, v geom.Vec2, other Neighbor) geom.Vec2 {
	r := m.Params.Radius + other.Radius
	b := m.semiMinorAxis(p, other)

	if b > m.MaxPedestrianInteractionDistance() {
		return geom.Vec2{}
	}

	diff := p.Sub(other.Position)
	d := diff.Norm()
	if d < 1e-9 {
		d = 1e-9
		diff = geom.Vec2{X: 1e-9, Y: 0}
	}
	n := diff.Scale(1 / d)

	f1 := expDecay(m.Params.A1, m.Params.B1, r, b)
	f2 := expDecay(m.Params.A2, m.Params.B2, r, b)

	cosTheta := 1.0
	if vn := v.Norm(); vn > 1e-9 {
		cosTheta = v.Scale(1 / vn).Dot(n.Scale(-1))
	}
	phi := anisotropy(m.Params.Lambda, cosTheta)

	total := f1 + f2*phi
	return finiteOrZero(n.Scale(total))
}

func (m *HelbingJohanssonModel) InteractBoundary(p geom.Vec2, seg geom.Segment) geom.Vec2 {
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

func (m *HelbingJohanssonModel) InteractGroup(p, v, centroid geom.Vec2, memberCount int) geom.Vec2 {
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

func (m *HelbingJohanssonModel) MaxPedestrianInteractionDistance() float64 {
	r := 2 * m.Params.Radius
	return maxInteractionDistance(r, m.Params.LimitResultingForce,
		[2]float64{m.Params.A1, m.Params.B1},
		[2]float64{m.Params.A2, m.Params.B2},
	)
}

func (m *HelbingJohanssonModel) MaxBoundaryInteractionDistance() float64 {
	return maxInteractionDistance(m.Params.Radius, m.Params.LimitResultingForce,
		[2]float64{m.Params.BoundaryA, m.Params.BoundaryB},
	)
}

func (m *HelbingJohanssonModel) PedestrianRadius() float64 { return m.Params.Radius }
