package integrate

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// rk4 is the classical 4th-order Runge-Kutta scheme applied to the
// coupled ODE dx/dt = v, dv/dt = accel(x, v). accel is sampled at the
// four standard stage offsets {0, dt/2, dt/2, dt}; the tentative new
// position is checked against blocked exactly once, against the
// combined-stage result, not per intermediate stage. A stage whose
// intrinsic force term is zero contributes no positional change: its
// stage velocity is zeroed, so a goal-less pedestrian cannot drift.
type rk4 struct{}

func (rk4) Kind() Kind { return RungeKutta4 }

// stageVelocity returns v unless the stage's intrinsic term is exactly
// zero, in which case the stage contributes no displacement.
func stageVelocity(v geom.Vec2, a Accel) geom.Vec2 {
	if a.Intrinsic == (geom.Vec2{}) {
		return geom.Vec2{}
	}
	return v
}

func (rk4) Step(s State, accel AccelFunc, vMax, dt float64, blocked BlockedFunc) (State, bool) {
	a1 := accel(s.Position, s.Velocity)
	k1p, k1v := stageVelocity(s.Velocity, a1), a1.Total

	p2 := s.Position.Add(k1p.Scale(dt / 2))
	v2 := s.Velocity.Add(k1v.Scale(dt / 2))
	a2 := accel(p2, v2)
	k2p, k2v := stageVelocity(v2, a2), a2.Total

	p3 := s.Position.Add(k2p.Scale(dt / 2))
	v3 := s.Velocity.Add(k2v.Scale(dt / 2))
	a3 := accel(p3, v3)
	k3p, k3v := stageVelocity(v3, a3), a3.Total

	p4 := s.Position.Add(k3p.Scale(dt))
	v4 := s.Velocity.Add(k3v.Scale(dt))
	a4 := accel(p4, v4)
	k4p, k4v := stageVelocity(v4, a4), a4.Total

	dPos := k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(dt / 6)
	dVel := k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt / 6)

	newPos := s.Position.Add(dPos)

	vetoed := applyVeto(s, newPos, blocked)
	if vetoed {
		newPos = s.Position
	}

	newVel := clampSpeed(s.Velocity.Add(dVel), vMax)
	return State{Position: newPos, Velocity: newVel}, vetoed
}
