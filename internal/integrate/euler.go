package integrate

// simpleEuler is the explicit (simple) Euler scheme: position is
// advanced using the current velocity, then velocity is advanced using
// the force evaluated at the new (or, if vetoed, reverted) position and
// the step's starting velocity. The
// position-then-velocity order is deliberate and must not be swapped.
type simpleEuler struct{}

func (simpleEuler) Kind() Kind { return SimpleEuler }

func (simpleEuler) Step(s State, accel AccelFunc, vMax, dt float64, blocked BlockedFunc) (State, bool) {
	newPos := s.Position.Add(s.Velocity.Scale(dt))

	vetoed := applyVeto(s, newPos, blocked)
	if vetoed {
		newPos = s.Position
	}

	a := accel(newPos, s.Velocity)
	newVel := clampSpeed(s.Velocity.Add(a.Total.Scale(dt)), vMax)

	return State{Position: newPos, Velocity: newVel}, vetoed
}
