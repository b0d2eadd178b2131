// Package integrate advances a single pedestrian's (position, velocity)
// state forward by one time step. It knows nothing about crowds,
// boundaries or force models directly — callers supply an AccelFunc and a
// BlockedFunc closure — which keeps the numerical core testable in
// isolation.
package integrate

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// Kind selects a numerical integration scheme.
type Kind int

const (
	SimpleEuler Kind = iota
	RungeKutta4
)

func (k Kind) String() string {
	switch k {
	case RungeKutta4:
		return "runge_kutta_4"
	default:
		return "simple_euler"
	}
}

// State is a pedestrian's kinematic state at one instant.
type State struct {
	Position geom.Vec2
	Velocity geom.Vec2
}

// Accel is one evaluation of the force function (unit mass, so force ==
// acceleration): the goal-directed intrinsic component on its own, and
// the total including pedestrian/boundary/group interactions. RungeKutta4
// inspects Intrinsic to suppress positional drift at goal-less stages;
// SimpleEuler only consumes Total.
type Accel struct {
	Intrinsic geom.Vec2
	Total     geom.Vec2
}

// AccelFunc returns the force a pedestrian experiences at the given
// position/velocity. Evaluated once for SimpleEuler and four times (at
// the classical RK4 stage offsets) for RungeKutta4.
type AccelFunc func(pos, vel geom.Vec2) Accel

// BlockedFunc reports whether a straight-line move from 'from' to 'to'
// would cross a boundary segment. Integrators call this once per Step
// against the tentative new position, never against intermediate RK4
// stages, so a single veto cannot leave a pedestrian straddling a wall.
type BlockedFunc func(from, to geom.Vec2) bool

// Integrator advances kinematic state by one time step.
type Integrator interface {
	Kind() Kind
	// Step computes the next state after dt seconds under accel, capping
	// speed at vMax. If blocked is non-nil and reports the tentative move
	// as crossing a boundary, Step vetoes the move: position is left
	// unchanged, velocity still advances under the computed force, and
	// vetoed is true so the caller can flag the pedestrian's
	// wayfind.Model for reorientation.
	Step(s State, accel AccelFunc, vMax, dt float64, blocked BlockedFunc) (next State, vetoed bool)
}

// New constructs the Integrator for kind.
func New(kind Kind) Integrator {
	if kind == RungeKutta4 {
		return rk4{}
	}
	return simpleEuler{}
}

// clampSpeed enforces the v_max ceiling. A non-positive vMax stops the
// pedestrian outright rather than silently ignoring the ceiling.
func clampSpeed(v geom.Vec2, vMax float64) geom.Vec2 {
	if vMax <= 0 {
		return geom.Vec2{}
	}
	n := v.Norm()
	if n <= vMax || n < 1e-12 {
		return v
	}
	return v.Scale(vMax / n)
}

// applyVeto evaluates the boundary-crossing check shared by every
// Integrator implementation; a nil BlockedFunc never vetoes.
func applyVeto(s State, newPos geom.Vec2, blocked BlockedFunc) bool {
	return blocked != nil && blocked(s.Position, newPos)
}
