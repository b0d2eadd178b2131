package wayfind

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// State is one of the three way-finding states.
type State int

const (
	// SeekTarget: moving toward the current waypoint.
	SeekTarget State = iota
	// Pass: inside the passing area of the current waypoint, about to
	// cross its target line.
	Pass
	// Reorient: a move was vetoed by a boundary; the model must pick the
	// nearest unreached waypoint as its new current target.
	Reorient
)

// courseHysteresis is the fractional slack checkCourse allows before
// flagging needsOrientation: the pedestrian must be at least this much
// further from target than its best-so-far distance.
const courseHysteresis = 1.15

// checkCourseInterval is how often (in simulated seconds) checkCourse
// re-evaluates progress, avoiding a flag/clear thrash every tick.
const checkCourseInterval = 1.0

// Model is the per-pedestrian way-finding state: current target waypoint,
// averaged velocity along the route, orientation-needed flag and
// course-deviation detection. It borrows a shared, immutable *Route; it
// never owns or mutates one.
type Model struct {
	route *Route

	currentIndex int
	state        State

	needsOrientation bool
	averageVelocity  float64

	// bestDistance/lastCheckTime back checkCourse's hysteresis.
	bestDistance  float64
	lastCheckTime float64
	haveChecked   bool

	finished bool
}

// NewModel creates a way-finding model targeting the first waypoint of
// route.
func NewModel(route *Route) *Model {
	m := &Model{route: route}
	if len(route.Waypoints) == 0 {
		m.finished = true
	}
	return m
}

// Route returns the shared route this model is following.
func (m *Model) Route() *Route { return m.route }

// CurrentWaypoint returns the waypoint currently being targeted, or nil
// once the route is finished.
func (m *Model) CurrentWaypoint() *WayPoint {
	if m.finished || m.currentIndex >= len(m.route.Waypoints) {
		return nil
	}
	return m.route.Waypoints[m.currentIndex]
}

// State returns the model's current state.
func (m *Model) State() State { return m.state }

// NeedsOrientation reports whether the integrator vetoed a move and the
// model has not yet re-selected a target.
func (m *Model) NeedsOrientation() bool { return m.needsOrientation }

// AverageVelocity returns the exponentially blended progress-per-tick
// along the current connection line.
func (m *Model) AverageVelocity() float64 { return m.averageVelocity }

// IsRouteFinished reports whether every waypoint has been passed.
func (m *Model) IsRouteFinished() bool { return m.finished }

// CurrentDirection returns the current waypoint's stored direction, or the
// zero vector once the route is finished.
func (m *Model) CurrentDirection() geom.Vec2 {
	wp := m.CurrentWaypoint()
	if wp == nil {
		return geom.Vec2{}
	}
	return wp.Direction
}

// GetNormalizedDirection returns the unit vector from p to the current
// target's coordinate.
func (m *Model) GetNormalizedDirection(p geom.Vec2) geom.Vec2 {
	wp := m.CurrentWaypoint()
	if wp == nil {
		return geom.Vec2{}
	}
	return wp.Coord.Sub(p).Normalize()
}

// SetNeedsOrientation is called by the integrator when a move was vetoed
// by a boundary. The Reorient transition actually happens at the next
// UpdateModel call.
func (m *Model) SetNeedsOrientation() {
	m.needsOrientation = true
}

const averageVelocityBlend = 0.1

// UpdateModel detects target-line crossings and updates averageVelocity.
// Called once per committed tick with the position before and after the
// move.
func (m *Model) UpdateModel(t float64, pOld, pNew geom.Vec2) {
	switch {
	case m.needsOrientation:
		m.state = Reorient
		m.reorient(pNew)
		m.needsOrientation = false
	case m.state == Reorient:
		// The re-selected target held for a full tick; back to seeking.
		m.state = SeekTarget
	}

	wp := m.CurrentWaypoint()
	if wp == nil {
		return
	}

	moveSeg := geom.Segment{A: pOld, B: pNew}
	progress := m.signedProgress(wp, pOld, pNew)
	m.averageVelocity = m.averageVelocity*(1-averageVelocityBlend) + progress*averageVelocityBlend

	if moveSeg.Intersects(wp.TargetLine) || wp.PassingArea.ContainsPoint(pNew) {
		m.state = Pass
	}

	if moveSeg.Intersects(wp.TargetLine) {
		m.advance()
	}
}

// signedProgress returns the per-tick progress along the connection line
// to the current waypoint (positive = toward the waypoint).
func (m *Model) signedProgress(wp *WayPoint, pOld, pNew geom.Vec2) float64 {
	axis := wp.ConnectionLine.Vector()
	if axis.NormSquared() < 1e-12 {
		axis = wp.Direction
	} else {
		axis = axis.Normalize()
	}
	return pNew.Sub(pOld).Dot(axis)
}

func (m *Model) advance() {
	m.currentIndex++
	m.state = SeekTarget
	m.haveChecked = false
	if m.currentIndex >= len(m.route.Waypoints) {
		m.finished = true
	}
}

// reorient picks the nearest unreached waypoint (index >= currentIndex) as
// the new current target.
func (m *Model) reorient(p geom.Vec2) {
	if m.finished || len(m.route.Waypoints) == 0 {
		return
	}
	best := m.currentIndex
	bestDist := p.Distance(m.route.Waypoints[m.currentIndex].Coord)
	for i := m.currentIndex; i < len(m.route.Waypoints); i++ {
		d := p.Distance(m.route.Waypoints[i].Coord)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	m.currentIndex = best
	m.haveChecked = false
}

// CheckCourse is a periodic sanity check: if the pedestrian is further
// from its current target than its best distance since it started
// targeting it (beyond hysteresis), flag needsOrientation.
func (m *Model) CheckCourse(p geom.Vec2, t float64) {
	wp := m.CurrentWaypoint()
	if wp == nil {
		return
	}
	dist := p.Distance(wp.Coord)

	if !m.haveChecked {
		m.bestDistance = dist
		m.lastCheckTime = t
		m.haveChecked = true
		return
	}

	if t-m.lastCheckTime < checkCourseInterval {
		if dist < m.bestDistance {
			m.bestDistance = dist
		}
		return
	}
	m.lastCheckTime = t

	if dist < m.bestDistance {
		m.bestDistance = dist
		return
	}

	if dist > m.bestDistance*courseHysteresis {
		m.needsOrientation = true
	}
}
