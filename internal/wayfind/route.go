// Package wayfind implements the route data model and the per-pedestrian
// way-finding state machine. It only depends on geom: a Route is
// constructed from plain waypoint coordinates and boundary geometries,
// never from a live core.Boundary, so that core.Pedestrian can own a
// *wayfind.Model without creating an import cycle.
package wayfind

import (
	"fmt"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
)

// WayPoint is one ordered entry in a Route. Constructed once by the route
// factory (NewRoute) and never mutated afterwards.
type WayPoint struct {
	Index int
	Coord geom.Vec2

	// Direction is the unit vector toward the next waypoint (or, for the
	// last waypoint, away from the previous one).
	Direction geom.Vec2

	// Width is the (possibly shrunk) clearance of TargetLine.
	Width float64

	// TargetLine is the perpendicular segment across the route the
	// pedestrian must cross to advance past this waypoint.
	TargetLine geom.Segment

	// PassingArea is the polygon between this waypoint's TargetLine and
	// the previous waypoint's TargetLine (for the first waypoint, its own
	// TargetLine buffered by half its width), used for route-progress
	// detection.
	PassingArea geom.Polygon

	// ConnectionLine is the straight segment from the previous waypoint
	// to this one (degenerate, A==B, for the first waypoint).
	ConnectionLine geom.Segment
}

// Route is an ordered, immutable sequence of waypoints (>= 1). Pedestrians
// share a Route by reference; only their Model carries per-pedestrian
// traversal state.
type Route struct {
	Waypoints []*WayPoint
}

// minTargetLineWidth is the floor a target line's width is allowed to
// shrink to while avoiding nearby boundary geometry; below this the route
// factory gives up and keeps the minimum (a route threading an
// impossibly narrow gap still needs a crossable line).
const minTargetLineWidth = 0.2

// NewRoute builds a Route from ordered waypoint coordinates, their
// nominal (pre-clipping) widths, and the set of boundary geometries the
// target lines must be clipped away from. len(coords) must equal
// len(widths) and be >= 1.
func NewRoute(coords []geom.Vec2, widths []float64, boundaries []geom.Geometry) (*Route, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("route must have at least one waypoint")
	}
	if len(coords) != len(widths) {
		return nil, fmt.Errorf("coords/widths length mismatch: %d vs %d", len(coords), len(widths))
	}

	wps := make([]*WayPoint, len(coords))
	var prevLine *geom.Segment

	for i, c := range coords {
		dir := directionFor(coords, i)
		width := clipWidth(c, dir, widths[i], boundaries)
		targetLine := targetLineAt(c, dir, width)

		var connLine geom.Segment
		var passing geom.Polygon
		if i == 0 {
			connLine = geom.Segment{A: c, B: c}
			passing = bufferedTargetLine(targetLine, width)
		} else {
			connLine = geom.Segment{A: coords[i-1], B: c}
			passing = quadBetween(*prevLine, targetLine)
		}

		wps[i] = &WayPoint{
			Index:          i,
			Coord:          c,
			Direction:      dir,
			Width:          width,
			TargetLine:     targetLine,
			PassingArea:    passing,
			ConnectionLine: connLine,
		}
		line := targetLine
		prevLine = &line
	}

	return &Route{Waypoints: wps}, nil
}

func directionFor(coords []geom.Vec2, i int) geom.Vec2 {
	switch {
	case i+1 < len(coords):
		return coords[i+1].Sub(coords[i]).Normalize()
	case i > 0:
		return coords[i].Sub(coords[i-1]).Normalize()
	default:
		return geom.Vec2{X: 1, Y: 0}
	}
}

func targetLineAt(c, dir geom.Vec2, width float64) geom.Segment {
	perp := dir.Perpendicular()
	half := width / 2
	return geom.Segment{
		A: c.Sub(perp.Scale(half)),
		B: c.Add(perp.Scale(half)),
	}
}

// clipWidth shrinks width until the resulting target line does not cross
// any nearby boundary geometry, down to minTargetLineWidth.
func clipWidth(c, dir geom.Vec2, width float64, boundaries []geom.Geometry) float64 {
	for width > minTargetLineWidth {
		line := targetLineAt(c, dir, width)
		if !crossesAny(line, boundaries) {
			return width
		}
		width *= 0.8
		if width < minTargetLineWidth {
			width = minTargetLineWidth
		}
	}
	return width
}

func crossesAny(line geom.Segment, boundaries []geom.Geometry) bool {
	for _, b := range boundaries {
		if b == nil {
			continue
		}
		if !b.Envelope().Intersects(line.Envelope()) {
			continue
		}
		if b.Crosses(line) {
			return true
		}
	}
	return false
}

func quadBetween(prev, cur geom.Segment) geom.Polygon {
	return geom.Polygon{Rings: [][]geom.Vec2{{prev.A, prev.B, cur.B, cur.A}}}
}

func bufferedTargetLine(line geom.Segment, width float64) geom.Polygon {
	half := width / 2
	if half <= 0 {
		half = minTargetLineWidth / 2
	}
	poly := geom.Polyline{Points: []geom.Vec2{line.A, line.B}}.Buffer(half)
	p, _ := poly.(geom.Polygon)
	return p
}
