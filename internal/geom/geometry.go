package geom

import (
	"math"

	"github.com/elektrokombinacija/crowd-sfm/internal/mathutil"
)

// Geometry is the minimal planar-geometry abstraction the simulation core
// needs from a Boundary: a bounding envelope, the two predicates the
// cross-wall invariant and the force model rely on, a nearest-point query
// and a buffer operation. Point, Polyline and Polygon are the three
// concrete variants a Boundary may own, mirroring "point, line, or
// polygon" from the data model.
type Geometry interface {
	Envelope() Envelope
	Crosses(s Segment) bool
	Intersects(s Segment) bool
	NearestPoint(p Vec2) Vec2
	Buffer(d float64) Geometry
	IsValid() bool
	// Coords returns the ordered coordinate list backing the geometry,
	// used to decompose a Boundary into BoundarySegments.
	Coords() []Vec2
}

// Point is a single-location geometry.
type Point struct {
	P Vec2
}

func (g Point) Envelope() Envelope { return EnvelopeOfPoint(g.P) }

func (g Point) Crosses(Segment) bool { return false } // a point has no interior to cross

func (g Point) Intersects(s Segment) bool {
	return s.DistanceToPoint(g.P) < 1e-9
}

func (g Point) NearestPoint(Vec2) Vec2 { return g.P }

func (g Point) Buffer(d float64) Geometry {
	if d <= 0 {
		return g
	}
	return Polygon{Rings: [][]Vec2{circlePoints(g.P, d, 16)}}
}

func (g Point) IsValid() bool { return g.P.IsFinite() }

func (g Point) Coords() []Vec2 { return []Vec2{g.P} }

// Polyline is an ordered sequence of vertices, the "line" geometry
// variant.
type Polyline struct {
	Points []Vec2
}

func (g Polyline) Envelope() Envelope { return EnvelopeOfPoints(g.Points) }

func (g Polyline) segments() []Segment {
	return Segmentize(g.Points, 0)
}

func (g Polyline) Crosses(s Segment) bool {
	for _, seg := range g.segments() {
		if seg.Crosses(s) {
			return true
		}
	}
	return false
}

func (g Polyline) Intersects(s Segment) bool {
	for _, seg := range g.segments() {
		if seg.Intersects(s) {
			return true
		}
	}
	return false
}

func (g Polyline) NearestPoint(p Vec2) Vec2 {
	best := g.Points[0]
	bestDist := math.Inf(1)
	for _, seg := range g.segments() {
		cand := seg.NearestPoint(p)
		if d := cand.Distance(p); d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

func (g Polyline) Buffer(d float64) Geometry {
	if d <= 0 {
		return g
	}
	return Polygon{Rings: [][]Vec2{bufferHull(g.Points, d)}}
}

func (g Polyline) IsValid() bool {
	if len(g.Points) < 2 {
		return false
	}
	for _, p := range g.Points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

func (g Polyline) Coords() []Vec2 { return g.Points }

// Polygon is one or more closed rings (first ring is the shell; further
// rings, if present, are holes). Holes are carried for completeness but
// the predicates below only consider the shell; no boundary scenario with
// interior rings is exercised anywhere.
type Polygon struct {
	Rings [][]Vec2
}

func (g Polygon) shell() []Vec2 {
	if len(g.Rings) == 0 {
		return nil
	}
	return g.Rings[0]
}

func (g Polygon) Envelope() Envelope { return EnvelopeOfPoints(g.shell()) }

func (g Polygon) edges() []Segment {
	shell := g.shell()
	if len(shell) < 2 {
		return nil
	}
	closed := append(append([]Vec2{}, shell...), shell[0])
	return Segmentize(closed, 0)
}

func (g Polygon) Crosses(s Segment) bool {
	for _, e := range g.edges() {
		if e.Crosses(s) {
			return true
		}
	}
	return false
}

func (g Polygon) Intersects(s Segment) bool {
	for _, e := range g.edges() {
		if e.Intersects(s) {
			return true
		}
	}
	return g.ContainsPoint(s.A) || g.ContainsPoint(s.B)
}

func (g Polygon) NearestPoint(p Vec2) Vec2 {
	edges := g.edges()
	if len(edges) == 0 {
		return p
	}
	best := edges[0].NearestPoint(p)
	bestDist := best.Distance(p)
	for _, e := range edges[1:] {
		cand := e.NearestPoint(p)
		if d := cand.Distance(p); d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

// ContainsPoint reports whether p lies inside the polygon shell, using the
// standard ray-casting (even-odd) rule.
func (g Polygon) ContainsPoint(p Vec2) bool {
	shell := g.shell()
	n := len(shell)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := shell[i], shell[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func (g Polygon) Buffer(d float64) Geometry {
	if d <= 0 {
		return g
	}
	return Polygon{Rings: [][]Vec2{bufferHull(g.shell(), d)}}
}

func (g Polygon) IsValid() bool {
	shell := g.shell()
	if len(shell) < 3 {
		return false
	}
	for _, p := range shell {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

func (g Polygon) Coords() []Vec2 { return g.shell() }

// circlePoints approximates a circle of radius r around center with n
// vertices.
func circlePoints(center Vec2, r float64, n int) []Vec2 {
	pts := make([]Vec2, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Vec2{
			X: center.X + r*mathutil.Cos(theta),
			Y: center.Y + r*mathutil.Sin(theta),
		}
	}
	return pts
}

// bufferHull approximates buffering a set of vertices by d: it samples a
// disk of radius d around every vertex and returns the convex hull of the
// union. This over-approximates concave buffers but is exactly the
// "geometry.buffer(boundaryDistance)" the way-finding model needs: a
// conservative padded outline waypoints must stay clear of.
func bufferHull(points []Vec2, d float64) []Vec2 {
	var samples []Vec2
	for _, p := range points {
		samples = append(samples, circlePoints(p, d, 12)...)
	}
	return ConvexHull(samples)
}
