package geom

import "math"

// Segment is a directed line from A to B.
type Segment struct {
	A, B Vec2
}

// Vector returns B-A.
func (s Segment) Vector() Vec2 {
	return s.B.Sub(s.A)
}

// Length returns |B-A|.
func (s Segment) Length() float64 {
	return s.Vector().Norm()
}

// Envelope returns the segment's bounding box.
func (s Segment) Envelope() Envelope {
	return EnvelopeOfPoints([]Vec2{s.A, s.B})
}

// NearestPoint returns the closest point on the segment to p, clamped to
// the segment's extent.
func (s Segment) NearestPoint(p Vec2) Vec2 {
	d := s.Vector()
	lenSq := d.NormSquared()
	if lenSq < 1e-18 {
		return s.A
	}
	t := p.Sub(s.A).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.A.Add(d.Scale(t))
}

// DistanceToPoint returns the distance from p to the nearest point on s.
func (s Segment) DistanceToPoint(p Vec2) float64 {
	return p.Distance(s.NearestPoint(p))
}

// orientation classifies the turn (p,q,r) makes: 0 collinear, >0 counter-
// clockwise, <0 clockwise.
func orientation(p, q, r Vec2) float64 {
	return (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
}

const collinearEps = 1e-9

func onSegment(p, q, r Vec2) bool {
	return math.Min(p.X, r.X)-collinearEps <= q.X && q.X <= math.Max(p.X, r.X)+collinearEps &&
		math.Min(p.Y, r.Y)-collinearEps <= q.Y && q.Y <= math.Max(p.Y, r.Y)+collinearEps
}

// Intersects reports whether the two (closed, inclusive-endpoint)
// segments share at least one point. This is the general DE-9IM
// "intersects" relation (touching at an endpoint counts).
func (s Segment) Intersects(other Segment) bool {
	p1, q1 := s.A, s.B
	p2, q2 := other.A, other.B

	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if sign(o1) != sign(o2) && sign(o3) != sign(o4) {
		return true
	}

	if sign(o1) == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if sign(o2) == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if sign(o3) == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if sign(o4) == 0 && onSegment(p2, q1, q2) {
		return true
	}

	return false
}

// Crosses reports whether the two segments cross in the DE-9IM sense used
// by the cross-wall invariant: the interiors intersect and neither
// contains the other. For two 1-dimensional segments this means a proper
// transversal intersection — they meet at a single point that is not a
// shared endpoint and they are not collinear/overlapping.
func (s Segment) Crosses(other Segment) bool {
	p1, q1 := s.A, s.B
	p2, q2 := other.A, other.B

	o1 := sign(orientation(p1, q1, p2))
	o2 := sign(orientation(p1, q1, q2))
	o3 := sign(orientation(p2, q2, p1))
	o4 := sign(orientation(p2, q2, q1))

	// Proper crossing: both endpoints of each segment strictly straddle
	// the other's line.
	if o1 != 0 && o2 != 0 && o3 != 0 && o4 != 0 {
		return o1 != o2 && o3 != o4
	}

	// Any collinear/touching configuration is not a transversal "crosses"
	// — it is handled by Intersects if the caller cares about touching.
	return false
}

func sign(x float64) int {
	switch {
	case x > collinearEps:
		return 1
	case x < -collinearEps:
		return -1
	default:
		return 0
	}
}

// IntersectionPoint returns the point where s and other cross, assuming
// s.Crosses(other) is true. The zero value is returned (with ok=false)
// for parallel segments and segments that do not meet; segments that
// only touch (e.g. at an endpoint) return the touching point with
// ok=true.
func (s Segment) IntersectionPoint(other Segment) (Vec2, bool) {
	d1 := s.Vector()
	d2 := other.Vector()
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-12 {
		return Vec2{}, false
	}
	diff := other.A.Sub(s.A)
	t := diff.Cross(d2) / denom
	u := diff.Cross(d1) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec2{}, false
	}
	return s.A.Add(d1.Scale(t)), true
}

// Segmentize splits a polyline into segments. Required by Boundary
// construction: "segmentation is never empty when the geometry has >= 1
// point." A single point yields no segments (handled by the caller, which
// falls back to a point boundary segment); two or more points yield
// len(points)-1 segments, optionally chunked to a maximum length.
func Segmentize(points []Vec2, maxLength float64) []Segment {
	if len(points) < 2 {
		return nil
	}
	var out []Segment
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if maxLength <= 0 {
			out = append(out, Segment{A: a, B: b})
			continue
		}
		full := Segment{A: a, B: b}
		length := full.Length()
		if length <= maxLength {
			out = append(out, full)
			continue
		}
		n := int(math.Ceil(length / maxLength))
		prev := a
		for k := 1; k <= n; k++ {
			t := float64(k) / float64(n)
			next := a.Lerp(b, t)
			out = append(out, Segment{A: prev, B: next})
			prev = next
		}
	}
	return out
}
