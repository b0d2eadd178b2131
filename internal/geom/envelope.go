package geom

import "math"

// Envelope is an axis-aligned bounding box (xmin, xmax, ymin, ymax). It is
// the unit of currency for the quadtree: every indexed item (pedestrian,
// boundary, boundary segment) is keyed on one.
type Envelope struct {
	XMin, XMax, YMin, YMax float64
}

// EmptyEnvelope returns an envelope with inverted bounds, the identity
// element for repeated ExpandToInclude calls.
func EmptyEnvelope() Envelope {
	return Envelope{
		XMin: posInf, XMax: negInf,
		YMin: posInf, YMax: negInf,
	}
}

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// IsEmpty reports whether the envelope has never been expanded to include
// anything.
func (e Envelope) IsEmpty() bool {
	return e.XMin > e.XMax || e.YMin > e.YMax
}

// EnvelopeOfPoint returns the degenerate envelope containing only p.
func EnvelopeOfPoint(p Vec2) Envelope {
	return Envelope{XMin: p.X, XMax: p.X, YMin: p.Y, YMax: p.Y}
}

// EnvelopeOfPoints returns the smallest envelope containing every point.
func EnvelopeOfPoints(pts []Vec2) Envelope {
	e := EmptyEnvelope()
	for _, p := range pts {
		e = e.ExpandToInclude(EnvelopeOfPoint(p))
	}
	return e
}

// ExpandBy grows the envelope by d in every direction (used to turn a raw
// geometry envelope into an interaction-distance bounding box).
func (e Envelope) ExpandBy(d float64) Envelope {
	if e.IsEmpty() {
		return e
	}
	return Envelope{
		XMin: e.XMin - d, XMax: e.XMax + d,
		YMin: e.YMin - d, YMax: e.YMax + d,
	}
}

// Contains reports whether p lies within the envelope (inclusive).
func (e Envelope) Contains(p Vec2) bool {
	return p.X >= e.XMin && p.X <= e.XMax && p.Y >= e.YMin && p.Y <= e.YMax
}

// Intersects reports whether the two envelopes overlap (inclusive edges).
func (e Envelope) Intersects(other Envelope) bool {
	if e.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !(other.XMin > e.XMax || other.XMax < e.XMin ||
		other.YMin > e.YMax || other.YMax < e.YMin)
}

// ExpandToInclude returns the smallest envelope containing both e and
// other.
func (e Envelope) ExpandToInclude(other Envelope) Envelope {
	if other.IsEmpty() {
		return e
	}
	if e.IsEmpty() {
		return other
	}
	return Envelope{
		XMin: min(e.XMin, other.XMin),
		XMax: max(e.XMax, other.XMax),
		YMin: min(e.YMin, other.YMin),
		YMax: max(e.YMax, other.YMax),
	}
}

// Center returns the envelope's midpoint.
func (e Envelope) Center() Vec2 {
	return Vec2{(e.XMin + e.XMax) / 2, (e.YMin + e.YMax) / 2}
}

// Width returns XMax-XMin.
func (e Envelope) Width() float64 { return e.XMax - e.XMin }

// Height returns YMax-YMin.
func (e Envelope) Height() float64 { return e.YMax - e.YMin }
