// Package core holds the simulation's entity state: Boundary and
// BoundarySegment (static obstacles), Pedestrian, Group and Crowd.
package core

import (
	"fmt"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
)

// BoundaryID uniquely identifies a Boundary.
type BoundaryID int

// BoundarySegment is one piece (a point or a line segment) of a
// Boundary's decomposition, with its own bounding box expanded by the
// interaction distance. Immutable once constructed.
type BoundarySegment struct {
	Owner       BoundaryID
	Geometry    geom.Geometry
	boundingBox geom.Envelope
}

// Bounds implements quadtree.Bounded.
func (s *BoundarySegment) Bounds() geom.Envelope { return s.boundingBox }

// Boundary is a static obstacle: one planar geometry (point, line or
// polygon), a cached bounding box, an optional buffered geometry used by
// the way-finding model, and its ordered BoundarySegment decomposition.
type Boundary struct {
	ID       BoundaryID
	Geometry geom.Geometry
	// Buffered is geometry.buffer(boundaryDistance), or nil when no
	// buffer distance was requested.
	Buffered    geom.Geometry
	boundingBox geom.Envelope
	Segments    []*BoundarySegment
}

// Bounds implements quadtree.Bounded.
func (b *Boundary) Bounds() geom.Envelope { return b.boundingBox }

// NewBoundary constructs a Boundary from g. interactionDistance is the
// force model's maxBoundaryInteractionDistance, used to expand the cached
// bounding box and every segment's bounding box. bufferDistance, when
// positive, produces Buffered via geometry.Buffer(bufferDistance).
// maxSegmentLength, when positive, chunks line/polygon geometry into
// segments no longer than that; 0 keeps each edge whole.
func NewBoundary(id BoundaryID, g geom.Geometry, interactionDistance, bufferDistance, maxSegmentLength float64) (*Boundary, error) {
	if g == nil {
		return nil, simerr.New(simerr.GeometryInvalid, "boundary geometry is nil")
	}

	if !g.IsValid() {
		repaired := repairGeometry(g)
		if repaired == nil || !repaired.IsValid() {
			return nil, simerr.New(simerr.GeometryInvalid, "geometry remains invalid after zero-width buffer repair")
		}
		g = repaired
	}

	coords := g.Coords()
	if len(coords) == 0 {
		return nil, simerr.New(simerr.GeometryInvalid, "geometry has no coordinates")
	}

	segments := buildSegments(id, g, interactionDistance, maxSegmentLength)
	if len(segments) == 0 {
		return nil, simerr.New(simerr.GeometryInvalid, "boundary segmentation is empty")
	}

	var buffered geom.Geometry
	if bufferDistance > 0 {
		buffered = g.Buffer(bufferDistance)
	}

	return &Boundary{
		ID:          id,
		Geometry:    g,
		Buffered:    buffered,
		boundingBox: g.Envelope().ExpandBy(interactionDistance),
		Segments:    segments,
	}, nil
}

func buildSegments(id BoundaryID, g geom.Geometry, interactionDistance, maxSegmentLength float64) []*BoundarySegment {
	coords := g.Coords()

	if len(coords) == 1 {
		p := geom.Point{P: coords[0]}
		return []*BoundarySegment{{
			Owner:       id,
			Geometry:    p,
			boundingBox: p.Envelope().ExpandBy(interactionDistance),
		}}
	}

	ring := coords
	if _, isPolygon := g.(geom.Polygon); isPolygon && len(coords) >= 3 {
		ring = append(append([]geom.Vec2{}, coords...), coords[0])
	}

	segs := geom.Segmentize(ring, maxSegmentLength)
	out := make([]*BoundarySegment, 0, len(segs))
	for _, s := range segs {
		line := geom.Polyline{Points: []geom.Vec2{s.A, s.B}}
		out = append(out, &BoundarySegment{
			Owner:       id,
			Geometry:    line,
			boundingBox: line.Envelope().ExpandBy(interactionDistance),
		})
	}
	return out
}

// repairGeometry attempts a zero-width-buffer style self-heal: drop
// non-finite and consecutive-duplicate vertices, keeping the same
// concrete geometry type. Returns nil if nothing usable remains.
func repairGeometry(g geom.Geometry) geom.Geometry {
	coords := g.Coords()
	cleaned := make([]geom.Vec2, 0, len(coords))
	for _, p := range coords {
		if !p.IsFinite() {
			continue
		}
		if len(cleaned) > 0 && cleaned[len(cleaned)-1] == p {
			continue
		}
		cleaned = append(cleaned, p)
	}

	switch g.(type) {
	case geom.Point:
		if len(cleaned) == 0 {
			return nil
		}
		return geom.Point{P: cleaned[0]}
	case geom.Polyline:
		if len(cleaned) < 2 {
			return nil
		}
		return geom.Polyline{Points: cleaned}
	case geom.Polygon:
		if len(cleaned) < 3 {
			return nil
		}
		return geom.Polygon{Rings: [][]geom.Vec2{cleaned}}
	default:
		return nil
	}
}

// ValidateGeometries checks geometry validity for a slice of boundary
// geometries before they are built into Boundary values. Simulator's
// pre-start validation does not call it; it checks each built
// Boundary's geometry directly.
func ValidateGeometries(geoms []geom.Geometry) error {
	for i, g := range geoms {
		if g == nil {
			return simerr.New(simerr.GeometryInvalid, fmt.Sprintf("boundary %d: nil geometry", i))
		}
		if !g.IsValid() && repairGeometry(g) == nil {
			return simerr.New(simerr.GeometryInvalid, fmt.Sprintf("boundary %d: invalid geometry", i))
		}
	}
	return nil
}
