package core

import (
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/wayfind"
)

// CrowdID identifies a Crowd within a Simulator.
type CrowdID int

// Crowd is a set of Pedestrians sharing one Route, plus whatever Groups
// have been formed among them. It exposes the aggregate observability
// views (size, density, centroid, outline) so the Simulator never
// recomputes them inline.
type Crowd struct {
	ID          CrowdID
	Route       *wayfind.Route
	Pedestrians []*Pedestrian
	Groups      map[GroupID]*Group
}

// NewCrowd constructs an empty crowd following route (nil for pedestrians
// with no route, e.g. free-roaming scenarios).
func NewCrowd(id CrowdID, route *wayfind.Route) *Crowd {
	return &Crowd{ID: id, Route: route, Groups: make(map[GroupID]*Group)}
}

// AddPedestrian appends p to the crowd.
func (c *Crowd) AddPedestrian(p *Pedestrian) {
	p.CrowdID = c.ID
	c.Pedestrians = append(c.Pedestrians, p)
}

// Size is the pedestrian count.
func (c *Crowd) Size() int { return len(c.Pedestrians) }

// Centroid is the mean pedestrian position.
func (c *Crowd) Centroid() geom.Vec2 {
	if len(c.Pedestrians) == 0 {
		return geom.Vec2{}
	}
	sum := geom.Vec2{}
	for _, p := range c.Pedestrians {
		sum = sum.Add(p.Position)
	}
	return sum.Scale(1 / float64(len(c.Pedestrians)))
}

// Outline returns the convex hull of current pedestrian positions, a
// cheap approximate crowd footprint for density and visualization.
func (c *Crowd) Outline() []geom.Vec2 {
	pts := make([]geom.Vec2, len(c.Pedestrians))
	for i, p := range c.Pedestrians {
		pts[i] = p.Position
	}
	return geom.ConvexHull(pts)
}

// Density is pedestrians per unit area of the outline polygon, computed
// via the shoelace formula. Returns 0 for crowds of fewer than 3
// pedestrians or a degenerate (zero-area) outline.
func (c *Crowd) Density() float64 {
	hull := c.Outline()
	if len(hull) < 3 {
		return 0
	}
	area := polygonArea(hull)
	if area < 1e-9 {
		return 0
	}
	return float64(len(c.Pedestrians)) / area
}

func polygonArea(pts []geom.Vec2) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// GroupOf returns the Group a pedestrian belongs to, or nil if it is
// ungrouped.
func (c *Crowd) GroupOf(p *Pedestrian) *Group {
	if p.GroupID == 0 {
		return nil
	}
	return c.Groups[p.GroupID]
}

// NewGroup creates and registers a Group from the given member
// pedestrians, assigning their GroupID.
func (c *Crowd) NewGroup(id GroupID, members ...*Pedestrian) *Group {
	g := &Group{ID: id}
	for _, m := range members {
		m.GroupID = id
		g.Members = append(g.Members, m.ID)
	}
	c.Groups[id] = g
	return g
}

// Clone returns a deep copy of the crowd: copied pedestrians (including
// their way-finding state) sharing the same immutable Route. Used by
// snapshot accessors so observers never alias live tick state.
func (c *Crowd) Clone() *Crowd {
	out := &Crowd{ID: c.ID, Route: c.Route, Groups: make(map[GroupID]*Group, len(c.Groups))}
	out.Pedestrians = make([]*Pedestrian, len(c.Pedestrians))
	for i, p := range c.Pedestrians {
		out.Pedestrians[i] = p.Clone()
	}
	for id, g := range c.Groups {
		gc := &Group{ID: g.ID, Members: append([]PedestrianID(nil), g.Members...)}
		out.Groups[id] = gc
	}
	return out
}

// PedestrianByID finds a pedestrian by ID, or nil if absent.
func (c *Crowd) PedestrianByID(id PedestrianID) *Pedestrian {
	for _, p := range c.Pedestrians {
		if p.ID == id {
			return p
		}
	}
	return nil
}
