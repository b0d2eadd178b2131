// Package quadtree implements the spatial index the simulator uses for its
// three logical indexes (pedestrians, boundaries, boundary segments).
// Range queries are a primary filter: the returned items are every item
// whose envelope MAY intersect the query envelope; callers apply an exact
// secondary predicate themselves.
package quadtree

import "github.com/elektrokombinacija/crowd-sfm/internal/geom"

// Bounded is anything the tree can index: it must expose its own envelope.
type Bounded interface {
	Bounds() geom.Envelope
}

// nodeCapacity is the number of items a node holds before it subdivides.
const nodeCapacity = 16

// maxDepth bounds recursion so a degenerate swarm of coincident points
// cannot subdivide forever.
const maxDepth = 20

// Tree is a generic quadtree over items of type T satisfying Bounded.
type Tree[T Bounded] struct {
	root *node[T]
}

type node[T Bounded] struct {
	bounds         geom.Envelope
	items          []T
	depth          int
	nw, ne, sw, se *node[T]
	divided        bool
}

// New creates an empty tree covering bounds. Items inserted outside bounds
// are still retained (attached to the root) rather than silently dropped,
// since the simulator's world extent is not always known precisely ahead
// of time (pedestrians may wander past a nominal boundary while flagged
// for reorientation).
func New[T Bounded](bounds geom.Envelope) *Tree[T] {
	return &Tree[T]{root: &node[T]{bounds: bounds}}
}

// Insert adds item to the tree.
func (t *Tree[T]) Insert(item T) {
	t.root.insert(item)
}

func (n *node[T]) insert(item T) {
	if len(n.items) < nodeCapacity || n.depth >= maxDepth {
		if !n.divided {
			n.items = append(n.items, item)
			return
		}
	}

	if !n.divided {
		n.subdivide()
	}

	b := item.Bounds()
	center := n.bounds.Center()
	switch quadrantOf(b, center) {
	case quadNW:
		n.nw.insert(item)
	case quadNE:
		n.ne.insert(item)
	case quadSW:
		n.sw.insert(item)
	case quadSE:
		n.se.insert(item)
	default:
		// Straddles the split point (or is larger than a quadrant):
		// keep it at this level so Query still finds it via every
		// overlapping child.
		n.items = append(n.items, item)
	}
}

type quadrant int

const (
	quadNone quadrant = iota
	quadNW
	quadNE
	quadSW
	quadSE
)

// quadrantOf returns which single child quadrant fully contains b, or
// quadNone if b straddles the split lines.
func quadrantOf(b geom.Envelope, center geom.Vec2) quadrant {
	left := b.XMax <= center.X
	right := b.XMin >= center.X
	top := b.YMax <= center.Y
	bottom := b.YMin >= center.Y

	switch {
	case left && top:
		return quadNW
	case right && top:
		return quadNE
	case left && bottom:
		return quadSW
	case right && bottom:
		return quadSE
	default:
		return quadNone
	}
}

func (n *node[T]) subdivide() {
	xmin, xmax, ymin, ymax := n.bounds.XMin, n.bounds.XMax, n.bounds.YMin, n.bounds.YMax
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2

	n.nw = &node[T]{bounds: geom.Envelope{XMin: xmin, XMax: cx, YMin: ymin, YMax: cy}, depth: n.depth + 1}
	n.ne = &node[T]{bounds: geom.Envelope{XMin: cx, XMax: xmax, YMin: ymin, YMax: cy}, depth: n.depth + 1}
	n.sw = &node[T]{bounds: geom.Envelope{XMin: xmin, XMax: cx, YMin: cy, YMax: ymax}, depth: n.depth + 1}
	n.se = &node[T]{bounds: geom.Envelope{XMin: cx, XMax: xmax, YMin: cy, YMax: ymax}, depth: n.depth + 1}
	n.divided = true
}

// Query returns every item whose envelope may intersect q (primary
// filter only).
func (t *Tree[T]) Query(q geom.Envelope) []T {
	var out []T
	t.root.query(q, &out)
	return out
}

func (n *node[T]) query(q geom.Envelope, out *[]T) {
	if !n.bounds.Intersects(q) {
		return
	}
	for _, item := range n.items {
		if item.Bounds().Intersects(q) {
			*out = append(*out, item)
		}
	}
	if n.divided {
		n.nw.query(q, out)
		n.ne.query(q, out)
		n.sw.query(q, out)
		n.se.query(q, out)
	}
}

// All returns every item in the tree, in no particular order.
func (t *Tree[T]) All() []T {
	var out []T
	t.root.all(&out)
	return out
}

func (n *node[T]) all(out *[]T) {
	*out = append(*out, n.items...)
	if n.divided {
		n.nw.all(out)
		n.ne.all(out)
		n.sw.all(out)
		n.se.all(out)
	}
}
