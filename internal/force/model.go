// Package force implements the Social Force Model's pairwise and
// self-directed force terms. Each Model is a pure function of its
// geometric/kinematic inputs: no internal state, finite output always, a
// zero vector when the other party is farther away than the model's own
// interaction cutoff.
package force

import (
	"math"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
)

// Kind names a force model variant.
type Kind int

const (
	// HelbingBuzna is the circular pedestrian-interaction variant and the
	// production default.
	HelbingBuzna Kind = iota
	// HelbingJohansson is the elliptical variant. Experimental: it still
	// needs more numerical testing before being made the default.
	HelbingJohansson
	// Moussaid is a stub whose interaction terms all return zero.
	Moussaid
)

func (k Kind) String() string {
	switch k {
	case HelbingBuzna:
		return "HelbingBuzna"
	case HelbingJohansson:
		return "HelbingJohansson"
	case Moussaid:
		return "Moussaid"
	default:
		return "Unknown"
	}
}

// Neighbor is the minimal view of another pedestrian a force model needs.
// It intentionally does not depend on internal/core (the force model
// package must stay a leaf with no upward dependency).
type Neighbor struct {
	Position geom.Vec2
	Velocity geom.Vec2
	Radius   float64
}

// Model is the pluggable force-model interface.
type Model interface {
	Kind() Kind

	// IntrinsicForce drives the pedestrian toward vPref*dir with
	// relaxation time Tau, optionally modulated by a route-average-
	// velocity feedback term.
	IntrinsicForce(v geom.Vec2, dir geom.Vec2, vAvg, vPref, vMax float64) geom.Vec2

	// InteractPedestrian returns the repulsive force from other.
	InteractPedestrian(p, v geom.Vec2, other Neighbor) geom.Vec2

	// InteractBoundary returns the repulsive force from the nearest point
	// on seg.
	InteractBoundary(p geom.Vec2, seg geom.Segment) geom.Vec2

	// InteractGroup returns the cohesion force pulling p toward a group's
	// centroid. Experimental.
	InteractGroup(p, v, centroid geom.Vec2, memberCount int) geom.Vec2

	// MaxPedestrianInteractionDistance is the cutoff beyond which
	// InteractPedestrian returns the zero vector. The distance compared
	// against it is the centre distance for HelbingBuzna and the ellipse
	// semi-axis b for HelbingJohansson, which can be shorter than the
	// centre distance when the other pedestrian moves toward p.
	MaxPedestrianInteractionDistance() float64
	// MaxBoundaryInteractionDistance is the equivalent cutoff for
	// InteractBoundary.
	MaxBoundaryInteractionDistance() float64
	// PedestrianRadius is this model's assumed pedestrian radius (m).
	PedestrianRadius() float64
}

// Params bundles the tunable Helbing-style exponential parameters.
type Params struct {
	A1, B1 float64 // pedestrian-pedestrian, long-range term
	A2, B2 float64 // pedestrian-pedestrian, short-range anisotropic term

	BoundaryA, BoundaryB float64 // pedestrian-boundary term

	Lambda float64 // anisotropy factor, in [0,1]
	Tau    float64 // relaxation time (s)
	Radius float64 // pedestrianRadius (m)

	// LimitResultingForce is the force magnitude below which interaction
	// is cut off; it derives the two MaxXInteractionDistance values.
	LimitResultingForce float64
}

// DefaultParams returns the Helbing-Buzna parameter set from the
// literature (units m, m/s²).
func DefaultParams() Params {
	return Params{
		A1: 0.04, B1: 3.22,
		A2: 3.0, B2: 0.2,
		BoundaryA: 5.0, BoundaryB: 0.1,
		Lambda: 0.4,
		Tau:    0.5,
		Radius: 0.2,

		LimitResultingForce: 0.01,
	}
}

// maxInteractionDistance derives d_max = r + B*ln(A/limit), the distance
// at which A*exp((r-d)/B) drops below limit, taking the greater over the
// supplied (A,B) terms.
func maxInteractionDistance(r float64, limit float64, terms ...[2]float64) float64 {
	best := 0.0
	for _, t := range terms {
		a, b := t[0], t[1]
		if a <= 0 || b <= 0 || limit <= 0 {
			continue
		}
		d := r + b*math.Log(a/limit)
		if d > best {
			best = d
		}
	}
	return best
}

// expDecay computes the asymmetric exponential term A*exp((r-d)/B).
func expDecay(a, b, r, d float64) float64 {
	return a * math.Exp((r-d)/b)
}

// anisotropy returns phi(theta) = lambda + (1-lambda)*(1+cos(theta))/2,
// the angular weighting of the short-range interaction term.
func anisotropy(lambda float64, cosTheta float64) float64 {
	return lambda + (1-lambda)*(1+cosTheta)/2
}

// finiteOrZero returns v if both components are finite, else the zero
// vector. The force model must never emit a non-finite value.
func finiteOrZero(v geom.Vec2) geom.Vec2 {
	if v.IsFinite() {
		return v
	}
	return geom.Vec2{}
}
