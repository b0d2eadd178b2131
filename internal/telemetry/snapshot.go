// Package telemetry serializes a running Simulator's state into
// JSON-friendly snapshots for cmd/pedsimserve's websocket clients.
package telemetry

import (
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/core"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
)

// Vec2 is geom.Vec2's wire representation.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toVec2(v geom.Vec2) Vec2 { return Vec2{X: v.X, Y: v.Y} }

// PedestrianView is one pedestrian's wire state.
type PedestrianView struct {
	ID       int    `json:"id"`
	Position Vec2   `json:"position"`
	Velocity Vec2   `json:"velocity"`
	Status   string `json:"status"`
}

// CrowdView is one crowd's wire state.
type CrowdView struct {
	ID          int              `json:"id"`
	Size        int              `json:"size"`
	Centroid    Vec2             `json:"centroid"`
	Density     float64          `json:"density"`
	Pedestrians []PedestrianView `json:"pedestrians"`
}

// BoundaryView is one boundary's wire state.
type BoundaryView struct {
	ID     int    `json:"id"`
	Points []Vec2 `json:"points"`
}

// Snapshot is one tick's worth of simulator state, sent over the
// telemetry websocket.
type Snapshot struct {
	SimulatedMillis int64          `json:"simulated_millis"`
	AverageInterval int64          `json:"average_interval_micros"`
	Crowds          []CrowdView    `json:"crowds"`
	Boundaries      []BoundaryView `json:"boundaries"`
}

// Capture builds a Snapshot from s's current state.
func Capture(s *sim.Simulator) Snapshot {
	crowds := s.Crowds()
	crowdViews := make([]CrowdView, len(crowds))
	for i, c := range crowds {
		crowdViews[i] = toCrowdView(c)
	}

	boundaries := s.Boundaries()
	boundaryViews := make([]BoundaryView, len(boundaries))
	for i, b := range boundaries {
		boundaryViews[i] = BoundaryView{ID: int(b.ID), Points: toVec2Slice(b.Geometry.Coords())}
	}

	return Snapshot{
		SimulatedMillis: s.SimulatedTime(),
		AverageInterval: s.AverageSimulationUpdateInterval().Microseconds(),
		Crowds:          crowdViews,
		Boundaries:      boundaryViews,
	}
}

func toCrowdView(c *core.Crowd) CrowdView {
	peds := make([]PedestrianView, len(c.Pedestrians))
	for i, p := range c.Pedestrians {
		peds[i] = PedestrianView{
			ID:       int(p.ID),
			Position: toVec2(p.Position),
			Velocity: toVec2(p.Velocity),
			Status:   p.Status.String(),
		}
	}
	return CrowdView{
		ID:          int(c.ID),
		Size:        c.Size(),
		Centroid:    toVec2(c.Centroid()),
		Density:     c.Density(),
		Pedestrians: peds,
	}
}

func toVec2Slice(pts []geom.Vec2) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = toVec2(p)
	}
	return out
}

// tickResolution is the minimum spacing between published snapshots.
const tickResolution = 100 * time.Millisecond
