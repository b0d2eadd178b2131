package wayfind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/wayfind"
)

func TestNewRouteRejectsMismatchedLengths(t *testing.T) {
	_, err := wayfind.NewRoute([]geom.Vec2{{X: 0, Y: 0}}, []float64{1, 2}, nil)
	require.Error(t, err)
}

func TestNewRouteRejectsEmptyCoords(t *testing.T) {
	_, err := wayfind.NewRoute(nil, nil, nil)
	require.Error(t, err)
}

func TestModelAdvancesAcrossTargetLine(t *testing.T) {
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 10, Y: 0}}, []float64{4}, nil)
	require.NoError(t, err)

	m := wayfind.NewModel(route)
	require.False(t, m.IsRouteFinished())
	require.Equal(t, wayfind.SeekTarget, m.State())

	m.UpdateModel(1.0, geom.Vec2{X: 9, Y: 0}, geom.Vec2{X: 11, Y: 0})
	require.True(t, m.IsRouteFinished())
}

func TestModelDoesNotAdvanceBeforeCrossingTargetLine(t *testing.T) {
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 10, Y: 0}}, []float64{4}, nil)
	require.NoError(t, err)

	m := wayfind.NewModel(route)
	m.UpdateModel(1.0, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 1, Y: 0})
	require.False(t, m.IsRouteFinished())
}

func TestModelAdvancesThroughSuccessiveWaypoints(t *testing.T) {
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 5, Y: 0}, {X: 10, Y: 0}}, []float64{4, 4}, nil)
	require.NoError(t, err)

	m := wayfind.NewModel(route)
	m.UpdateModel(1.0, geom.Vec2{X: 4, Y: 0}, geom.Vec2{X: 6, Y: 0})
	require.False(t, m.IsRouteFinished())
	require.Equal(t, 1, m.CurrentWaypoint().Index)

	m.UpdateModel(2.0, geom.Vec2{X: 9, Y: 0}, geom.Vec2{X: 11, Y: 0})
	require.True(t, m.IsRouteFinished())
}

func TestSetNeedsOrientationTriggersReorientOnNextUpdate(t *testing.T) {
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 10, Y: 0}, {X: 20, Y: 0}}, []float64{4, 4}, nil)
	require.NoError(t, err)

	m := wayfind.NewModel(route)
	m.SetNeedsOrientation()
	require.True(t, m.NeedsOrientation())

	m.UpdateModel(1.0, geom.Vec2{X: 1, Y: 0}, geom.Vec2{X: 1, Y: 0})
	require.Equal(t, wayfind.Reorient, m.State())
	require.False(t, m.NeedsOrientation())
}

func TestGetNormalizedDirectionIsUnitVector(t *testing.T) {
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 10, Y: 0}}, []float64{4}, nil)
	require.NoError(t, err)

	m := wayfind.NewModel(route)
	dir := m.GetNormalizedDirection(geom.Vec2{X: 0, Y: 0})
	require.InDelta(t, 1.0, dir.Norm(), 1e-9)
}

func TestNewRouteClipsWidthAwayFromBoundary(t *testing.T) {
	// A horizontal wall through the waypoint crosses its (perpendicular,
	// vertical) target line no matter how far it is shrunk, so width
	// should clip all the way down to the minimum floor.
	wall := geom.Polyline{Points: []geom.Vec2{{X: -10, Y: 0}, {X: 10, Y: 0}}}
	route, err := wayfind.NewRoute([]geom.Vec2{{X: 0, Y: 0}}, []float64{100}, []geom.Geometry{wall})
	require.NoError(t, err)

	wp := route.Waypoints[0]
	require.Less(t, wp.Width, 100.0)
}
