package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/core"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
	"github.com/elektrokombinacija/crowd-sfm/internal/wayfind"
)

func TestNewBoundaryFromPolylineBuildsSegments(t *testing.T) {
	wall := geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	b, err := core.NewBoundary(1, wall, 0.5, 0, 0)
	require.NoError(t, err)
	require.Len(t, b.Segments, 1)
	require.Nil(t, b.Buffered)
}

func TestNewBoundarySplitsLongSegments(t *testing.T) {
	wall := geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	b, err := core.NewBoundary(1, wall, 0.5, 0, 2)
	require.NoError(t, err)
	require.Greater(t, len(b.Segments), 1)
}

func TestNewBoundaryRejectsNilGeometry(t *testing.T) {
	_, err := core.NewBoundary(1, nil, 0.5, 0, 0)
	require.Error(t, err)
	require.True(t, simerr.Is(err, simerr.GeometryInvalid))
}

func TestNewBoundaryBuffersWhenRequested(t *testing.T) {
	wall := geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	b, err := core.NewBoundary(1, wall, 0.5, 1.0, 0)
	require.NoError(t, err)
	require.NotNil(t, b.Buffered)
}

func TestValidateGeometriesRejectsNil(t *testing.T) {
	err := core.ValidateGeometries([]geom.Geometry{nil})
	require.Error(t, err)
}

func TestValidateGeometriesAcceptsValidPolyline(t *testing.T) {
	err := core.ValidateGeometries([]geom.Geometry{
		geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	})
	require.NoError(t, err)
}

func routeTo(t *testing.T, target geom.Vec2) *wayfind.Route {
	t.Helper()
	route, err := wayfind.NewRoute([]geom.Vec2{target}, []float64{2.0}, nil)
	require.NoError(t, err)
	return route
}

func TestNewPedestrianDesiredDirectionPointsAtRoute(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	p := core.NewPedestrian(1, geom.Vec2{}, 1.3, 1.6, 0.2, route)

	dir := p.DesiredDirection()
	require.InDelta(t, 1.0, dir.X, 1e-9)
	require.InDelta(t, 0.0, dir.Y, 1e-9)
}

func TestNewPedestrianWithoutRouteHasZeroDirection(t *testing.T) {
	p := core.NewPedestrian(1, geom.Vec2{}, 1.3, 1.6, 0.2, nil)
	require.Equal(t, geom.Vec2{}, p.DesiredDirection())
	require.Equal(t, 0.0, p.AverageVelocity())
}

func TestRecordVetoSetsNeedsOrientationAndEventuallyStuck(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	p := core.NewPedestrian(1, geom.Vec2{}, 1.3, 1.6, 0.2, route)

	p.RecordVeto()
	require.True(t, p.NeedsOrientation)
	require.NotEqual(t, core.StatusStuck, p.Status)

	for i := 0; i < 40; i++ {
		p.RecordVeto()
	}
	require.Equal(t, core.StatusStuck, p.Status)
}

func TestRecordMoveClearsNeedsOrientation(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	p := core.NewPedestrian(1, geom.Vec2{}, 1.3, 1.6, 0.2, route)

	p.RecordVeto()
	require.True(t, p.NeedsOrientation)

	p.RecordMove()
	require.False(t, p.NeedsOrientation)
}

func TestCrowdCentroidAndDensity(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	crowd := core.NewCrowd(1, route)
	crowd.AddPedestrian(core.NewPedestrian(1, geom.Vec2{X: 0, Y: 0}, 1.3, 1.6, 0.2, route))
	crowd.AddPedestrian(core.NewPedestrian(2, geom.Vec2{X: 10, Y: 0}, 1.3, 1.6, 0.2, route))
	crowd.AddPedestrian(core.NewPedestrian(3, geom.Vec2{X: 10, Y: 10}, 1.3, 1.6, 0.2, route))

	require.Equal(t, 3, crowd.Size())
	centroid := crowd.Centroid()
	require.InDelta(t, 20.0/3, centroid.X, 1e-9)
	require.InDelta(t, 10.0/3, centroid.Y, 1e-9)
	require.Greater(t, crowd.Density(), 0.0)
}

func TestGroupCentroidOnlyAveragesMembers(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	crowd := core.NewCrowd(1, route)
	a := core.NewPedestrian(1, geom.Vec2{X: 0, Y: 0}, 1.3, 1.6, 0.2, route)
	b := core.NewPedestrian(2, geom.Vec2{X: 10, Y: 0}, 1.3, 1.6, 0.2, route)
	outsider := core.NewPedestrian(3, geom.Vec2{X: 1000, Y: 1000}, 1.3, 1.6, 0.2, route)
	crowd.AddPedestrian(a)
	crowd.AddPedestrian(b)
	crowd.AddPedestrian(outsider)

	group := crowd.NewGroup(1, a, b)
	centroid := group.Centroid(crowd.Pedestrians)
	require.InDelta(t, 5.0, centroid.X, 1e-9)
	require.InDelta(t, 0.0, centroid.Y, 1e-9)
}

func TestPedestrianBoundsExpandsByRadius(t *testing.T) {
	p := core.NewPedestrian(1, geom.Vec2{X: 5, Y: 5}, 1.3, 1.6, 0.3, nil)
	b := p.Bounds()
	require.InDelta(t, 4.7, b.XMin, 1e-9)
	require.InDelta(t, 5.3, b.XMax, 1e-9)
}

func TestCrowdCloneIsIndependentOfLiveState(t *testing.T) {
	route := routeTo(t, geom.Vec2{X: 10, Y: 0})
	crowd := core.NewCrowd(1, route)
	p := core.NewPedestrian(1, geom.Vec2{X: 0, Y: 0}, 1.3, 1.6, 0.2, route)
	crowd.AddPedestrian(p)

	clone := crowd.Clone()
	p.Position = geom.Vec2{X: 42, Y: 0}
	p.WayFinding.SetNeedsOrientation()

	require.Equal(t, geom.Vec2{X: 0, Y: 0}, clone.Pedestrians[0].Position)
	require.False(t, clone.Pedestrians[0].WayFinding.NeedsOrientation())
	require.Same(t, route, clone.Route)
}

func TestSnapshotIsIndependentOfLivePedestrian(t *testing.T) {
	p := core.NewPedestrian(1, geom.Vec2{X: 0, Y: 0}, 1.3, 1.6, 0.2, nil)
	snap := core.Snapshot(p)

	p.Position = geom.Vec2{X: 99, Y: 99}
	require.Equal(t, geom.Vec2{X: 0, Y: 0}, snap.Position)
}
