package force_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
)

func TestNewDispatchesByKind(t *testing.T) {
	require.Equal(t, force.HelbingBuzna, force.New(force.HelbingBuzna, force.DefaultParams()).Kind())
	require.Equal(t, force.HelbingJohansson, force.New(force.HelbingJohansson, force.DefaultParams()).Kind())
	require.Equal(t, force.Moussaid, force.New(force.Moussaid, force.DefaultParams()).Kind())
}

func TestIntrinsicForcePullsTowardPreferredVelocity(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	f := m.IntrinsicForce(geom.Vec2{}, geom.Vec2{X: 1, Y: 0}, 0, 1.3, 1.5)
	require.Greater(t, f.X, 0.0)
	require.InDelta(t, 0.0, f.Y, 1e-9)
}

func TestInteractPedestrianDecaysWithDistance(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	near := force.Neighbor{Position: geom.Vec2{X: 0.5, Y: 0}, Radius: 0.2}
	far := force.Neighbor{Position: geom.Vec2{X: 3, Y: 0}, Radius: 0.2}

	fNear := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{}, near)
	fFar := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{}, far)

	require.Greater(t, fNear.Norm(), fFar.Norm())
}

func TestInteractPedestrianBeyondCutoffIsZero(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	cutoff := m.MaxPedestrianInteractionDistance()
	far := force.Neighbor{Position: geom.Vec2{X: cutoff * 10, Y: 0}, Radius: 0.2}

	f := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{}, far)
	require.Equal(t, geom.Vec2{}, f)
}

func TestInteractPedestrianCoincidentPositionsStaysFinite(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	coincident := force.Neighbor{Position: geom.Vec2{}, Radius: 0.2}

	f := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{}, coincident)
	require.True(t, f.IsFinite())
}

func TestInteractBoundaryDecaysWithDistance(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	wall := geom.Segment{A: geom.Vec2{X: 0, Y: -10}, B: geom.Vec2{X: 0, Y: 10}}

	near := m.InteractBoundary(geom.Vec2{X: 0.5, Y: 0}, wall)
	far := m.InteractBoundary(geom.Vec2{X: 3, Y: 0}, wall)
	require.Greater(t, near.Norm(), far.Norm())
}

func TestInteractGroupPullsTowardCentroidBeyondComfortRadius(t *testing.T) {
	m := force.NewHelbingBuzna(force.DefaultParams())
	f := m.InteractGroup(geom.Vec2{}, geom.Vec2{}, geom.Vec2{X: 5, Y: 0}, 3)
	require.Greater(t, f.X, 0.0)

	// A lone pedestrian (memberCount<=1) feels no cohesion.
	require.Equal(t, geom.Vec2{}, m.InteractGroup(geom.Vec2{}, geom.Vec2{}, geom.Vec2{X: 5, Y: 0}, 1))
}

func TestMoussaidStubReturnsZero(t *testing.T) {
	m := force.NewMoussaid(force.DefaultParams())
	f := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{}, force.Neighbor{Position: geom.Vec2{X: 0.1, Y: 0}})
	require.Equal(t, geom.Vec2{}, f)
}

func TestHelbingJohanssonInteractPedestrianIsFinite(t *testing.T) {
	m := force.NewHelbingJohansson(force.DefaultParams())
	n := force.Neighbor{Position: geom.Vec2{X: 0.4, Y: 0.1}, Radius: 0.2}
	f := m.InteractPedestrian(geom.Vec2{}, geom.Vec2{X: 1, Y: 0}, n)
	require.True(t, f.IsFinite())
}
