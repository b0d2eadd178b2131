package sim_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
)

// fakeTime is a manually-advanced time source: scenario tests drive the
// tick body directly through it so every run is reproducible to the bit,
// with no wall-clock jitter in the dt sequence.
type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) step(d time.Duration) { f.t = f.t.Add(d) }

// waitUntilSimulated blocks until s has accumulated at least target
// simulated time, or the wall-clock deadline passes.
func waitUntilSimulated(t *testing.T, s *sim.Simulator, target time.Duration, deadline time.Duration) {
	t.Helper()
	end := time.Now().Add(deadline)
	for s.SimulatedTime() < target.Milliseconds() && time.Now().Before(end) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartRejectsEmptySimulator(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	err := s.Start(context.Background())
	require.Error(t, err)
	require.True(t, simerr.Is(err, simerr.ConfigurationInvalid))
}

func TestStartTwiceIsAlreadyRunning(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 10, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	err = s.Start(context.Background())
	require.Error(t, err)
	require.True(t, simerr.Is(err, simerr.AlreadyRunning))
}

func TestPauseResumeRequireRunning(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	require.True(t, simerr.Is(s.Pause(), simerr.NotRunning))
	require.True(t, simerr.Is(s.Resume(), simerr.NotRunning))
	require.True(t, simerr.Is(s.Stop(), simerr.NotRunning))
}

func TestFreeWalkerProgressesTowardItsWaypoint(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.2
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)

	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 5, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.SetFastForwardFactor(5))
	require.NoError(t, s.Start(context.Background()))
	waitUntilSimulated(t, s, 6*time.Second, 3*time.Second)
	require.NoError(t, s.Stop())

	crowds := s.Crowds()
	require.Len(t, crowds, 1)
	require.Len(t, crowds[0].Pedestrians, 1)
	ped := crowds[0].Pedestrians[0]
	require.Greater(t, ped.Position.X, 2.0, "pedestrian should have made progress toward its waypoint")
}

func TestWallReflectionNeverCrossesBoundary(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.2
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)

	wall := geom.Polyline{Points: []geom.Vec2{{X: 5, Y: -10}, {X: 5, Y: 10}}}
	require.NoError(t, s.AddBoundaries([]geom.Geometry{wall}))

	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 20, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.SetFastForwardFactor(5))
	require.NoError(t, s.Start(context.Background()))
	waitUntilSimulated(t, s, 4*time.Second, 3*time.Second)
	require.NoError(t, s.Stop())

	ped := s.Crowds()[0].Pedestrians[0]
	require.LessOrEqual(t, ped.Position.X, 5.0, "pedestrian must never cross the wall at x=5")
}

func TestVelocityNeverExceedsCeiling(t *testing.T) {
	cfg := sim.DefaultConfig()
	s := sim.New(cfg)

	_, err := s.CreateCrowd(
		[]geom.Vec2{{X: -5, Y: 0}, {X: 5, Y: 0.1}},
		[]geom.Vec2{{X: 5, Y: 0}},
		[]float64{2},
		false,
	)
	require.NoError(t, err)

	require.NoError(t, s.SetFastForwardFactor(5))
	require.NoError(t, s.Start(context.Background()))
	waitUntilSimulated(t, s, 2*time.Second, 2*time.Second)
	require.NoError(t, s.Stop())

	for _, p := range s.Crowds()[0].Pedestrians {
		require.LessOrEqual(t, p.Velocity.Norm(), p.MaxSpeed+1e-6)
		require.True(t, p.Velocity.IsFinite())
		require.True(t, p.Position.IsFinite())
	}
}

func TestFastForwardZeroFreezesSimulation(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 10, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.SetFastForwardFactor(0))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int64(0), s.SimulatedTime())
	ped := s.Crowds()[0].Pedestrians[0]
	require.Equal(t, geom.Vec2{X: 0, Y: 0}, ped.Position)
	require.Equal(t, geom.Vec2{}, ped.Velocity)
}

func TestResetClearsCrowdsAndBoundaries(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	require.NoError(t, s.AddBoundaries([]geom.Geometry{
		geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	}))
	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 10, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	require.Empty(t, s.Crowds())
	require.Empty(t, s.Boundaries())
	require.Equal(t, int64(0), s.SimulatedTime())
}

func TestResetWhileRunningFails(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	_, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: 0}}, []geom.Vec2{{X: 10, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.True(t, simerr.Is(s.Reset(), simerr.AlreadyRunning))
}

func TestCreateCrowdIgnoresInvalidStartPoints(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	wall := geom.Polygon{Rings: [][]geom.Vec2{{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
	}}}
	require.NoError(t, s.AddBoundaries([]geom.Geometry{wall}))

	crowd, err := s.CreateCrowd(
		[]geom.Vec2{{X: 1, Y: 1}, {X: 10, Y: 10}},
		[]geom.Vec2{{X: 20, Y: 20}},
		[]float64{2},
		true,
	)
	require.NoError(t, err)
	require.Equal(t, 1, crowd.Size())
}

func TestCreateCrowdRejectsInvalidStartPointsWithoutIgnoreFlag(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	wall := geom.Polygon{Rings: [][]geom.Vec2{{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
	}}}
	require.NoError(t, s.AddBoundaries([]geom.Geometry{wall}))

	_, err := s.CreateCrowd([]geom.Vec2{{X: 1, Y: 1}}, []geom.Vec2{{X: 20, Y: 20}}, []float64{2}, false)
	require.Error(t, err)
	require.True(t, simerr.Is(err, simerr.ConfigurationInvalid))
}

func TestCrossingRoutesKeepSeparation(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.3
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)
	fake := &fakeTime{t: time.Unix(0, 0)}
	s.SetTimeSource(fake.now)

	// Two routes crossing at the origin: one west-to-east along y=0, one
	// south-to-north along x=0.
	eastbound, err := s.CreateCrowd([]geom.Vec2{{X: -5, Y: 0}}, []geom.Vec2{{X: 5, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)
	northbound, err := s.CreateCrowd([]geom.Vec2{{X: 0, Y: -6}}, []geom.Vec2{{X: 0, Y: 5}}, []float64{2}, false)
	require.NoError(t, err)

	a := eastbound.Pedestrians[0]
	b := northbound.Pedestrians[0]

	minDist := a.Position.Distance(b.Position)
	for i := 0; i < 300; i++ { // 12s at the 40ms default tick
		fake.step(40 * time.Millisecond)
		s.TickOnce()
		if d := a.Position.Distance(b.Position); d < minDist {
			minDist = d
		}
	}

	require.Greater(t, minDist, a.Radius+b.Radius, "pedestrians must never come closer than the sum of their radii")
	require.True(t, a.WayFinding.IsRouteFinished())
	require.True(t, b.WayFinding.IsRouteFinished())
}

func TestCorridorThroughputStaysInRange(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.2
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)
	fake := &fakeTime{t: time.Unix(0, 0)}
	s.SetTimeSource(fake.now)

	require.NoError(t, s.AddBoundaries([]geom.Geometry{
		geom.Polyline{Points: []geom.Vec2{{X: -5, Y: -1}, {X: 60, Y: -1}}},
		geom.Polyline{Points: []geom.Vec2{{X: -5, Y: 1}, {X: 60, Y: 1}}},
	}))

	// 50 pedestrians on a uniform 10x5 grid filling the corridor mouth.
	var starts []geom.Vec2
	for col := 0; col < 10; col++ {
		for row := 0; row < 5; row++ {
			starts = append(starts, geom.Vec2{X: 0.5 + float64(col), Y: -0.8 + 0.4*float64(row)})
		}
	}
	crowd, err := s.CreateCrowd(starts, []geom.Vec2{{X: 1000, Y: 0}}, []float64{2}, false)
	require.NoError(t, err)
	require.Equal(t, 50, crowd.Size())

	maxAbsY := 0.0
	for i := 0; i < 750; i++ { // 30s at the 40ms default tick
		fake.step(40 * time.Millisecond)
		s.TickOnce()
		for _, p := range crowd.Pedestrians {
			if y := math.Abs(p.Position.Y); y > maxAbsY {
				maxAbsY = y
			}
		}
	}
	require.Less(t, maxAbsY, 1.0, "no pedestrian may ever cross a corridor wall")

	var sum float64
	for _, p := range crowd.Pedestrians {
		sum += p.Velocity.Norm()
	}
	avg := sum / float64(crowd.Size())
	require.GreaterOrEqual(t, avg, 0.7)
	require.LessOrEqual(t, avg, 1.2)
}

func TestPauseResumeMatchesUninterruptedRun(t *testing.T) {
	run := func(pauseMidway bool) []geom.Vec2 {
		cfg := sim.DefaultConfig()
		cfg.PedestrianPreferredSpeed = 1.3
		cfg.PedestrianSpeedStdDev = 0
		s := sim.New(cfg)
		fake := &fakeTime{t: time.Unix(0, 0)}
		s.SetTimeSource(fake.now)

		_, err := s.CreateCrowd(
			[]geom.Vec2{{X: 0, Y: 0}, {X: 0.6, Y: 0.3}},
			[]geom.Vec2{{X: 30, Y: 0}},
			[]float64{2},
			false,
		)
		require.NoError(t, err)

		tick := func(n int) {
			for i := 0; i < n; i++ {
				fake.step(40 * time.Millisecond)
				s.TickOnce()
			}
		}

		tick(75) // 3s
		if pauseMidway {
			s.Clock().Pause()
			fake.step(60 * time.Second)
			tick(5) // ticks while paused must not advance anything
			s.Clock().Resume()
		}
		tick(75) // 3s more

		var out []geom.Vec2
		for _, p := range s.Crowds()[0].Pedestrians {
			out = append(out, p.Position, p.Velocity)
		}
		return out
	}

	plain := run(false)
	interrupted := run(true)
	require.Equal(t, len(plain), len(interrupted))
	for i := range plain {
		require.InDelta(t, plain[i].X, interrupted[i].X, 1e-9)
		require.InDelta(t, plain[i].Y, interrupted[i].Y, 1e-9)
	}
}

func TestResetAndReaddMatchesFreshSimulatorFirstTick(t *testing.T) {
	populate := func(s *sim.Simulator) {
		require.NoError(t, s.AddBoundaries([]geom.Geometry{
			geom.Polyline{Points: []geom.Vec2{{X: -2, Y: -2}, {X: 12, Y: -2}}},
		}))
		_, err := s.CreateCrowd(
			[]geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: -0.6}},
			[]geom.Vec2{{X: 10, Y: 0}},
			[]float64{2},
			false,
		)
		require.NoError(t, err)
	}

	firstTick := func(s *sim.Simulator, fake *fakeTime) []geom.Vec2 {
		fake.step(40 * time.Millisecond)
		s.TickOnce()
		var out []geom.Vec2
		for _, p := range s.Crowds()[0].Pedestrians {
			out = append(out, p.Position, p.Velocity)
		}
		return out
	}

	cfg := sim.DefaultConfig()
	cfg.Seed = 99 // StdDev stays at the default: the sampled v_pref must replay too

	fresh := sim.New(cfg)
	fakeA := &fakeTime{t: time.Unix(0, 0)}
	fresh.SetTimeSource(fakeA.now)
	populate(fresh)
	want := firstTick(fresh, fakeA)

	recycled := sim.New(cfg)
	fakeB := &fakeTime{t: time.Unix(0, 0)}
	recycled.SetTimeSource(fakeB.now)
	populate(recycled)
	for i := 0; i < 40; i++ {
		fakeB.step(40 * time.Millisecond)
		recycled.TickOnce()
	}
	require.NoError(t, recycled.Reset())
	populate(recycled)
	got := firstTick(recycled, fakeB)

	require.Equal(t, want, got, "reset plus re-adding the same inputs must reproduce a fresh simulator's first tick bit for bit")
}

func TestAverageSimulationUpdateIntervalStartsAtZero(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	require.Equal(t, time.Duration(0), s.AverageSimulationUpdateInterval())
}
