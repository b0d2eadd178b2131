// Command pedsim runs a handful of Social Force Model crowd scenarios
// and prints summary metrics for each.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
)

func main() {
	fmt.Println("=== Crowd SFM: scenario walkthrough ===")

	fmt.Println("--- Free walker ---")
	runFreeWalker()

	fmt.Println("\n--- Wall reflection ---")
	runWallReflection()

	fmt.Println("\n--- Head-on avoidance ---")
	runHeadOnAvoidance()
}

func runFreeWalker() {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.2
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)

	if _, err := s.CreateCrowd(
		[]geom.Vec2{{X: 0, Y: 0}},
		[]geom.Vec2{{X: 10, Y: 0}},
		[]float64{1.0},
		false,
	); err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	runFor(s, 10*time.Second)
	report(s)
}

func runWallReflection() {
	cfg := sim.DefaultConfig()
	cfg.PedestrianPreferredSpeed = 1.2
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)

	wall := geom.Polyline{Points: []geom.Vec2{{X: 5, Y: -10}, {X: 5, Y: 10}}}
	if err := s.AddBoundaries([]geom.Geometry{wall}); err != nil {
		fmt.Println("setup failed:", err)
		return
	}
	if _, err := s.CreateCrowd(
		[]geom.Vec2{{X: 0, Y: 0}},
		[]geom.Vec2{{X: 20, Y: 0}},
		[]float64{1.0},
		false,
	); err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	runFor(s, 20*time.Second)
	report(s)
}

func runHeadOnAvoidance() {
	cfg := sim.DefaultConfig()
	cfg.ForceModel = force.HelbingBuzna
	cfg.PedestrianPreferredSpeed = 1.3
	cfg.PedestrianSpeedStdDev = 0
	s := sim.New(cfg)

	if _, err := s.CreateCrowd(
		[]geom.Vec2{{X: -5, Y: 0}},
		[]geom.Vec2{{X: 5, Y: 0}},
		[]float64{1.0},
		false,
	); err != nil {
		fmt.Println("setup failed:", err)
		return
	}
	if _, err := s.CreateCrowd(
		[]geom.Vec2{{X: 5, Y: 0}},
		[]geom.Vec2{{X: -5, Y: 0}},
		[]float64{1.0},
		false,
	); err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	runFor(s, 10*time.Second)
	report(s)
}

// runFor starts s, lets it tick for the given simulated duration (at
// fast-forward factor 5 so wall time spent here stays short), then stops
// it.
func runFor(s *sim.Simulator, simulated time.Duration) {
	if err := s.SetFastForwardFactor(5); err != nil {
		fmt.Println("set fast-forward failed:", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		fmt.Println("start failed:", err)
		return
	}

	deadline := time.Now().Add(simulated/5 + time.Second)
	for time.Now().Before(deadline) && s.SimulatedTime() < simulated.Milliseconds() {
		time.Sleep(10 * time.Millisecond)
	}

	if err := s.Stop(); err != nil {
		fmt.Println("stop failed:", err)
	}
}

func report(s *sim.Simulator) {
	fmt.Printf("simulated=%dms avg_update_interval=%v\n", s.SimulatedTime(), s.AverageSimulationUpdateInterval())
	for _, c := range s.Crowds() {
		fmt.Printf("  crowd %d: size=%d centroid=%s density=%.3f\n", c.ID, c.Size(), vecString(c.Centroid()), c.Density())
		for _, p := range c.Pedestrians {
			fmt.Printf("    ped %d: pos=%s vel=%s status=%s\n", p.ID, vecString(p.Position), vecString(p.Velocity), p.Status)
		}
	}
}

func vecString(v geom.Vec2) string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}
