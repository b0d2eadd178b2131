// Command gen_scenarios generates deterministic JSON crowd scenarios for
// crowd-sfm: a set of boundary geometries, a shared route, and a
// population of start points scattered behind the route's first
// waypoint. Flag-driven, seeded, one JSON file per scenario.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// Point is a scenario's wire point representation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scenario is a complete gen_scenarios output: boundaries (as polylines
// of points), a route (waypoint coordinates + corridor widths), and a
// population of start points.
type Scenario struct {
	Name       string    `json:"name"`
	Seed       int64     `json:"seed"`
	Boundaries [][]Point `json:"boundaries"`
	Route      []Point   `json:"route"`
	Widths     []float64 `json:"widths"`
	Starts     []Point   `json:"starts"`
}

func main() {
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	population := flag.Int("population", 30, "number of pedestrians to scatter")
	corridorLength := flag.Float64("length", 30, "corridor length in metres")
	corridorWidth := flag.Float64("width", 8, "corridor width in metres")
	name := flag.String("name", "corridor", "scenario name")
	outputDir := flag.String("output", "testdata", "output directory")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	half := *corridorWidth / 2
	scenario := Scenario{
		Name: *name,
		Seed: *seed,
		Boundaries: [][]Point{
			{{X: 0, Y: -half}, {X: *corridorLength, Y: -half}},
			{{X: 0, Y: half}, {X: *corridorLength, Y: half}},
		},
		Route:  []Point{{X: *corridorLength - 1, Y: 0}},
		Widths: []float64{*corridorWidth * 0.8},
	}

	for i := 0; i < *population; i++ {
		x := rng.Float64() * 2
		y := (rng.Float64()*2 - 1) * (half - 0.5)
		scenario.Starts = append(scenario.Starts, Point{X: x, Y: y})
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "gen_scenarios:", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(scenario, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen_scenarios:", err)
		os.Exit(1)
	}

	path := filepath.Join(*outputDir, *name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "gen_scenarios:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d pedestrians, seed=%d)\n", path, *population, *seed)
}
