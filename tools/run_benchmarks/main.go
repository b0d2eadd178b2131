// Command run_benchmarks runs gen_scenarios output through every
// force-model/integrator combination and reports throughput and crowd
// metrics as both a CSV and a console summary table.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/elektrokombinacija/crowd-sfm/internal/force"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/integrate"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
)

// scenarioFile mirrors gen_scenarios' Scenario wire format.
type scenarioFile struct {
	Name   string `json:"name"`
	Seed   int64  `json:"seed"`
	Routes []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"route"`
	Boundaries [][]struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"boundaries"`
	Widths []float64 `json:"widths"`
	Starts []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"starts"`
}

// BenchmarkResult records one (scenario, force model, integrator) run.
type BenchmarkResult struct {
	Timestamp    string  `json:"timestamp"`
	GoVersion    string  `json:"go_version"`
	OS           string  `json:"os"`
	Arch         string  `json:"arch"`
	Scenario     string  `json:"scenario"`
	NumAgents    int     `json:"num_agents"`
	ForceModel   string  `json:"force_model"`
	Integrator   string  `json:"integrator"`
	RuntimeMs    float64 `json:"runtime_ms"`
	SimulatedMs  int64   `json:"simulated_ms"`
	FinalDensity float64 `json:"final_density"`
	AvgInterval  float64 `json:"avg_interval_ms"`
}

var forceModels = []force.Kind{force.HelbingBuzna, force.HelbingJohansson, force.Moussaid}
var integrators = []integrate.Kind{integrate.SimpleEuler, integrate.RungeKutta4}

func loadScenario(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc scenarioFile
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// runOne drives a single (scenario, force model, integrator) combination
// for the given simulated duration and returns its recorded result.
func runOne(sc *scenarioFile, fk force.Kind, ik integrate.Kind, simulated time.Duration) (*BenchmarkResult, error) {
	cfg := sim.DefaultConfig()
	cfg.ForceModel = fk
	cfg.Integrator = ik
	cfg.Seed = sc.Seed

	s := sim.New(cfg)

	var boundaries []geom.Geometry
	for _, b := range sc.Boundaries {
		pts := make([]geom.Vec2, len(b))
		for i, p := range b {
			pts[i] = geom.Vec2{X: p.X, Y: p.Y}
		}
		boundaries = append(boundaries, geom.Polyline{Points: pts})
	}
	if len(boundaries) > 0 {
		if err := s.AddBoundaries(boundaries); err != nil {
			return nil, fmt.Errorf("add boundaries: %w", err)
		}
	}

	starts := make([]geom.Vec2, len(sc.Starts))
	for i, p := range sc.Starts {
		starts[i] = geom.Vec2{X: p.X, Y: p.Y}
	}
	route := make([]geom.Vec2, len(sc.Routes))
	for i, p := range sc.Routes {
		route[i] = geom.Vec2{X: p.X, Y: p.Y}
	}

	crowd, err := s.CreateCrowd(starts, route, sc.Widths, true)
	if err != nil {
		return nil, fmt.Errorf("create crowd: %w", err)
	}

	if err := s.SetFastForwardFactor(5); err != nil {
		return nil, fmt.Errorf("set fast-forward: %w", err)
	}

	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	deadline := time.Now().Add(simulated/5 + time.Second)
	for s.SimulatedTime() < simulated.Milliseconds() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Stop(); err != nil {
		return nil, fmt.Errorf("stop: %w", err)
	}
	elapsed := time.Since(start)

	return &BenchmarkResult{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		Scenario:     sc.Name,
		NumAgents:    crowd.Size(),
		ForceModel:   fk.String(),
		Integrator:   ik.String(),
		RuntimeMs:    float64(elapsed.Microseconds()) / 1000.0,
		SimulatedMs:  s.SimulatedTime(),
		FinalDensity: crowd.Density(),
		AvgInterval:  float64(s.AverageSimulationUpdateInterval().Microseconds()) / 1000.0,
	}, nil
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "go_version", "os", "arch", "scenario", "num_agents",
		"force_model", "integrator", "runtime_ms", "simulated_ms",
		"final_density", "avg_interval_ms",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch, r.Scenario, fmt.Sprintf("%d", r.NumAgents),
			r.ForceModel, r.Integrator,
			fmt.Sprintf("%.3f", r.RuntimeMs), fmt.Sprintf("%d", r.SimulatedMs),
			fmt.Sprintf("%.4f", r.FinalDensity), fmt.Sprintf("%.3f", r.AvgInterval),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*BenchmarkResult) {
	type key struct{ force, integrator string }
	type agg struct {
		runs           int
		totalRuntimeMs float64
		totalInterval  float64
	}
	metrics := make(map[key]*agg)
	for _, r := range results {
		k := key{r.ForceModel, r.Integrator}
		m, ok := metrics[k]
		if !ok {
			m = &agg{}
			metrics[k] = m
		}
		m.runs++
		m.totalRuntimeMs += r.RuntimeMs
		m.totalInterval += r.AvgInterval
	}

	var keys []key
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].force != keys[j].force {
			return keys[i].force < keys[j].force
		}
		return keys[i].integrator < keys[j].integrator
	})

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-20s %-14s %6s %14s %14s\n", "ForceModel", "Integrator", "Runs", "AvgRuntime(ms)", "AvgTickMs")
	for _, k := range keys {
		m := metrics[k]
		fmt.Printf("%-20s %-14s %6d %14.2f %14.3f\n",
			k.force, k.integrator, m.runs, m.totalRuntimeMs/float64(m.runs), m.totalInterval/float64(m.runs))
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "directory containing gen_scenarios JSON files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "output CSV file")
	duration := flag.Duration("duration", 5*time.Second, "simulated duration per run")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintln(os.Stderr, "run_benchmarks:", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.json"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "run_benchmarks:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no scenario files found in %s; run gen_scenarios first\n", *inputDir)
		os.Exit(1)
	}

	var results []*BenchmarkResult
	total := len(files) * len(forceModels) * len(integrators)
	fmt.Printf("running benchmarks: %d scenarios x %d force models x %d integrators = %d runs\n",
		len(files), len(forceModels), len(integrators), total)

	for _, file := range files {
		sc, err := loadScenario(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading %s: %v\n", file, err)
			continue
		}
		for _, fk := range forceModels {
			for _, ik := range integrators {
				result, err := runOne(sc, fk, ik, *duration)
				if err != nil {
					fmt.Fprintf(os.Stderr, "run %s/%s/%s failed: %v\n", sc.Name, fk, ik, err)
					continue
				}
				results = append(results, result)
			}
		}
	}

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintln(os.Stderr, "run_benchmarks:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d results)\n", *outputFile, len(results))
	printSummary(results)
}
