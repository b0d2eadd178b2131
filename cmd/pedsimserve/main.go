// Command pedsimserve runs a crowd scenario and streams its state over a
// websocket for remote visualization.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
	"github.com/elektrokombinacija/crowd-sfm/internal/telemetry"
)

func main() {
	addr := flag.String("addr", ":8090", "telemetry listen address")
	flag.Parse()

	s := sim.New(sim.DefaultConfig())

	corridor := []geom.Geometry{
		geom.Polyline{Points: []geom.Vec2{{X: 0, Y: -4}, {X: 30, Y: -4}}},
		geom.Polyline{Points: []geom.Vec2{{X: 0, Y: 4}, {X: 30, Y: 4}}},
	}
	if err := s.AddBoundaries(corridor); err != nil {
		log.Fatal(err)
	}

	starts := make([]geom.Vec2, 0, 20)
	for i := 0; i < 20; i++ {
		starts = append(starts, geom.Vec2{X: 0, Y: float64(i%7) - 3})
	}
	if _, err := s.CreateCrowd(starts, []geom.Vec2{{X: 28, Y: 0}}, []float64{3.0}, true); err != nil {
		log.Fatal(err)
	}

	if err := s.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	server := telemetry.NewServer(*addr, s)
	log.Printf("telemetry server listening on %s (ws at /ws)\n", *addr)
	log.Fatal(server.Serve())
}
