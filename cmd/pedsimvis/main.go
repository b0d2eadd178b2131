// Command pedsimvis opens a debug viewer window onto a small running
// crowd scenario.
package main

import (
	"context"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
	"github.com/elektrokombinacija/crowd-sfm/internal/visapp"
)

func main() {
	s := sim.New(sim.DefaultConfig())

	wall := geom.Polyline{Points: []geom.Vec2{{X: 6, Y: -8}, {X: 6, Y: 8}}}
	if err := s.AddBoundaries([]geom.Geometry{wall}); err != nil {
		log.Fatal(err)
	}
	if _, err := s.CreateCrowd(
		[]geom.Vec2{{X: -2, Y: -2}, {X: -2, Y: 0}, {X: -2, Y: 2}},
		[]geom.Vec2{{X: 15, Y: 0}},
		[]float64{2.0},
		false,
	); err != nil {
		log.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("crowd-sfm viewer"),
			app.Size(unit.Dp(1100), unit.Dp(800)),
		)

		application := visapp.NewApp(s)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
