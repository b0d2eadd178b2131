// Package visapp implements a minimal Gio-based debug viewer for a
// running crowd-sfm Simulator: pedestrians as filled circles, boundary
// segments as lines, Space to pause/resume and Up/Down to change the
// fast-forward factor. A struct wrapping simulation state plus a theme,
// an event loop keyed off app.Window.Event(), and hand-rolled clip.Path
// shapes instead of a widget toolkit.
package visapp

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/crowd-sfm/internal/core"
	"github.com/elektrokombinacija/crowd-sfm/internal/geom"
	"github.com/elektrokombinacija/crowd-sfm/internal/sim"
)

// pixelsPerMeter sets the fixed world-to-screen scale; a debug viewer
// has no need for a pan/zoom camera.
const pixelsPerMeter = 40

// App is the viewer application.
type App struct {
	sim     *sim.Simulator
	theme   *material.Theme
	factor  float64
	originX float32
	originY float32
}

// NewApp wraps an already-populated, already-started Simulator.
func NewApp(s *sim.Simulator) *App {
	return &App{sim: s, theme: material.NewTheme(), factor: 1}
}

// Run drives the Gio event loop until the window closes.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKey(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)
			w.Invalidate()
		}
	}
}

func (a *App) handleKey(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		if a.factor == 0 {
			a.factor = 1
			_ = a.sim.Resume()
		} else {
			a.factor = 0
			_ = a.sim.Pause()
		}
	case key.NameUpArrow:
		if a.factor < 5 {
			a.factor++
		}
		_ = a.sim.SetFastForwardFactor(a.factor)
	case key.NameDownArrow:
		if a.factor > 0 {
			a.factor--
		}
		_ = a.sim.SetFastForwardFactor(a.factor)
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	a.originX = float32(size.X) / 2
	a.originY = float32(size.Y) / 2

	paint.Fill(gtx.Ops, color.NRGBA{R: 0x18, G: 0x18, B: 0x1c, A: 0xff})

	for _, b := range a.sim.Boundaries() {
		a.drawBoundary(gtx, b)
	}
	for _, c := range a.sim.Crowds() {
		for _, p := range c.Pedestrians {
			a.drawPedestrian(gtx, p)
		}
	}

	a.drawHUD(gtx)
	return layout.Dimensions{Size: size}
}

func (a *App) toScreen(p geom.Vec2) f32.Point {
	return f32.Pt(a.originX+float32(p.X)*pixelsPerMeter, a.originY-float32(p.Y)*pixelsPerMeter)
}

func (a *App) drawPedestrian(gtx layout.Context, p *core.Pedestrian) {
	center := a.toScreen(p.Position)
	r := float32(p.Radius) * pixelsPerMeter
	if r < 2 {
		r = 2
	}

	col := color.NRGBA{R: 0xe0, G: 0xa5, B: 0x30, A: 0xff}
	switch p.Status {
	case core.StatusStuck:
		col = color.NRGBA{R: 0xd0, G: 0x30, B: 0x30, A: 0xff}
	case core.StatusReorienting:
		col = color.NRGBA{R: 0xd0, G: 0xa0, B: 0xe0, A: 0xff}
	case core.StatusArrived:
		col = color.NRGBA{R: 0x40, G: 0xc0, B: 0x60, A: 0xff}
	}

	rect := image.Rect(int(center.X-r), int(center.Y-r), int(center.X+r), int(center.Y+r))
	ellipse := clip.Ellipse(rect).Op(gtx.Ops)
	paint.FillShape(gtx.Ops, col, ellipse)
}

func (a *App) drawBoundary(gtx layout.Context, b *core.Boundary) {
	col := color.NRGBA{R: 0x88, G: 0x88, B: 0x90, A: 0xff}
	for _, seg := range b.Segments {
		line, ok := seg.Geometry.(geom.Polyline)
		if !ok || len(line.Points) < 2 {
			continue
		}
		a.drawLine(gtx, line.Points[0], line.Points[1], col)
	}
}

func (a *App) drawLine(gtx layout.Context, from, to geom.Vec2, col color.NRGBA) {
	a1 := a.toScreen(from)
	a2 := a.toScreen(to)

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(a1)
	path.LineTo(a2)
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: 2}.Op())
}

func (a *App) drawHUD(gtx layout.Context) {
	text := fmt.Sprintf("t=%dms  factor=%.0f  avg_interval=%v", a.sim.SimulatedTime(), a.factor, a.sim.AverageSimulationUpdateInterval())
	label := material.Label(a.theme, unit.Sp(14), text)
	label.Color = color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	layout.Inset{Left: 8, Top: 8}.Layout(gtx, label.Layout)
}
