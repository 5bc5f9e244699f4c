package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/game"
	"github.com/mbauer83/ANTS/ui"
)

var (
	colorForager  = rl.Color{R: 220, G: 220, B: 210, A: 255}
	colorCarrying = rl.Color{R: 120, G: 230, B: 120, A: 255}
	colorCone     = rl.Color{R: 255, G: 255, B: 255, A: 18}

	colorSelected     = rl.Color{R: 255, G: 200, B: 100, A: 255}
	colorSelectedCone = rl.Color{R: 255, G: 200, B: 100, A: 40}
)

const rad2deg = 180 / math.Pi

// drawAnts draws each ant as a small triangle pointing along its heading,
// optionally with its sensory cone underneath.
func (r *Renderer) drawAnts(s *game.Snapshot) {
	showCones := r.overlays.IsEnabled(ui.OverlaySensoryCones)

	for i := range s.Ants {
		a := &s.Ants[i]
		if !r.cam.IsVisible(float32(a.X), float32(a.Y), float32(a.Radius)) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(float32(a.X), float32(a.Y))
		center := rl.Vector2{X: sx, Y: sy}

		if showCones {
			// raylib angles run clockwise from +x in screen space, which
			// matches headings with y pointing down.
			start := float32((a.Heading - a.HalfAngle) * rad2deg)
			end := float32((a.Heading + a.HalfAngle) * rad2deg)
			rl.DrawCircleSector(center, float32(a.Radius)*r.cam.Zoom, start, end, 24, colorCone)
		}

		c := colorForager
		if a.Mode == components.ModeReturn {
			c = colorCarrying
		}
		drawAntBody(center, float32(a.Heading), max(3*r.cam.Zoom, 2), c)
	}
}

// drawSelection marks the inspected ant and always shows its cone.
func (r *Renderer) drawSelection(a *game.AntView) {
	sx, sy := r.cam.WorldToScreen(float32(a.X), float32(a.Y))
	center := rl.Vector2{X: sx, Y: sy}
	start := float32((a.Heading - a.HalfAngle) * rad2deg)
	end := float32((a.Heading + a.HalfAngle) * rad2deg)
	rl.DrawCircleSector(center, float32(a.Radius)*r.cam.Zoom, start, end, 32, colorSelectedCone)
	rl.DrawCircleLines(int32(sx), int32(sy), max(8*r.cam.Zoom, 6), colorSelected)
}

func drawAntBody(center rl.Vector2, heading, size float32, c rl.Color) {
	sin, cos := math.Sincos(float64(heading))
	fx, fy := float32(cos), float32(sin)
	// Nose, then the two rear corners; counter-clockwise on screen.
	nose := rl.Vector2{X: center.X + fx*size*1.6, Y: center.Y + fy*size*1.6}
	left := rl.Vector2{X: center.X - fx*size + fy*size*0.7, Y: center.Y - fy*size - fx*size*0.7}
	right := rl.Vector2{X: center.X - fx*size - fy*size*0.7, Y: center.Y - fy*size + fx*size*0.7}
	rl.DrawTriangle(nose, left, right, c)
}
