package renderer

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/systems"
)

const flashLife = 0.6 // seconds

var colorFlash = rl.Color{R: 255, G: 240, B: 150, A: 255}

// flash marks where a food pile ran out.
type flash struct {
	X, Y float32
	Life float32 // remaining seconds
}

func newFlash(d systems.Depletion) flash {
	return flash{X: float32(d.Last.X), Y: float32(d.Last.Y), Life: flashLife}
}

func (r *Renderer) ageFlashes(dt float32) {
	for i := range r.flashes {
		r.flashes[i].Life -= dt
	}
	r.flashes = slices.DeleteFunc(r.flashes, func(f flash) bool { return f.Life <= 0 })
}

func (r *Renderer) drawFlashes() {
	for _, f := range r.flashes {
		if !r.cam.IsVisible(f.X, f.Y, 10) {
			continue
		}
		t := f.Life / flashLife
		sx, sy := r.cam.WorldToScreen(f.X, f.Y)
		radius := (2 + 8*(1-t)) * r.cam.Zoom
		rl.DrawCircleLines(int32(sx), int32(sy), radius, rl.Fade(colorFlash, t))
	}
}
