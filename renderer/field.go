package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/game"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/ui"
)

var (
	colorBackground = rl.Color{R: 18, G: 16, B: 14, A: 255}
	colorArena      = rl.Color{R: 34, G: 30, B: 26, A: 255}
	colorBorder     = rl.Color{R: 90, G: 80, B: 70, A: 255}
	colorHome       = rl.Color{R: 200, G: 120, B: 60, A: 255}
	colorFood       = rl.Color{R: 90, G: 210, B: 90, A: 255}
	colorOutbound   = rl.Color{R: 80, G: 140, B: 255, A: 255}
	colorReturn     = rl.Color{R: 255, G: 90, B: 160, A: 255}
)

// Display amounts at which a resource is drawn at full intensity.
const (
	foodFullAmount      = 1.0
	pheromoneFullAmount = 1.0
	fadeInRate          = 6.0 // intensity per second for newly seen keys
)

// visual is the cached display state of one resource key.
type visual struct {
	shown float32 // smoothed intensity in [0, 1]
	size  float32 // radius scale, fixed per key
}

// visualCache holds per-key display state. Entries are evicted when the key
// is depleted.
type visualCache struct {
	byKey map[systems.Key]*visual
}

func newVisualCache() *visualCache {
	return &visualCache{byKey: make(map[systems.Key]*visual)}
}

func (c *visualCache) get(key systems.Key) *visual {
	v, ok := c.byKey[key]
	if !ok {
		v = &visual{size: 0.8 + 0.4*keyJitter(key)}
		c.byKey[key] = v
	}
	return v
}

func (c *visualCache) evict(key systems.Key) {
	delete(c.byKey, key)
}

// keyJitter maps a key to a stable value in [0, 1).
func keyJitter(key systems.Key) float32 {
	h := math.Float64bits(key.X)*31 + math.Float64bits(key.Y)*17 + uint64(key.Kind)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return float32(h%1000) / 1000
}

func (r *Renderer) drawArena(s *game.Snapshot) {
	x0, y0 := r.cam.WorldToScreen(0, 0)
	x1, y1 := r.cam.WorldToScreen(float32(s.Width), float32(s.Height))
	rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawRectangleRec(rect, colorArena)
	rl.DrawRectangleLinesEx(rect, 1, colorBorder)

	hx, hy := r.cam.WorldToScreen(float32(s.HomeX), float32(s.HomeY))
	radius := max(float32(s.DepositRadius)*r.cam.Zoom, 3)
	rl.DrawCircleV(rl.Vector2{X: hx, Y: hy}, radius, colorHome)
	rl.DrawCircleLines(int32(hx), int32(hy), radius*2, rl.Fade(colorHome, 0.5))
}

// drawField draws pheromones under food, each according to its overlay.
func (r *Renderer) drawField(s *game.Snapshot, dt float32) {
	showFood := r.overlays.IsEnabled(ui.OverlayFood)
	showOut := r.overlays.IsEnabled(ui.OverlayOutboundTrails)
	showRet := r.overlays.IsEnabled(ui.OverlayReturnTrails)

	for pass := 0; pass < 2; pass++ {
		for i := range s.Resources {
			res := &s.Resources[i]
			isFood := res.Kind == systems.KindFood
			if isFood != (pass == 1) {
				continue
			}
			v := r.visuals.get(res.Key(r.resolution))
			v.shown = min(v.shown+fadeInRate*dt, 1)

			switch {
			case res.Kind == systems.KindFood && !showFood,
				res.Kind == systems.KindPheromoneOutbound && !showOut,
				res.Kind == systems.KindPheromoneReturn && !showRet:
				continue
			}
			if !r.cam.IsVisible(float32(res.X), float32(res.Y), 4) {
				continue
			}
			r.drawResource(res, v)
		}
	}
}

func (r *Renderer) drawResource(res *systems.Resource, v *visual) {
	sx, sy := r.cam.WorldToScreen(float32(res.X), float32(res.Y))
	pos := rl.Vector2{X: sx, Y: sy}

	switch res.Kind {
	case systems.KindFood:
		level := float32(min(res.Amount/foodFullAmount, 1))
		radius := max((1.5+1.5*level)*v.size*r.cam.Zoom, 1)
		rl.DrawCircleV(pos, radius, rl.Fade(colorFood, (0.35+0.65*level)*v.shown))
	case systems.KindPheromoneOutbound, systems.KindPheromoneReturn:
		c := colorOutbound
		if res.Kind == systems.KindPheromoneReturn {
			c = colorReturn
		}
		level := float32(min(res.Amount/pheromoneFullAmount, 1))
		radius := max(1.2*r.cam.Zoom, 1)
		rl.DrawCircleV(pos, radius, rl.Fade(c, (0.15+0.6*level)*v.shown))
	}
}
