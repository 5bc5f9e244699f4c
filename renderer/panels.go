package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/game"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/ui"
)

func (r *Renderer) drawPanels(s *game.Snapshot) {
	data := ui.HUDData{
		Title:   "Ants",
		Tick:    s.Tick,
		SimTime: s.SimTime,
		Ants:    len(s.Ants),
		FPS:     rl.GetFPS(),
		Paused:  r.ctrl.Paused(),
	}
	for i := range s.Ants {
		if s.Ants[i].Mode == components.ModeReturn {
			data.Returning++
		}
	}
	for i := range s.Resources {
		if s.Resources[i].Kind == systems.KindFood {
			data.FoodPiles++
		} else {
			data.Trails++
		}
	}
	r.hud.Draw(data)
	r.hud.DrawControls(r.screenW, r.screenH, controlsHelp)

	if r.overlays.IsEnabled(ui.OverlayStats) && s.HasStats {
		r.stats.Draw(s.Stats)
	}
	if r.overlays.IsEnabled(ui.OverlayPerf) && s.HasPerf {
		r.perf.Draw(s.Perf)
	}
}

var colorHaltBanner = rl.Color{R: 120, G: 20, B: 20, A: 220}

func (r *Renderer) drawHaltBanner() {
	const size = 20
	msg := haltBanner(r.halted)
	w := rl.MeasureText(msg, size)
	x := (r.screenW - w) / 2
	y := r.screenH/2 - size
	rl.DrawRectangle(x-12, y-10, w+24, size+20, colorHaltBanner)
	rl.DrawText(msg, x, y, size, rl.RayWhite)
}

func haltBanner(err error) string {
	return "SIMULATION HALTED: " + err.Error() + "  (close the window to exit)"
}
