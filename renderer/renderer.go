// Package renderer draws game snapshots with raylib.
package renderer

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/camera"
	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/game"
	"github.com/mbauer83/ANTS/inspector"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/ui"
)

// Controller is the part of the game the window drives.
type Controller interface {
	AddFood(x, y, amount, decayRate float64) error
	TogglePause()
	Paused() bool
}

var _ Controller = (*game.Game)(nil)

const controlsHelp = "[SPACE] Pause  [LMB] Paint food  [RMB] Pan  [WHEEL] Zoom  [MMB] Inspect  [HOME] Reset view  [TAB] Controls  [F/O/R/X/V/S/T] Overlays"

// Renderer receives snapshots on the tick goroutine and draws the most recent
// one on the raylib thread. All methods except Render must be called from the
// thread that owns the window.
type Renderer struct {
	latest atomic.Pointer[game.Snapshot]

	mu       sync.Mutex
	depleted []systems.Depletion // accumulated since the last frame

	ctrl     Controller
	cam      *camera.Camera
	overlays *ui.OverlayRegistry
	hud      *ui.HUD
	stats    *ui.StatsPanel
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	inspect  *inspector.Inspector

	visuals *visualCache
	flashes []flash

	resolution  float64
	paintAmount float64
	paintDecay  float64
	panning     bool
	lastMouse   rl.Vector2

	screenW, screenH int32

	halted error // the error the tick loop stopped with
}

var _ game.Renderer = (*Renderer)(nil)

// New creates a renderer for the window described by cfg.Screen.
// Must be called after rl.InitWindow.
func New(ctrl Controller, cfg *config.Config) *Renderer {
	screenW := int32(cfg.Screen.Width)
	screenH := int32(cfg.Screen.Height)
	return &Renderer{
		ctrl:        ctrl,
		cam:         camera.New(float32(screenW), float32(screenH), float32(cfg.Derived.ArenaW), float32(cfg.Derived.ArenaH)),
		overlays:    ui.NewOverlayRegistry(),
		hud:         ui.NewHUD(),
		stats:       ui.NewStatsPanel("Colony", ui.StatsSections(), screenW-230, 10, 220),
		perf:        ui.NewPerfPanel(10, 100),
		controls:    ui.NewControlsPanel(screenW-230, screenH-340, 220),
		inspect:     inspector.NewInspector(10, screenH-330),
		visuals:     newVisualCache(),
		resolution:  cfg.Resource.KeyResolution,
		paintAmount: cfg.Food.PaintAmount,
		paintDecay:  cfg.Food.PaintDecay,
		screenW:     screenW,
		screenH:     screenH,
	}
}

// Render implements game.Renderer. Depletions are queued so that none are
// lost when the window skips snapshots.
func (r *Renderer) Render(s *game.Snapshot) {
	if len(s.Depleted) > 0 {
		r.mu.Lock()
		r.depleted = append(r.depleted, s.Depleted...)
		r.mu.Unlock()
	}
	r.latest.Store(s)
}

func (r *Renderer) takeDepleted() []systems.Depletion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.depleted
	r.depleted = nil
	return out
}

// Halt freezes the view on the last snapshot and shows err until the
// window closes. Painting and pausing are disabled.
func (r *Renderer) Halt(err error) { r.halted = err }

// Halted returns the error passed to Halt, or nil.
func (r *Renderer) Halted() error { return r.halted }

// Frame handles input and draws one frame.
func (r *Renderer) Frame() {
	r.handleResize()
	dt := rl.GetFrameTime()
	s := r.latest.Load()

	for _, d := range r.takeDepleted() {
		r.visuals.evict(d.Key)
		if d.Key.Kind == systems.KindFood {
			r.flashes = append(r.flashes, newFlash(d))
		}
	}
	r.ageFlashes(dt)
	r.handleInput(s)

	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	if s != nil {
		r.drawArena(s)
		r.drawField(s, dt)
		if r.overlays.IsEnabled(ui.OverlayDepletionFlashes) {
			r.drawFlashes()
		}
		r.drawAnts(s)
		r.drawPanels(s)
		if ant, ok := r.inspect.Selected(s.Ants); ok {
			r.drawSelection(ant)
			r.inspect.Draw(ant)
		}
	} else {
		rl.DrawText("waiting for the first tick", 10, 10, 20, rl.LightGray)
	}
	if r.halted != nil {
		r.drawHaltBanner()
	}

	res := r.controls.Draw(r.overlays, r.ctrl.Paused(), r.paintAmount)
	r.paintAmount = res.PaintAmount
	if res.TogglePause && r.halted == nil {
		r.ctrl.TogglePause()
	}

	rl.EndDrawing()
}

func (r *Renderer) handleResize() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == r.screenW && h == r.screenH {
		return
	}
	r.screenW, r.screenH = w, h
	r.cam.Resize(float32(w), float32(h))
	r.stats.SetPosition(w-230, 10)
	r.controls.SetPosition(w-230, h-340)
	r.inspect.SetPosition(10, h-330)
}

func (r *Renderer) handleInput(s *game.Snapshot) {
	if rl.IsKeyPressed(rl.KeySpace) && r.halted == nil {
		r.ctrl.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		r.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		r.cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		r.inspect.Deselect()
	}
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		r.overlays.HandleKeyPress(key)
	}

	mouse := rl.GetMousePosition()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		r.cam.ZoomAt(factor, mouse.X, mouse.Y)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		r.panning = true
		r.lastMouse = mouse
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonRight) {
		r.panning = false
	}
	if r.panning {
		r.cam.Pan(r.lastMouse.X-mouse.X, r.lastMouse.Y-mouse.Y)
		r.lastMouse = mouse
	}

	if s != nil && rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		wx, wy := r.cam.ScreenToWorld(mouse.X, mouse.Y)
		r.inspect.Select(s.Ants, float64(wx), float64(wy), float64(8/r.cam.Zoom))
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && r.inspect.HitClose(mouse.X, mouse.Y) {
		r.inspect.Deselect()
		return
	}
	if r.halted != nil {
		return
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !r.controls.Contains(mouse.X, mouse.Y) {
		r.paint(mouse)
	}
}

// paint drops food under the cursor. Points outside the buffer zone are ignored.
func (r *Renderer) paint(mouse rl.Vector2) {
	wx, wy := r.cam.ScreenToWorld(mouse.X, mouse.Y)
	err := r.ctrl.AddFood(float64(wx), float64(wy), r.paintAmount, r.paintDecay)
	if err != nil && !errors.Is(err, game.ErrOutOfBounds) {
		slog.Warn("painting food failed", "x", wx, "y", wy, "error", err)
	}
}
