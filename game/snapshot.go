package game

import (
	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/telemetry"
)

// AntView is the render-facing state of one ant. Tags drive the inspector panel.
type AntView struct {
	ID        uint32          `inspect:"label"`
	X         float64         `inspect:"label,fmt:%.1f"`
	Y         float64         `inspect:"label,fmt:%.1f"`
	Heading   float64         `inspect:"angle"`
	Radius    float64         `inspect:"skip"` // sensory radius
	HalfAngle float64         `inspect:"skip"` // sensory half-angle in radians
	Mode      components.Mode `inspect:"label"`
	Carried   float64         `inspect:"label,fmt:%.3f"`
	Load      float64         `inspect:"bar"`            // carried / capacity
	Idle      int             `inspect:"label"`          // steps since the last sensory event
	Blind     bool            `inspect:"bool"`           // ignoring pheromones after a reset
	Following float64         `inspect:"label,fmt:%.3f"` // pheromone ceiling, 0 = none
}

// Snapshot is the world state after one tick. It is built fresh each tick and
// never mutated after publishing, so a consumer may keep it as long as it likes.
type Snapshot struct {
	Tick          int32
	SimTime       float64 // seconds
	Width, Height float64
	HomeX, HomeY  float64
	DepositRadius float64

	Resources []systems.Resource
	Ants      []AntView
	Depleted  []systems.Depletion // keys removed during this tick

	Stats    telemetry.WindowStats // most recent closed window
	HasStats bool
	Perf     telemetry.PerfStats
	HasPerf  bool
}

// Renderer consumes snapshots. Render is called from the tick goroutine once
// per tick and must not block for long.
type Renderer interface {
	Render(s *Snapshot)
}

// buildSnapshot captures the current world for the renderer.
func (g *Game) buildSnapshot() *Snapshot {
	w, h := g.arena.Size()
	homeX, homeY := g.arena.Home()
	s := &Snapshot{
		Tick:          g.tick,
		SimTime:       float64(g.tick) * g.cfg.Derived.DT,
		Width:         w,
		Height:        h,
		HomeX:         homeX,
		HomeY:         homeY,
		DepositRadius: g.cfg.Colony.DepositRadius,
		Resources:     g.arena.Snapshot(make([]systems.Resource, 0, g.arena.Len())),
		Ants:          make([]AntView, 0, g.ants),
		Depleted:      append([]systems.Depletion(nil), g.depletions...),
	}
	if g.lastStats != nil {
		s.Stats, s.HasStats = *g.lastStats, true
	}
	if g.lastPerf != nil {
		s.Perf, s.HasPerf = *g.lastPerf, true
	}

	query := g.antFilter.Query()
	for query.Next() {
		pos, head, _, sensory, forager := query.Get()
		view := AntView{
			ID:        forager.ID,
			X:         pos.X,
			Y:         pos.Y,
			Heading:   head.Angle,
			Radius:    sensory.Radius,
			HalfAngle: sensory.HalfAngle,
			Mode:      forager.Mode,
			Carried:   forager.Carried,
			Idle:      forager.StepsWithoutEvent,
			Blind:     forager.IgnoreSteps > 0,
		}
		if forager.Capacity > 0 {
			view.Load = forager.Carried / forager.Capacity
		}
		if forager.HasCeiling {
			view.Following = forager.Ceiling
		}
		s.Ants = append(s.Ants, view)
	}
	return s
}

// publishSnapshot hands the current world to the renderer, if any.
func (g *Game) publishSnapshot() {
	if g.renderer == nil || g.headless {
		return
	}
	g.renderer.Render(g.buildSnapshot())
	g.perfCollector.RecordFrame()
}
