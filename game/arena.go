package game

import (
	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/systems"
)

// Arena is the rectangular world the colony lives in. It owns the shared
// resource field and the home position, and is what ant behavior sees.
type Arena struct {
	*systems.ResourceField

	width, height float64
	homeX, homeY  float64
	buffer        float64
}

// NewArena creates an empty arena sized from cfg.
func NewArena(cfg *config.Config) *Arena {
	field := systems.NewResourceField(systems.FieldParams{
		Width:            cfg.Derived.ArenaW,
		Height:           cfg.Derived.ArenaH,
		CellSize:         cfg.Resource.CellSize,
		Resolution:       cfg.Resource.KeyResolution,
		Epsilon:          cfg.Resource.DepletionEpsilon,
		PheromonePoolMin: cfg.Derived.PoolInitial,
		PheromonePoolMax: cfg.Derived.PoolMax,
		Workers:          cfg.Sim.Workers,
	})
	return &Arena{
		ResourceField: field,
		width:         cfg.Derived.ArenaW,
		height:        cfg.Derived.ArenaH,
		homeX:         cfg.Derived.HomeX,
		homeY:         cfg.Derived.HomeY,
		buffer:        cfg.Arena.WallBuffer,
	}
}

// Home returns the nest position.
func (a *Arena) Home() (x, y float64) {
	return a.homeX, a.homeY
}

// Size returns the arena dimensions.
func (a *Arena) Size() (w, h float64) {
	return a.width, a.height
}

// WithinBounds reports whether (x, y) keeps at least the wall buffer to every edge.
func (a *Arena) WithinBounds(x, y float64) bool {
	return x >= a.buffer && x <= a.width-a.buffer &&
		y >= a.buffer && y <= a.height-a.buffer
}

var _ systems.Arena = (*Arena)(nil)
