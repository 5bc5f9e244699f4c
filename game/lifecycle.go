package game

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/systems"
)

// spawnColony creates every ant at home with a random heading.
func (g *Game) spawnColony() {
	cfg := g.cfg
	homeX, homeY := g.arena.Home()
	for i := 0; i < cfg.Colony.Ants; i++ {
		heading := g.rng.Float64() * systems.TwoPi
		g.spawnAnt(homeX, homeY, heading)
	}
}

// spawnAnt creates one ant with its own RNG stream derived from the game seed.
func (g *Game) spawnAnt(x, y, heading float64) ecs.Entity {
	cfg := g.cfg
	id := g.nextID
	g.nextID++

	base := float64(cfg.Behavior.TurnPeriodBase)
	rng := rand.New(rand.NewSource(g.rng.Int63()))

	pos := components.Position{X: x, Y: y}
	head := components.Heading{Angle: heading}
	motion := components.MotionFromConfig(cfg)
	sensory := components.SensoryFromConfig(cfg)
	forager := components.NewForager(id, cfg.Colony.CarryingCapacity, heading,
		int(base*cfg.Behavior.TurnPeriodMin), int(base*cfg.Behavior.TurnPeriodMax), rng)

	entity := g.antMapper.NewEntity(&pos, &head, &motion, &sensory, &forager)
	g.ants++
	return entity
}

// scatterFood places the initial food cluster. Particles landing on the same
// key aggregate.
func (g *Game) scatterFood() error {
	fc := g.cfg.Food
	if fc.Particles <= 0 {
		return nil
	}
	w, h := g.arena.Size()
	cx, cy := w*fc.ClusterX, h*fc.ClusterY

	for i := 0; i < fc.Particles; i++ {
		x := cx + (g.rng.Float64()*2-1)*fc.Spread
		y := cy + (g.rng.Float64()*2-1)*fc.Spread
		if !g.arena.WithinBounds(x, y) {
			continue
		}
		amount := fc.MinAmount + g.rng.Float64()*(fc.MaxAmount-fc.MinAmount)
		if err := g.arena.Deposit(systems.KindFood, x, y, amount, fc.DecayRate); err != nil {
			return fmt.Errorf("scattering food: %w", err)
		}
	}
	return nil
}
