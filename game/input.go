package game

import (
	"fmt"

	"github.com/mbauer83/ANTS/systems"
)

// AddFood drops food at (x, y), aggregating into any food already on that key.
// It is safe to call from any goroutine, including while a tick is running.
func (g *Game) AddFood(x, y, amount, decayRate float64) error {
	if !g.arena.WithinBounds(x, y) {
		return fmt.Errorf("adding food at (%.1f, %.1f): %w", x, y, ErrOutOfBounds)
	}
	if err := g.arena.Deposit(systems.KindFood, x, y, amount, decayRate); err != nil {
		return err
	}
	g.addedMu.Lock()
	g.foodAdded += amount
	g.addedMu.Unlock()
	return nil
}

// PaintFood drops one brush dab of food with the configured paint parameters.
func (g *Game) PaintFood(x, y float64) error {
	return g.AddFood(x, y, g.cfg.Food.PaintAmount, g.cfg.Food.PaintDecay)
}

// takeFoodAdded returns and resets the food added since the last call.
func (g *Game) takeFoodAdded() float64 {
	g.addedMu.Lock()
	defer g.addedMu.Unlock()
	added := g.foodAdded
	g.foodAdded = 0
	return added
}
