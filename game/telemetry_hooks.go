package game

import (
	"log/slog"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/telemetry"
)

// recordDepletions feeds this tick's depletion events to the collector.
func (g *Game) recordDepletions() {
	for _, d := range g.depletions {
		g.collector.RecordDepletion(d.Key.Kind == systems.KindFood)
	}
}

// flushTelemetry closes the stats window when it is due and writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	if added := g.takeFoodAdded(); added > 0 {
		g.collector.RecordFoodAdded(added)
	}

	stats := g.collector.Flush(g.tick, g.sampleColony())
	perfStats := g.perfCollector.Stats()
	g.lastStats = &stats
	g.lastPerf = &perfStats

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sampleColony collects the colony and field state at the end of a window.
// Visible counts use the agent grid built at the start of the tick.
func (g *Game) sampleColony() telemetry.ColonySample {
	s := telemetry.ColonySample{
		Carried:        make([]float64, 0, g.ants),
		Visible:        make([]float64, 0, g.ants),
		FoodPiles:      g.arena.Count(systems.KindFood),
		FoodTotal:      g.arena.Total(systems.KindFood),
		OutboundTrails: g.arena.Count(systems.KindPheromoneOutbound),
		ReturnTrails:   g.arena.Count(systems.KindPheromoneReturn),
	}

	var neighbors []systems.Neighbor
	for i := range g.parallel.work {
		a := &g.parallel.work[i].Ant
		if a.Forager.Mode == components.ModeReturn {
			s.Returning++
		} else {
			s.Foraging++
		}
		s.Carried = append(s.Carried, a.Forager.Carried)
		neighbors = g.grid.AgentsInSensoryField(neighbors[:0], a.View(), i)
		s.Visible = append(s.Visible, float64(len(neighbors)))
	}
	return s
}
