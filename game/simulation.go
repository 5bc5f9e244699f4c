package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/telemetry"
)

var (
	// ErrOutOfBounds is returned by AddFood for positions inside the wall buffer.
	ErrOutOfBounds = errors.New("position outside arena")

	// ErrInvariant is wrapped by every CheckInvariants failure.
	ErrInvariant = errors.New("invariant violated")
)

// Step runs one tick: decay, every ant's turn, write-back, snapshot and
// telemetry. A pheromone pool failure is returned after the tick completes.
func (g *Game) Step() error {
	cfg := g.cfg
	dt := cfg.Derived.DT
	g.perfCollector.StartTick()

	// Decay happens before any ant acts
	if every := int32(cfg.Resource.DecayEvery); g.tick%every == 0 {
		g.perfCollector.StartPhase(telemetry.PhaseDecay)
		g.arena.DecaySweep(dt * float64(every))
	}

	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.snapshotAnts()

	g.perfCollector.StartPhase(telemetry.PhaseAgents)
	g.computeAgents(dt)

	g.perfCollector.StartPhase(telemetry.PhaseApply)
	err := g.applyIntents()
	g.depletions = g.arena.DrainDepletions(g.depletions[:0])
	g.recordDepletions()
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseRender)
	g.publishSnapshot()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()

	if err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}
	return nil
}

// Run issues ticks until ctx is cancelled, MaxTicks is reached or a tick
// fails. Ticks are paced to the configured tick rate unless the game is
// unpaced. While paused no tick is issued; a tick already running completes.
// Cancellation is a normal stop and returns nil.
func (g *Game) Run(ctx context.Context) error {
	var period time.Duration
	if !g.unpaced {
		period = time.Duration(g.cfg.Derived.DT * float64(time.Second))
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	next := time.Now()
	for {
		if g.maxTicks > 0 && g.tick >= g.maxTicks {
			slog.Info("max ticks reached", "tick", g.tick)
			return nil
		}

		if g.paused.Load() {
			select {
			case <-ctx.Done():
				return nil
			case <-g.resumeCh:
			}
			next = time.Now()
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := g.Step(); err != nil {
			slog.Error("simulation halted", "tick", g.tick, "error", err)
			return err
		}

		if period <= 0 {
			continue
		}
		next = next.Add(period)
		wait := time.Until(next)
		if wait <= 0 {
			// Behind schedule; don't try to catch up
			next = time.Now()
			continue
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Pause stops tick issuance. Safe to call from any goroutine.
func (g *Game) Pause() {
	g.paused.Store(true)
}

// Resume restarts tick issuance. Safe to call from any goroutine.
func (g *Game) Resume() {
	if g.paused.CompareAndSwap(true, false) {
		select {
		case g.resumeCh <- struct{}{}:
		default:
		}
	}
}

// TogglePause flips between paused and running.
func (g *Game) TogglePause() {
	if g.paused.Load() {
		g.Resume()
	} else {
		g.Pause()
	}
}

// Paused reports whether tick issuance is stopped.
func (g *Game) Paused() bool {
	return g.paused.Load()
}

// CheckInvariants verifies ant and field state between ticks. It must not be
// called while a tick is running.
func (g *Game) CheckInvariants() error {
	var errs []error
	w, h := g.arena.Size()

	query := g.antFilter.Query()
	for query.Next() {
		pos, head, _, _, f := query.Get()
		switch {
		case pos.X < 0 || pos.X > w || pos.Y < 0 || pos.Y > h:
			errs = append(errs, fmt.Errorf("%w: ant %d at (%.2f, %.2f) outside arena", ErrInvariant, f.ID, pos.X, pos.Y))
		case f.Carried < 0 || f.Carried > f.Capacity:
			errs = append(errs, fmt.Errorf("%w: ant %d carries %.3f of %.3f", ErrInvariant, f.ID, f.Carried, f.Capacity))
		case (f.Mode == components.ModeReturn) != (f.Carried > 0):
			errs = append(errs, fmt.Errorf("%w: ant %d in %s mode carrying %.3f", ErrInvariant, f.ID, f.Mode, f.Carried))
		case head.Angle < 0 || head.Angle >= systems.TwoPi:
			errs = append(errs, fmt.Errorf("%w: ant %d heading %.4f not normalized", ErrInvariant, f.ID, head.Angle))
		case f.Pending:
			errs = append(errs, fmt.Errorf("%w: ant %d left a request pending", ErrInvariant, f.ID))
		}
	}

	seen := make(map[systems.Key]struct{}, g.arena.Len())
	counts := make(map[systems.Kind]int, 3)
	for _, r := range g.arena.Snapshot(nil) {
		key := g.arena.Key(r.Kind, r.X, r.Y)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate key %s", ErrInvariant, key))
		}
		seen[key] = struct{}{}
		counts[r.Kind]++
		if r.Amount <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s holds %.4f", ErrInvariant, key, r.Amount))
		}
	}
	for _, kind := range []systems.Kind{systems.KindFood, systems.KindPheromoneOutbound, systems.KindPheromoneReturn} {
		if got, want := counts[kind], g.arena.Count(kind); got != want {
			errs = append(errs, fmt.Errorf("%w: %s count %d, index says %d", ErrInvariant, kind, got, want))
		}
	}
	return errors.Join(errs...)
}
