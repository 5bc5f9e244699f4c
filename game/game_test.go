package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/telemetry"
)

func init() {
	config.MustInit("")
}

// testConfig returns a small arena with a few ants and no food unless mutate adds some.
func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Arena.Width = 400
	cfg.Arena.Height = 300
	cfg.Colony.Ants = 10
	cfg.Food.Particles = 0
	cfg.Pheromone.PoolInitial = 256
	cfg.Sim.Workers = 2
	cfg.Sim.Seed = 7
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalizing config: %v", err)
	}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Config = cfg
	opts.Unpaced = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// recordingRenderer keeps every snapshot and the latest tick.
type recordingRenderer struct {
	mu        sync.Mutex
	snapshots []*Snapshot
	lastTick  atomic.Int32
	keep      bool
}

func (r *recordingRenderer) Render(s *Snapshot) {
	r.lastTick.Store(s.Tick)
	if !r.keep {
		return
	}
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

func TestNewGameSpawnsColonyAtHome(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Food.Particles = 100
	})
	g := newTestGame(t, cfg, Options{})

	if g.AntCount() != cfg.Colony.Ants {
		t.Fatalf("ants = %d, want %d", g.AntCount(), cfg.Colony.Ants)
	}
	piles := g.Arena().Count(systems.KindFood)
	if piles == 0 || piles > cfg.Food.Particles {
		t.Errorf("food piles = %d, want 1..%d", piles, cfg.Food.Particles)
	}

	homeX, homeY := g.Arena().Home()
	query := g.antFilter.Query()
	for query.Next() {
		pos, _, _, _, f := query.Get()
		if pos.X != homeX || pos.Y != homeY {
			t.Errorf("ant %d spawned at (%.1f, %.1f), want home (%.1f, %.1f)", f.ID, pos.X, pos.Y, homeX, homeY)
		}
		if f.Mode != components.ModeForage || f.Carried != 0 {
			t.Errorf("ant %d starts in %s carrying %.2f", f.ID, f.Mode, f.Carried)
		}
	}
	if err := g.CheckInvariants(); err != nil {
		t.Fatalf("invariants after construction: %v", err)
	}
}

func TestStepKeepsInvariants(t *testing.T) {
	tests := []struct {
		name string
		ants int
	}{
		{"sequential", 10},
		{"parallel", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Colony.Ants = tt.ants
				c.Food.Particles = 200
				c.Food.ClusterX = 0.6
				c.Sim.Workers = 4
				c.Pheromone.PoolInitial = 1024
			})
			g := newTestGame(t, cfg, Options{})

			for i := 0; i < 600; i++ {
				if err := g.Step(); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				if i%50 == 0 {
					if err := g.CheckInvariants(); err != nil {
						t.Fatalf("tick %d: %v", g.Tick(), err)
					}
				}
			}
			if g.Tick() != 600 {
				t.Errorf("tick = %d, want 600", g.Tick())
			}
			if err := g.CheckInvariants(); err != nil {
				t.Fatalf("final invariants: %v", err)
			}
		})
	}
}

func TestPickupThenDeliveryAtHome(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.Ants = 1
	})
	g := newTestGame(t, cfg, Options{})

	homeX, homeY := g.Arena().Home()
	if err := g.AddFood(homeX+1, homeY, 3, 0); err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	query := g.antFilter.Query()
	for query.Next() {
		_, head, _, _, f := query.Get()
		head.Angle = 0
		f.Desired = 0
	}

	if err := g.Step(); err != nil {
		t.Fatalf("pickup step: %v", err)
	}
	query = g.antFilter.Query()
	for query.Next() {
		_, _, _, _, f := query.Get()
		if f.Mode != components.ModeReturn || f.Carried != 3 {
			t.Fatalf("after pickup: mode %s carried %.3f, want return carrying 3", f.Mode, f.Carried)
		}
	}
	if n := g.Arena().Count(systems.KindFood); n != 0 {
		t.Errorf("food piles after taking everything = %d, want 0", n)
	}

	if err := g.Step(); err != nil {
		t.Fatalf("delivery step: %v", err)
	}
	if got := g.TotalDelivered(); got != 3 {
		t.Errorf("delivered = %.3f, want 3", got)
	}
	query = g.antFilter.Query()
	for query.Next() {
		_, _, _, _, f := query.Get()
		if f.Mode != components.ModeForage || f.Carried != 0 {
			t.Errorf("after delivery: mode %s carried %.3f", f.Mode, f.Carried)
		}
	}
}

func TestAddFoodAggregates(t *testing.T) {
	g := newTestGame(t, testConfig(t, nil), Options{})

	if err := g.AddFood(200.2, 100.1, 0.5, 0.01); err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if err := g.AddFood(199.8, 99.9, 0.25, 0.01); err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if n := g.Arena().Count(systems.KindFood); n != 1 {
		t.Fatalf("food piles = %d, want 1", n)
	}
	r, ok := g.Arena().Get(g.Arena().Key(systems.KindFood, 200, 100))
	if !ok {
		t.Fatal("aggregated food not found at (200, 100)")
	}
	if r.Amount != 0.75 {
		t.Errorf("amount = %v, want 0.75", r.Amount)
	}

	if err := g.AddFood(2, 100, 1, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("AddFood inside wall buffer: err = %v, want ErrOutOfBounds", err)
	}
	if err := g.PaintFood(300, 200); err != nil {
		t.Errorf("PaintFood: %v", err)
	}
	if n := g.Arena().Count(systems.KindFood); n != 2 {
		t.Errorf("food piles after painting = %d, want 2", n)
	}
}

func TestSnapshotCarriesDepletions(t *testing.T) {
	rec := &recordingRenderer{keep: true}
	g := newTestGame(t, testConfig(t, nil), Options{Renderer: rec})

	// Decays below epsilon in the first sweep
	if err := g.AddFood(250, 150, 0.09, 5); err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(rec.snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(rec.snapshots))
	}
	s := rec.snapshots[0]
	if s.Tick != 1 {
		t.Errorf("snapshot tick = %d, want 1", s.Tick)
	}
	if len(s.Ants) != g.AntCount() {
		t.Errorf("snapshot ants = %d, want %d", len(s.Ants), g.AntCount())
	}
	want := g.Arena().Key(systems.KindFood, 250, 150)
	found := false
	for _, d := range s.Depleted {
		if d.Key == want {
			found = true
		}
	}
	if !found {
		t.Errorf("depleted keys %v missing %s", s.Depleted, want)
	}
	for _, r := range s.Resources {
		if r.Kind == systems.KindFood {
			t.Errorf("depleted food still in snapshot: %+v", r)
		}
	}
}

func TestHeadlessSkipsSnapshots(t *testing.T) {
	rec := &recordingRenderer{keep: true}
	g := newTestGame(t, testConfig(t, nil), Options{Renderer: rec, Headless: true})
	for i := 0; i < 5; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if len(rec.snapshots) != 0 {
		t.Errorf("headless game published %d snapshots", len(rec.snapshots))
	}
}

func TestStatsWindows(t *testing.T) {
	var windows []telemetry.WindowStats
	cfg := testConfig(t, nil)
	g := newTestGame(t, cfg, Options{
		StatsWindowSec: 0.5,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})

	for i := 0; i < 60; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if len(windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(windows))
	}
	for _, w := range windows {
		if w.Foraging+w.Returning != cfg.Colony.Ants {
			t.Errorf("window %d: %d foraging + %d returning, want %d ants",
				w.WindowEndTick, w.Foraging, w.Returning, cfg.Colony.Ants)
		}
		if w.Deposits == 0 {
			t.Errorf("window %d recorded no pheromone deposits", w.WindowEndTick)
		}
	}
	if last, ok := g.LastStats(); !ok || last.WindowEndTick != 60 {
		t.Errorf("LastStats = %+v, %v", last, ok)
	}
}

func TestAgentPanicIsIsolated(t *testing.T) {
	var failures int
	g := newTestGame(t, testConfig(t, nil), Options{
		StatsWindowSec: 1,
		StatsCallback: func(s telemetry.WindowStats) {
			failures += s.AgentFailures
		},
	})

	// An ant without an RNG panics at its first random turn
	var broken uint32
	query := g.antFilter.Query()
	for query.Next() {
		_, _, _, _, f := query.Get()
		if f.ID == 0 {
			f.Rng = nil
			broken = f.ID
		}
	}

	for i := 0; i < 60; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if failures == 0 {
		t.Fatal("no agent failures recorded")
	}

	homeX, homeY := g.Arena().Home()
	moved := 0
	query = g.antFilter.Query()
	for query.Next() {
		pos, _, _, _, f := query.Get()
		if f.ID != broken && (pos.X != homeX || pos.Y != homeY) {
			moved++
		}
	}
	if moved != g.AntCount()-1 {
		t.Errorf("healthy ants moved = %d, want %d", moved, g.AntCount()-1)
	}
}

func TestRunHaltsOnPoolExhaustion(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.Ants = 3
		c.Pheromone.PoolInitial = 1
		c.Pheromone.PoolMax = 1
	})
	g := newTestGame(t, cfg, Options{MaxTicks: 600})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := g.Run(ctx)
	if !errors.Is(err, systems.ErrPoolExhausted) {
		t.Fatalf("Run err = %v, want ErrPoolExhausted", err)
	}
	if g.Tick() >= 600 {
		t.Errorf("Run reached max ticks despite exhausted pool")
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	g := newTestGame(t, testConfig(t, nil), Options{MaxTicks: 45})
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.Tick() != 45 {
		t.Errorf("tick = %d, want 45", g.Tick())
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPauseResume(t *testing.T) {
	rec := &recordingRenderer{}
	g := newTestGame(t, testConfig(t, nil), Options{Renderer: rec})
	g.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if tick := rec.lastTick.Load(); tick != 0 {
		t.Fatalf("paused game ticked to %d", tick)
	}

	g.Resume()
	waitFor(t, func() bool { return rec.lastTick.Load() > 10 }, "ticks after resume")

	g.TogglePause()
	if !g.Paused() {
		t.Fatal("TogglePause did not pause")
	}
	// At most the in-flight tick completes after pausing
	time.Sleep(20 * time.Millisecond)
	stopped := rec.lastTick.Load()
	time.Sleep(30 * time.Millisecond)
	if tick := rec.lastTick.Load(); tick != stopped {
		t.Errorf("ticks advanced while paused: %d -> %d", stopped, tick)
	}

	g.TogglePause()
	waitFor(t, func() bool { return rec.lastTick.Load() > stopped }, "ticks after second resume")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	g := newTestGame(t, testConfig(t, nil), Options{})
	g.Resume()
	if g.Paused() {
		t.Fatal("Resume paused the game")
	}
	g.Pause()
	g.Pause()
	g.Resume()
	if g.Paused() {
		t.Fatal("Resume after double Pause left the game paused")
	}
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, testConfig(t, nil), Options{OutputDir: dir, StatsWindowSec: 0.25})
	for i := 0; i < 30; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv"} {
		if !fileExists(dir, name) {
			t.Errorf("%s not written", name)
		}
	}
}

func fileExists(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.Size() > 0
}
