// Package game runs the colony: it owns the ECS world, the shared resource
// field and the tick loop that drives every ant.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/systems"
	"github.com/mbauer83/ANTS/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed           int64          // 0 = cfg.Sim.Seed, then time-based
	Config         *config.Config // nil = config.Cfg()
	LogStats       bool           // log window stats via slog
	StatsWindowSec float64        // 0 = cfg.Telemetry.StatsWindow
	OutputDir      string         // CSV output, empty = disabled
	Headless       bool           // skip snapshot publishing
	Unpaced        bool           // run ticks back to back instead of at tick_rate
	MaxTicks       int32          // 0 = unlimited
	Renderer       Renderer       // receives a Snapshot after every tick
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	antMapper *ecs.Map5[
		components.Position,
		components.Heading,
		components.Motion,
		components.Sensory,
		components.Forager,
	]
	antFilter *ecs.Filter5[
		components.Position,
		components.Heading,
		components.Motion,
		components.Sensory,
		components.Forager,
	]

	arena    *Arena
	grid     *systems.SpatialGrid
	params   systems.BehaviorParams
	parallel *parallelState

	// State
	tick   int32
	nextID uint32
	ants   int

	paused   atomic.Bool
	resumeCh chan struct{}

	// Food added through AddFood since the last telemetry flush
	addedMu   sync.Mutex
	foodAdded float64

	depletions []systems.Depletion

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	lastStats     *telemetry.WindowStats
	lastPerf      *telemetry.PerfStats

	renderer Renderer
	headless bool
	unpaced  bool
	maxTicks int32
}

// NewGameWithOptions creates a game with the colony at home and the initial
// food cluster in place.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Sim.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		seed:  seed,
		antMapper: ecs.NewMap5[
			components.Position,
			components.Heading,
			components.Motion,
			components.Sensory,
			components.Forager,
		](world),
		antFilter: ecs.NewFilter5[
			components.Position,
			components.Heading,
			components.Motion,
			components.Sensory,
			components.Forager,
		](world),
		arena:         NewArena(cfg),
		grid:          systems.NewSpatialGrid(cfg.Derived.ArenaW, cfg.Derived.ArenaH, cfg.Colony.SensoryRadius),
		params:        systems.NewBehaviorParams(cfg),
		parallel:      newParallelState(cfg.Sim.Workers),
		resumeCh:      make(chan struct{}, 1),
		collector:     telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		renderer:      opts.Renderer,
		headless:      opts.Headless,
		unpaced:       opts.Unpaced,
		maxTicks:      opts.MaxTicks,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.outputManager = om
	}

	if err := g.scatterFood(); err != nil {
		g.Close()
		return nil, err
	}
	g.spawnColony()

	slog.Info("colony created",
		"seed", seed,
		"ants", g.ants,
		"food_piles", g.arena.Count(systems.KindFood),
		"arena_w", cfg.Derived.ArenaW,
		"arena_h", cfg.Derived.ArenaH,
	)
	return g, nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Arena returns the shared arena.
func (g *Game) Arena() *Arena {
	return g.arena
}

// AntCount returns the number of ants in the colony.
func (g *Game) AntCount() int {
	return g.ants
}

// TotalDelivered returns all food dropped at home so far.
func (g *Game) TotalDelivered() float64 {
	return g.collector.TotalDelivered()
}

// LastStats returns the most recent window stats, if a window has closed.
func (g *Game) LastStats() (telemetry.WindowStats, bool) {
	if g.lastStats == nil {
		return telemetry.WindowStats{}, false
	}
	return *g.lastStats, true
}

// SetRenderer replaces the snapshot consumer. It must be called before Run.
func (g *Game) SetRenderer(r Renderer) {
	g.renderer = r
}

// Close stops the worker pool and flushes output files.
func (g *Game) Close() error {
	g.parallel.stopWorkers()
	if g.outputManager != nil {
		err := g.outputManager.Close()
		g.outputManager = nil
		return err
	}
	return nil
}
