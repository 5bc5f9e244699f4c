// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned by Validate when a configuration value is unusable.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Arena     ArenaConfig     `yaml:"arena"`
	Colony    ColonyConfig    `yaml:"colony"`
	Behavior  BehaviorConfig  `yaml:"behavior"`
	Food      FoodConfig      `yaml:"food"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Resource  ResourceConfig  `yaml:"resource"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the simulated area. Zero dimensions fall back to the screen size.
type ArenaConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	HomeX      float64 `yaml:"home_x"` // fraction of width
	HomeY      float64 `yaml:"home_y"` // fraction of height
	WallBuffer float64 `yaml:"wall_buffer"`
}

// ColonyConfig holds per-ant parameters shared by the whole colony.
type ColonyConfig struct {
	Ants             int     `yaml:"ants"`
	Speed            float64 `yaml:"speed"`             // px per second
	SensoryRadius    float64 `yaml:"sensory_radius"`    // px
	SensoryAngleDeg  float64 `yaml:"sensory_angle_deg"` // full cone angle
	CarryingCapacity float64 `yaml:"carrying_capacity"`
	PickupRadius     float64 `yaml:"pickup_radius"`
	DepositRadius    float64 `yaml:"deposit_radius"`
}

// BehaviorConfig holds the foraging state machine tuning.
type BehaviorConfig struct {
	FoodThreshold      float64 `yaml:"food_threshold"`
	PheromoneThreshold float64 `yaml:"pheromone_threshold"`
	DepositEvery       int     `yaml:"deposit_every"`  // moves between pheromone deposits
	ResetAfter         int     `yaml:"reset_after"`    // steps without a sensory event
	IgnoreSteps        int     `yaml:"ignore_steps"`   // pheromone blindness after a reset
	BaseTurn           float64 `yaml:"base_turn"`      // max radians per step
	TurnPeriodBase     int     `yaml:"turn_period_base"`
	TurnPeriodMin      float64 `yaml:"turn_period_min"` // fraction of base
	TurnPeriodMax      float64 `yaml:"turn_period_max"` // fraction of base
	RandomTurnDeg      float64 `yaml:"random_turn_deg"`
	ApproachSpeed      float64 `yaml:"approach_speed"` // speed factor while homing in
	ApproachTurn       float64 `yaml:"approach_turn"`  // turn factor while homing in
	SectorDeg          float64 `yaml:"sector_deg"`
	WallRetries        int     `yaml:"wall_retries"`
}

// FoodConfig holds the initial food cluster and painted food parameters.
type FoodConfig struct {
	ClusterX    float64 `yaml:"cluster_x"` // fraction of width
	ClusterY    float64 `yaml:"cluster_y"` // fraction of height
	Spread      float64 `yaml:"spread"`
	Particles   int     `yaml:"particles"`
	MinAmount   float64 `yaml:"min_amount"`
	MaxAmount   float64 `yaml:"max_amount"`
	DecayRate   float64 `yaml:"decay_rate"`
	PaintAmount float64 `yaml:"paint_amount"`
	PaintDecay  float64 `yaml:"paint_decay"`
}

// PheromoneConfig holds trail parameters.
type PheromoneConfig struct {
	Amount      float64 `yaml:"amount"`
	DecayRate   float64 `yaml:"decay_rate"`
	PoolInitial int     `yaml:"pool_initial"` // 0 = width*height/2
	PoolMax     int     `yaml:"pool_max"`     // 0 = width*height
}

// ResourceConfig holds resource field parameters.
type ResourceConfig struct {
	DepletionEpsilon float64 `yaml:"depletion_epsilon"`
	KeyResolution    float64 `yaml:"key_resolution"` // quantization step in px
	CellSize         float64 `yaml:"cell_size"`      // field shard size in px
	DecayEvery       int     `yaml:"decay_every"`    // ticks between decay sweeps
}

// SimConfig holds tick engine parameters.
type SimConfig struct {
	TickRate int   `yaml:"tick_rate"`
	Workers  int   `yaml:"workers"` // 0 = GOMAXPROCS
	Seed     int64 `yaml:"seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT          float64 // seconds per tick
	ArenaW      float64
	ArenaH      float64
	HomeX       float64
	HomeY       float64
	HalfAngle   float64 // sensory half-angle in radians
	RandomTurn  float64 // radians
	SectorWidth float64 // radians
	PoolInitial int
	PoolMax     int
	WindowTicks int32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration. Used by tools that mutate a loaded config.
func Set(cfg *Config) {
	cfg.computeDerived()
	global = cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize recomputes derived values and validates. Call it after changing
// fields of a loaded config in code.
func (c *Config) Finalize() error {
	c.computeDerived()
	return c.Validate()
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Derived.ArenaW < 2*c.Arena.WallBuffer+1 || c.Derived.ArenaH < 2*c.Arena.WallBuffer+1:
		return fmt.Errorf("%w: arena %.0fx%.0f too small for wall buffer %.1f",
			ErrInvalid, c.Derived.ArenaW, c.Derived.ArenaH, c.Arena.WallBuffer)
	case c.Colony.Ants < 0:
		return fmt.Errorf("%w: negative ant count %d", ErrInvalid, c.Colony.Ants)
	case c.Colony.CarryingCapacity <= 0:
		return fmt.Errorf("%w: carrying capacity must be positive", ErrInvalid)
	case c.Sim.TickRate <= 0:
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalid)
	case c.Resource.KeyResolution <= 0 || c.Resource.CellSize <= 0:
		return fmt.Errorf("%w: key resolution and cell size must be positive", ErrInvalid)
	case c.Resource.DecayEvery <= 0:
		return fmt.Errorf("%w: decay_every must be positive", ErrInvalid)
	case c.Derived.PoolMax < c.Derived.PoolInitial:
		return fmt.Errorf("%w: pheromone pool max %d below initial %d",
			ErrInvalid, c.Derived.PoolMax, c.Derived.PoolInitial)
	case c.Behavior.DepositEvery <= 0 || c.Behavior.TurnPeriodBase <= 0:
		return fmt.Errorf("%w: deposit_every and turn_period_base must be positive", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	w, h := c.Arena.Width, c.Arena.Height
	if w == 0 {
		w = c.Screen.Width
	}
	if h == 0 {
		h = c.Screen.Height
	}
	c.Derived.ArenaW = float64(w)
	c.Derived.ArenaH = float64(h)
	c.Derived.HomeX = c.Derived.ArenaW * c.Arena.HomeX
	c.Derived.HomeY = c.Derived.ArenaH * c.Arena.HomeY

	if c.Sim.TickRate > 0 {
		c.Derived.DT = 1.0 / float64(c.Sim.TickRate)
	}
	c.Derived.HalfAngle = c.Colony.SensoryAngleDeg / 2 * math.Pi / 180
	c.Derived.RandomTurn = c.Behavior.RandomTurnDeg * math.Pi / 180
	c.Derived.SectorWidth = c.Behavior.SectorDeg * math.Pi / 180

	c.Derived.PoolInitial = c.Pheromone.PoolInitial
	if c.Derived.PoolInitial == 0 {
		c.Derived.PoolInitial = w * h / 2
	}
	c.Derived.PoolMax = c.Pheromone.PoolMax
	if c.Derived.PoolMax == 0 {
		c.Derived.PoolMax = w * h
	}

	c.Derived.WindowTicks = int32(c.Telemetry.StatsWindow * float64(c.Sim.TickRate))
	if c.Derived.WindowTicks < 1 {
		c.Derived.WindowTicks = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
