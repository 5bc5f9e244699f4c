package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/game"
	"github.com/mbauer83/ANTS/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		Seed:           *seed,
		Config:         cfg,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		Unpaced:        *headless,
		MaxTicks:       int32(*maxTicks),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *headless {
		err = runHeadless(ctx, opts)
	} else {
		err = runWindowed(ctx, cfg, opts)
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// runHeadless runs the simulation as fast as it goes, without raylib.
func runHeadless(ctx context.Context, opts game.Options) error {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return err
	}
	defer closeGame(g)

	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"max_ticks", opts.MaxTicks,
	)
	if err := g.Run(ctx); err != nil {
		return err
	}
	slog.Info("simulation stopped", "tick", g.Tick(), "delivered", g.TotalDelivered())
	return nil
}

// runWindowed drives the window on the main thread while the tick loop runs
// on its own goroutine. If the simulation halts with an error the window
// stays open on the last frame until the user closes it.
func runWindowed(ctx context.Context, cfg *config.Config, opts game.Options) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ants")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return err
	}
	defer closeGame(g)

	r := renderer.New(g, cfg)
	g.SetRenderer(r)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	for !rl.WindowShouldClose() {
		r.Frame()
		if r.Halted() != nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		select {
		case err := <-done:
			if err == nil {
				return nil
			}
			r.Halt(err)
		case <-ctx.Done():
			return <-done
		default:
		}
	}
	if err := r.Halted(); err != nil {
		return err
	}
	cancel()
	return <-done
}

func closeGame(g *game.Game) {
	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
