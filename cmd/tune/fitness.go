package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mbauer83/ANTS/config"
	"github.com/mbauer83/ANTS/game"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu         sync.Mutex
	lastResult evalResult // from the most recent Evaluate call
}

// evalResult summarizes one parameter vector across all seeds.
type evalResult struct {
	DeliveredPerMin float64 // mean over seeds
	FailedRuns      int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastResult returns the summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastResult() evalResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Fitness is the negative mean food delivered per simulated minute.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "params", x, "error", err)
		fe.mu.Lock()
		fe.lastResult = evalResult{FailedRuns: len(fe.seeds)}
		fe.mu.Unlock()
		return 0
	}

	// Run all seeds in parallel
	rates := make([]float64, len(fe.seeds))
	failed := make([]bool, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			rate, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Warn("run failed", "seed", s, "error", err)
				failed[idx] = true
				return
			}
			rates[idx] = rate
		}(i, seed)
	}
	wg.Wait()

	var res evalResult
	for i, r := range rates {
		res.DeliveredPerMin += r
		if failed[i] {
			res.FailedRuns++
		}
	}
	res.DeliveredPerMin /= float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastResult = res
	fe.mu.Unlock()

	return -res.DeliveredPerMin
}

// runSimulation runs one unpaced headless game to maxTicks and returns food
// delivered per simulated minute. A run halted by an error scores nothing.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (float64, error) {
	g, err := game.NewGameWithOptions(game.Options{
		Seed:     seed,
		Config:   cfg,
		Headless: true,
		Unpaced:  true,
		MaxTicks: fe.maxTicks,
	})
	if err != nil {
		return 0, err
	}
	defer g.Close()

	if err := g.Run(context.Background()); err != nil {
		return 0, err
	}
	minutes := float64(g.Tick()) * cfg.Derived.DT / 60
	if minutes <= 0 {
		return 0, nil
	}
	return g.TotalDelivered() / minutes, nil
}

// copyConfig returns a private copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
