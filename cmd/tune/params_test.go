package main

import (
	"math"
	"testing"

	"github.com/mbauer83/ANTS/config"
)

func TestNormalizeRoundtrip(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector(cfg)

	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: roundtrip %f -> %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsComeFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector(cfg)
	want := []float64{cfg.Pheromone.Amount, cfg.Pheromone.DecayRate, float64(cfg.Behavior.TurnPeriodBase)}
	for i, v := range pv.DefaultVector() {
		if v != want[i] {
			t.Errorf("%s default = %f, want %f", pv.Specs[i].Name, v, want[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector(cfg)

	if err := pv.ApplyToConfig(cfg, []float64{5, -1, 80.6}); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
	if cfg.Pheromone.Amount != 1.0 {
		t.Errorf("amount = %f, want clamped 1.0", cfg.Pheromone.Amount)
	}
	if cfg.Pheromone.DecayRate != 0.01 {
		t.Errorf("decay = %f, want clamped 0.01", cfg.Pheromone.DecayRate)
	}
	if cfg.Behavior.TurnPeriodBase != 81 {
		t.Errorf("turn period = %d, want 81", cfg.Behavior.TurnPeriodBase)
	}
}
