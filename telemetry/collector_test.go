package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.1) // 10 ticks per window

	if c.ShouldFlush(9) {
		t.Error("flushed before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("did not flush at the window end")
	}

	c.RecordPickup(5)
	c.RecordPickup(2)
	c.RecordDelivery(5)
	c.RecordDeposit()
	c.RecordDepletion(true)
	c.RecordDepletion(false)
	c.RecordDepletion(false)
	c.RecordAgentFailure()

	stats := c.Flush(10, ColonySample{
		Foraging:  3,
		Returning: 1,
		Carried:   []float64{0, 0, 0, 2},
		FoodPiles: 7,
	})

	if stats.Pickups != 2 || stats.FoodPicked != 7 {
		t.Errorf("pickups = %d (%v), want 2 (7)", stats.Pickups, stats.FoodPicked)
	}
	if stats.Deliveries != 1 || stats.FoodDelivered != 5 {
		t.Errorf("deliveries = %d (%v), want 1 (5)", stats.Deliveries, stats.FoodDelivered)
	}
	if math.Abs(stats.DeliveredPerMin-300) > 1e-9 {
		t.Errorf("delivered per min = %v, want 300", stats.DeliveredPerMin)
	}
	if stats.DepletedFood != 1 || stats.DepletedTrails != 2 {
		t.Errorf("depletions = %d food, %d trails", stats.DepletedFood, stats.DepletedTrails)
	}
	if stats.CarriedMean != 0.5 {
		t.Errorf("carried mean = %v, want 0.5", stats.CarriedMean)
	}
	if stats.AgentFailures != 1 || stats.FoodPiles != 7 {
		t.Errorf("stats = %+v", stats)
	}

	next := c.Flush(20, ColonySample{})
	if next.Pickups != 0 || next.Deliveries != 0 || next.Deposits != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.TotalDelivered != 5 || c.TotalDelivered() != 5 {
		t.Errorf("running total = %v, want 5", next.TotalDelivered)
	}
	if next.WindowStartTick != 10 {
		t.Errorf("window start = %d, want 10", next.WindowStartTick)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for tick := int32(600); tick <= 1200; tick += 600 {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: tick, Deliveries: 3}); err != nil {
			t.Fatal(err)
		}
		if err := om.WritePerf(PerfStats{}, tick); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
