package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Colony state at window end
	Foraging  int `csv:"foraging"`
	Returning int `csv:"returning"`

	// Events during window
	Pickups         int     `csv:"pickups"`
	FoodPicked      float64 `csv:"food_picked"`
	Deliveries      int     `csv:"deliveries"`
	FoodDelivered   float64 `csv:"food_delivered"`
	DeliveredPerMin float64 `csv:"delivered_per_min"`
	TotalDelivered  float64 `csv:"total_delivered"`
	Deposits        int     `csv:"deposits"`
	DepletedFood    int     `csv:"depleted_food"`
	DepletedTrails  int     `csv:"depleted_trails"`
	FoodAdded       float64 `csv:"food_added"`
	AgentFailures   int     `csv:"agent_failures"`

	// Load distribution (sampled at window end)
	CarriedMean float64 `csv:"carried_mean"`
	CarriedP10  float64 `csv:"carried_p10"`
	CarriedP50  float64 `csv:"carried_p50"`
	CarriedP90  float64 `csv:"carried_p90"`
	VisibleMean float64 `csv:"visible_mean"` // other ants in view

	// Field state
	FoodPiles      int     `csv:"food_piles"`
	FoodTotal      float64 `csv:"food_total"`
	OutboundTrails int     `csv:"outbound_trails"`
	ReturnTrails   int     `csv:"return_trails"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean and 10th/50th/90th percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("foraging", s.Foraging),
		slog.Int("returning", s.Returning),
		slog.Int("pickups", s.Pickups),
		slog.Float64("food_picked", s.FoodPicked),
		slog.Int("deliveries", s.Deliveries),
		slog.Float64("food_delivered", s.FoodDelivered),
		slog.Float64("delivered_per_min", s.DeliveredPerMin),
		slog.Float64("total_delivered", s.TotalDelivered),
		slog.Int("deposits", s.Deposits),
		slog.Int("depleted_food", s.DepletedFood),
		slog.Int("depleted_trails", s.DepletedTrails),
		slog.Float64("food_added", s.FoodAdded),
		slog.Int("agent_failures", s.AgentFailures),
		slog.Float64("carried_mean", s.CarriedMean),
		slog.Float64("carried_p50", s.CarriedP50),
		slog.Float64("visible_mean", s.VisibleMean),
		slog.Int("food_piles", s.FoodPiles),
		slog.Float64("food_total", s.FoodTotal),
		slog.Int("outbound_trails", s.OutboundTrails),
		slog.Int("return_trails", s.ReturnTrails),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
