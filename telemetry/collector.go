// Package telemetry aggregates simulation events into windowed statistics
// and writes them out as CSV.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
// It is only touched from the tick goroutine.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for current window
	pickups        int
	foodPicked     float64
	deliveries     int
	foodDelivered  float64
	deposits       int
	depletedFood   int
	depletedTrails int
	foodAdded      float64
	agentFailures  int

	// Running totals
	totalDelivered float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordPickup records food taken from the field.
func (c *Collector) RecordPickup(amount float64) {
	c.pickups++
	c.foodPicked += amount
}

// RecordDelivery records food dropped at home.
func (c *Collector) RecordDelivery(amount float64) {
	c.deliveries++
	c.foodDelivered += amount
	c.totalDelivered += amount
}

// RecordDeposit records a pheromone deposit.
func (c *Collector) RecordDeposit() {
	c.deposits++
}

// RecordDepletion records a resource leaving the field.
func (c *Collector) RecordDepletion(food bool) {
	if food {
		c.depletedFood++
	} else {
		c.depletedTrails++
	}
}

// RecordFoodAdded records food placed by input.
func (c *Collector) RecordFoodAdded(amount float64) {
	c.foodAdded += amount
}

// RecordAgentFailure records an ant whose update was skipped.
func (c *Collector) RecordAgentFailure() {
	c.agentFailures++
}

// TotalDelivered returns all food delivered since the collector was created.
func (c *Collector) TotalDelivered() float64 {
	return c.totalDelivered
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// ColonySample is the state sampled at window end.
type ColonySample struct {
	Foraging, Returning int
	Carried             []float64 // per-ant food carried
	Visible             []float64 // per-ant count of other ants in view
	FoodPiles           int
	FoodTotal           float64
	OutboundTrails      int
	ReturnTrails        int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s ColonySample) WindowStats {
	carriedMean, carriedP10, carriedP50, carriedP90 := ComputeDistribution(s.Carried)
	visibleMean, _, _, _ := ComputeDistribution(s.Visible)

	windowSec := float64(currentTick-c.windowStartTick) * c.dt
	var rate float64
	if windowSec > 0 {
		rate = c.foodDelivered / windowSec * 60
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Foraging:  s.Foraging,
		Returning: s.Returning,

		Pickups:         c.pickups,
		FoodPicked:      c.foodPicked,
		Deliveries:      c.deliveries,
		FoodDelivered:   c.foodDelivered,
		DeliveredPerMin: rate,
		TotalDelivered:  c.totalDelivered,
		Deposits:        c.deposits,
		DepletedFood:    c.depletedFood,
		DepletedTrails:  c.depletedTrails,
		FoodAdded:       c.foodAdded,
		AgentFailures:   c.agentFailures,

		CarriedMean: carriedMean,
		CarriedP10:  carriedP10,
		CarriedP50:  carriedP50,
		CarriedP90:  carriedP90,
		VisibleMean: visibleMean,

		FoodPiles:      s.FoodPiles,
		FoodTotal:      s.FoodTotal,
		OutboundTrails: s.OutboundTrails,
		ReturnTrails:   s.ReturnTrails,
	}

	c.windowStartTick = currentTick
	c.pickups = 0
	c.foodPicked = 0
	c.deliveries = 0
	c.foodDelivered = 0
	c.deposits = 0
	c.depletedFood = 0
	c.depletedTrails = 0
	c.foodAdded = 0
	c.agentFailures = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
