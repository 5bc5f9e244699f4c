// Package components defines ECS components for the simulation.
package components

import "math/rand"

// Mode is the ant's foraging state.
type Mode uint8

const (
	ModeForage Mode = iota // searching for food
	ModeReturn             // carrying food home
)

// String returns the display name for a Mode.
func (m Mode) String() string {
	switch m {
	case ModeForage:
		return "forage"
	case ModeReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Forager holds an ant's foraging state. Only the owning ant's behavior writes it.
type Forager struct {
	ID       uint32
	Mode     Mode
	Carried  float64
	Capacity float64

	// Desired heading the ant is turning toward.
	Desired float64

	// Step counters
	StepsSinceTurn    int
	TurnPeriod        int // steps between random-walk perturbations
	StepsSinceDeposit int
	StepsWithoutEvent int
	IgnoreSteps       int // pheromones ignored while > 0

	// Last food pickup position
	LastFoodX, LastFoodY float64
	HasLastFood          bool

	// Exclusive upper bound on followed pheromone intensity
	Ceiling    float64
	HasCeiling bool

	// Set while a resource request is unresolved; the ant skips its turn.
	Pending bool

	Rng *rand.Rand
}

// NewForager returns a forager at rest in forage mode.
// The random-walk period is drawn from [minPeriod, maxPeriod).
func NewForager(id uint32, capacity, heading float64, minPeriod, maxPeriod int, rng *rand.Rand) Forager {
	period := minPeriod
	if maxPeriod > minPeriod {
		period += rng.Intn(maxPeriod - minPeriod)
	}
	if period < 1 {
		period = 1
	}
	return Forager{
		ID:                id,
		Mode:              ModeForage,
		Capacity:          capacity,
		Desired:           heading,
		StepsSinceTurn:    1,
		TurnPeriod:        period,
		StepsSinceDeposit: 1,
		Rng:               rng,
	}
}
