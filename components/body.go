package components

import "github.com/mbauer83/ANTS/config"

// Motion holds an ant's movement limits. The current values may be boosted
// for one tick and are reset to the base values at the start of the next.
type Motion struct {
	Speed     float64 // px per second
	BaseSpeed float64
	MaxTurn   float64 // radians per step
	BaseTurn  float64
}

// Sensory describes an ant's sensory cone.
type Sensory struct {
	Radius    float64
	HalfAngle float64 // radians
}

// MotionFromConfig returns the colony's baseline motion.
func MotionFromConfig(cfg *config.Config) Motion {
	return Motion{
		Speed:     cfg.Colony.Speed,
		BaseSpeed: cfg.Colony.Speed,
		MaxTurn:   cfg.Behavior.BaseTurn,
		BaseTurn:  cfg.Behavior.BaseTurn,
	}
}

// SensoryFromConfig returns the colony's sensory cone.
func SensoryFromConfig(cfg *config.Config) Sensory {
	return Sensory{
		Radius:    cfg.Colony.SensoryRadius,
		HalfAngle: cfg.Derived.HalfAngle,
	}
}
