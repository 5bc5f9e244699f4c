// Package systems provides the simulation core: the resource field, sensory
// queries and the ant foraging state machine.
package systems

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DistanceSq returns the squared Euclidean distance between two points.
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return dx*dx + dy*dy
}

// AngleBetween returns the bearing from (x1,y1) to (x2,y2) in [0, 2π).
func AngleBetween(x1, y1, x2, y2 float64) float64 {
	return NormalizeAngle(math.Atan2(y2-y1, x2-x1))
}

// NormalizeAngle wraps a to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod can return exactly TwoPi after the correction for tiny negatives.
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngularDistance returns the unsigned smallest difference between two angles, in [0, π].
func AngularDistance(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	return math.Min(d, TwoPi-d)
}

// TurnToward rotates current toward desired along the shorter arc by at most maxTurn.
// The result is normalized to [0, 2π).
func TurnToward(current, desired, maxTurn float64) float64 {
	current = NormalizeAngle(current)
	desired = NormalizeAngle(desired)

	clockwise := desired - current
	if desired < current {
		clockwise = TwoPi - current + desired
	}
	counter := current - desired
	if desired > current {
		counter = TwoPi - desired + current
	}

	turn := math.Min(clockwise, counter)
	if turn > maxTurn {
		turn = maxTurn
	}
	if clockwise < counter {
		return NormalizeAngle(current + turn)
	}
	return NormalizeAngle(current - turn)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
