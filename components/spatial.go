package components

// Position represents an ant's position in arena pixels.
type Position struct {
	X, Y float64
}

// Heading is an ant's orientation in radians, kept in [0, 2π).
type Heading struct {
	Angle float64
}
