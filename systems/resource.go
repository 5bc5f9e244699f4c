package systems

import (
	"fmt"
	"math"
)

// Kind identifies what a resource is.
type Kind uint8

const (
	KindFood              Kind = iota
	KindPheromoneOutbound      // laid while foraging, followed home
	KindPheromoneReturn        // laid while carrying food, followed to food
	numKinds
)

// String returns the kind's canonical tag used in keys.
func (k Kind) String() string {
	switch k {
	case KindFood:
		return "food"
	case KindPheromoneOutbound:
		return "pheromone"
	case KindPheromoneReturn:
		return "pheromone-r"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsPheromone reports whether k is one of the trail kinds.
func (k Kind) IsPheromone() bool {
	return k == KindPheromoneOutbound || k == KindPheromoneReturn
}

// Key identifies a resource by quantized position and kind.
// Resources of the same kind at the same quantized position aggregate under one key.
type Key struct {
	X, Y float64
	Kind Kind
}

// String returns the canonical "(x.xxxx,y.yyyy)-kind" form.
func (k Key) String() string {
	return fmt.Sprintf("(%.4f,%.4f)-%s", k.X, k.Y, k.Kind)
}

// MakeKey quantizes (x, y) to the given resolution and returns the key for kind.
func MakeKey(kind Kind, x, y, resolution float64) Key {
	return Key{X: quantize(x, resolution), Y: quantize(y, resolution), Kind: kind}
}

func quantize(v, resolution float64) float64 {
	q := math.Round(v/resolution) * resolution
	if q == 0 {
		q = 0 // drop negative zero so keys print consistently
	}
	return q
}

// Resource is a decaying quantity of food or pheromone at a point.
// Resources are values; the field owns the only mutable copy.
type Resource struct {
	Kind      Kind
	X, Y      float64
	Amount    float64
	DecayRate float64 // fraction lost per second
}

// Key returns the resource's key at the given resolution.
func (r Resource) Key(resolution float64) Key {
	return MakeKey(r.Kind, r.X, r.Y, resolution)
}

// WithAmount returns a copy of r holding amount.
func (r Resource) WithAmount(amount float64) Resource {
	r.Amount = amount
	return r
}

// Decayed returns r after dt seconds of exponential decay:
// amount * (1 - decayRate*modifier)^dt.
func (r Resource) Decayed(dt, modifier float64) Resource {
	rate := r.DecayRate * modifier
	switch {
	case rate <= 0 || dt <= 0:
		return r
	case rate >= 1:
		r.Amount = 0
	default:
		r.Amount *= math.Pow(1-rate, dt)
	}
	return r
}

// Split is the result of dividing an amount into a requested part and a remainder.
// A part that would be empty is reported absent rather than zero.
type Split struct {
	Taken, Rest       float64
	HasTaken, HasRest bool
}

// SplitAmount divides total into (requested, total-requested).
// Requesting at least total yields the whole amount and no rest; requesting
// nothing yields no taken part and the whole amount as rest.
func SplitAmount(total, requested float64) Split {
	switch {
	case requested >= total:
		return Split{Taken: total, HasTaken: true}
	case requested <= 0:
		return Split{Rest: total, HasRest: true}
	default:
		return Split{Taken: requested, Rest: total - requested, HasTaken: true, HasRest: true}
	}
}
