package systems

import (
	"cmp"
	"math"
	"slices"
)

// NoUpperLimit disables the exclusive upper amount bound of a sensory query.
var NoUpperLimit = math.Inf(1)

// View is an observer's sensory cone: a circle sector centred on Heading.
type View struct {
	X, Y      float64
	Heading   float64
	Radius    float64
	HalfAngle float64
}

// WithinSensoryField reports whether (x, y) lies inside v's cone.
// A point at the observer's own position is always inside.
func WithinSensoryField(v View, x, y float64) bool {
	dx, dy := x-v.X, y-v.Y
	distSq := dx*dx + dy*dy
	if distSq == 0 {
		return true
	}
	if distSq > v.Radius*v.Radius {
		return false
	}
	return AngularDistance(v.Heading, math.Atan2(dy, dx)) <= v.HalfAngle
}

// Sensed is a resource seen by an observer.
type Sensed struct {
	Resource Resource
	Key      Key
	Distance float64
	Bearing  float64 // absolute direction from the observer, in [0, 2π)
}

// ResourcesInSensoryField appends to dst every resource of kind inside v's
// cone whose amount lies strictly between lower and upper, sorted by ascending
// distance. Pass NoUpperLimit for an open upper bound.
func (f *ResourceField) ResourcesInSensoryField(dst []Sensed, v View, kind Kind, lower, upper float64) []Sensed {
	base := len(dst)

	c0 := max(int((v.X-v.Radius)/f.cellSize), 0)
	c1 := min(int((v.X+v.Radius)/f.cellSize), f.cols-1)
	r0 := max(int((v.Y-v.Radius)/f.cellSize), 0)
	r1 := min(int((v.Y+v.Radius)/f.cellSize), f.rows-1)

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			c := &f.cells[row*f.cols+col]
			c.mu.RLock()
			for key, e := range c.entries {
				if key.Kind != kind {
					continue
				}
				e.mu.Lock()
				r, dead := e.res, e.dead
				e.mu.Unlock()
				if dead || r.Amount <= lower || r.Amount >= upper {
					continue
				}
				if !WithinSensoryField(v, r.X, r.Y) {
					continue
				}
				dst = append(dst, Sensed{
					Resource: r,
					Key:      key,
					Distance: Distance(v.X, v.Y, r.X, r.Y),
					Bearing:  AngleBetween(v.X, v.Y, r.X, r.Y),
				})
			}
			c.mu.RUnlock()
		}
	}

	slices.SortFunc(dst[base:], func(a, b Sensed) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return dst
}
