package systems

import (
	"cmp"
	"slices"
)

// Neighbor is another agent seen from a query origin.
type Neighbor struct {
	Index    int // index into the slice the grid was built from
	Distance float64
}

// SpatialGrid buckets agent positions into cells for radius queries.
// It is rebuilt once per tick from the tick-start snapshot and is read-only afterwards.
type SpatialGrid struct {
	cellSize   float64
	cols, rows int
	cells      [][]int
	xs, ys     []float64
}

// NewSpatialGrid creates a grid covering width x height.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}
	return &SpatialGrid{cellSize: cellSize, cols: cols, rows: rows, cells: cells}
}

// Clear removes all agents from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.xs = g.xs[:0]
	g.ys = g.ys[:0]
}

// Insert adds the agent with the given index at (x, y).
// Indices must be inserted in ascending order starting at zero.
func (g *SpatialGrid) Insert(index int, x, y float64) {
	g.xs = append(g.xs, x)
	g.ys = append(g.ys, y)
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], index)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// The nearest agents are kept.
const MaxQueryResults = 128

// AgentsInSensoryField appends to dst the agents inside v's cone, excluding
// the agent at index self, sorted by ascending distance. At most
// MaxQueryResults are appended.
func (g *SpatialGrid) AgentsInSensoryField(dst []Neighbor, v View, self int) []Neighbor {
	base := len(dst)
	c0 := max(int((v.X-v.Radius)/g.cellSize), 0)
	c1 := min(int((v.X+v.Radius)/g.cellSize), g.cols-1)
	r0 := max(int((v.Y-v.Radius)/g.cellSize), 0)
	r1 := min(int((v.Y+v.Radius)/g.cellSize), g.rows-1)

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, i := range g.cells[row*g.cols+col] {
				if i == self || !WithinSensoryField(v, g.xs[i], g.ys[i]) {
					continue
				}
				dst = append(dst, Neighbor{Index: i, Distance: Distance(v.X, v.Y, g.xs[i], g.ys[i])})
			}
		}
	}

	slices.SortFunc(dst[base:], func(a, b Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(dst)-base > MaxQueryResults {
		dst = dst[:base+MaxQueryResults]
	}
	return dst
}

func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := min(max(int(x/g.cellSize), 0), g.cols-1)
	row := min(max(int(y/g.cellSize), 0), g.rows-1)
	return row*g.cols + col
}
