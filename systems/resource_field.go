package systems

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Depletion reports a resource that left the field, either by decay, by an
// extraction that emptied it, or by explicit removal.
type Depletion struct {
	Key  Key
	Last Resource // value at the moment of removal
}

// fieldCell is one shard of the field. Lock order is cell before entry.
type fieldCell struct {
	mu      sync.RWMutex
	entries map[Key]*entry
}

// FieldParams configures a ResourceField.
type FieldParams struct {
	Width, Height    float64
	CellSize         float64
	Resolution       float64 // key quantization step
	Epsilon          float64 // amounts at or below this are depleted
	PheromonePoolMin int
	PheromonePoolMax int
	Workers          int // decay sweep parallelism, 0 = GOMAXPROCS
}

// ResourceField is the shared, concurrently accessed map from position key to resource.
// It is sharded into a grid of cells; each cell doubles as the spatial index
// for sensory queries and as the lock domain for the keys inside it.
type ResourceField struct {
	width, height float64
	cellSize      float64
	cols, rows    int
	cells         []fieldCell
	resolution    float64
	epsilon       float64
	workers       int

	pools  [numKinds]*entryPool
	counts [numKinds]atomic.Int64

	eventsMu sync.Mutex
	events   []Depletion
}

// NewResourceField creates an empty field covering width x height.
func NewResourceField(p FieldParams) *ResourceField {
	cols := int(p.Width/p.CellSize) + 1
	rows := int(p.Height/p.CellSize) + 1
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	f := &ResourceField{
		width:      p.Width,
		height:     p.Height,
		cellSize:   p.CellSize,
		cols:       cols,
		rows:       rows,
		cells:      make([]fieldCell, cols*rows),
		resolution: p.Resolution,
		epsilon:    p.Epsilon,
		workers:    workers,
	}
	for i := range f.cells {
		f.cells[i].entries = make(map[Key]*entry)
	}

	f.pools[KindFood] = newEntryPool(0, 0)
	f.pools[KindPheromoneOutbound] = newEntryPool(p.PheromonePoolMin, p.PheromonePoolMax)
	f.pools[KindPheromoneReturn] = newEntryPool(p.PheromonePoolMin, p.PheromonePoolMax)
	return f
}

// Width returns the covered width.
func (f *ResourceField) Width() float64 { return f.width }

// Height returns the covered height.
func (f *ResourceField) Height() float64 { return f.height }

// Epsilon returns the depletion threshold.
func (f *ResourceField) Epsilon() float64 { return f.epsilon }

// Key returns the key for kind at (x, y).
func (f *ResourceField) Key(kind Kind, x, y float64) Key {
	return MakeKey(kind, x, y, f.resolution)
}

// Count returns the number of live resources of kind.
func (f *ResourceField) Count(kind Kind) int {
	return int(f.counts[kind].Load())
}

// Len returns the number of live resources of all kinds.
func (f *ResourceField) Len() int {
	n := 0
	for k := range f.counts {
		n += int(f.counts[k].Load())
	}
	return n
}

// PoolInUse returns how many pooled entries of kind are currently live.
func (f *ResourceField) PoolInUse(kind Kind) int {
	return f.pools[kind].inUse()
}

func (f *ResourceField) cellFor(x, y float64) *fieldCell {
	col := int(x / f.cellSize)
	row := int(y / f.cellSize)
	col = min(max(col, 0), f.cols-1)
	row = min(max(row, 0), f.rows-1)
	return &f.cells[row*f.cols+col]
}

// normalize pins r to its quantized key position.
func (f *ResourceField) normalize(r Resource) (Key, Resource) {
	key := r.Key(f.resolution)
	r.X, r.Y = key.X, key.Y
	return key, r
}

// Get returns the resource stored under key.
func (f *ResourceField) Get(key Key) (Resource, bool) {
	c := f.cellFor(key.X, key.Y)
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return Resource{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return Resource{}, false
	}
	return e.res, true
}

// TryAdd stores r under its key unless a live resource already occupies it.
// The stored position is the quantized key position.
func (f *ResourceField) TryAdd(r Resource) (bool, error) {
	key, r := f.normalize(r)
	c := f.cellFor(key.X, key.Y)
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		if !old.dead {
			return false, nil
		}
		f.unlinkLocked(c, old)
	}
	if err := f.insertLocked(c, key, r); err != nil {
		return false, err
	}
	return true, nil
}

// TryUpdate replaces the resource under key with next if it still equals expected.
// Position and kind stay those of the key.
func (f *ResourceField) TryUpdate(key Key, next, expected Resource) bool {
	c := f.cellFor(key.X, key.Y)
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead || e.res != expected {
		return false
	}
	next.Kind, next.X, next.Y = e.res.Kind, e.res.X, e.res.Y
	e.res = next
	return true
}

// TryRemove deletes the resource under key and returns its last value.
// A removal notification is emitted.
func (f *ResourceField) TryRemove(key Key) (Resource, bool) {
	c := f.cellFor(key.X, key.Y)
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Resource{}, false
	}
	if e.dead {
		f.unlinkLocked(c, e)
		return Resource{}, false
	}
	last := e.res
	f.emit(Depletion{Key: key, Last: last})
	f.unlinkLocked(c, e)
	return last, true
}

// AttemptToTake extracts up to maxAmount from the resource under key.
// It returns the amount actually taken. At most one caller can extract from a
// key at a time; if the extraction leaves the resource at or below epsilon it is
// depleted in the same step and exactly one notification is emitted.
func (f *ResourceField) AttemptToTake(key Key, maxAmount float64) (float64, bool) {
	if maxAmount <= 0 {
		return 0, false
	}
	c := f.cellFor(key.X, key.Y)
	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.RUnlock()
		return 0, false
	}

	e.mu.Lock()
	if e.dead {
		e.mu.Unlock()
		c.mu.RUnlock()
		return 0, false
	}
	split := SplitAmount(e.res.Amount, maxAmount)
	if !split.HasTaken || split.Taken <= 0 {
		e.mu.Unlock()
		c.mu.RUnlock()
		return 0, false
	}
	e.res.Amount = split.Rest
	emptied := e.res.Amount <= f.epsilon
	gen := e.gen
	if emptied {
		e.dead = true
		f.emit(Depletion{Key: key, Last: e.res})
	}
	e.mu.Unlock()
	c.mu.RUnlock()

	if emptied {
		// Dead entries are invisible to every reader; unlinking can happen later.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == e && cur.gen == gen {
			f.unlinkLocked(c, e)
		}
		c.mu.Unlock()
	}
	return split.Taken, true
}

// Deposit adds amount to the resource of kind at (x, y), creating it if absent.
// Concurrent deposits at the same key are additive.
func (f *ResourceField) Deposit(kind Kind, x, y, amount, decayRate float64) error {
	if amount <= 0 {
		return nil
	}
	key := f.Key(kind, x, y)
	c := f.cellFor(key.X, key.Y)

	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		e.mu.Lock()
		if !e.dead {
			e.res.Amount += amount
			e.mu.Unlock()
			c.mu.RUnlock()
			return nil
		}
		e.mu.Unlock()
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.dead {
			e.mu.Lock()
			e.res.Amount += amount
			e.mu.Unlock()
			return nil
		}
		f.unlinkLocked(c, e)
	}
	r := Resource{Kind: kind, X: key.X, Y: key.Y, Amount: amount, DecayRate: decayRate}
	if err := f.insertLocked(c, key, r); err != nil {
		return fmt.Errorf("depositing %s: %w", key, err)
	}
	return nil
}

// DecaySweep decays every resource by dt seconds and removes those at or
// below epsilon, emitting one notification per removed key. Cells are swept in parallel.
func (f *ResourceField) DecaySweep(dt float64) {
	n := len(f.cells)
	workers := min(f.workers, n)
	if workers <= 1 {
		f.decayCells(0, n, dt)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			f.decayCells(start, end, dt)
		}(start, end)
	}
	wg.Wait()
}

func (f *ResourceField) decayCells(start, end int, dt float64) {
	for i := start; i < end; i++ {
		c := &f.cells[i]
		c.mu.Lock()
		for key, e := range c.entries {
			if e.dead {
				f.unlinkLocked(c, e)
				continue
			}
			e.res = e.res.Decayed(dt, 1)
			if e.res.Amount <= f.epsilon {
				f.emit(Depletion{Key: key, Last: e.res})
				f.unlinkLocked(c, e)
			}
		}
		c.mu.Unlock()
	}
}

// DrainDepletions appends all pending notifications to dst and clears the queue.
func (f *ResourceField) DrainDepletions(dst []Depletion) []Depletion {
	f.eventsMu.Lock()
	dst = append(dst, f.events...)
	f.events = f.events[:0]
	f.eventsMu.Unlock()
	return dst
}

// Snapshot appends every live resource to dst.
func (f *ResourceField) Snapshot(dst []Resource) []Resource {
	for i := range f.cells {
		c := &f.cells[i]
		c.mu.RLock()
		for _, e := range c.entries {
			e.mu.Lock()
			if !e.dead {
				dst = append(dst, e.res)
			}
			e.mu.Unlock()
		}
		c.mu.RUnlock()
	}
	return dst
}

// Total returns the summed amount of all live resources of kind.
func (f *ResourceField) Total(kind Kind) float64 {
	total := 0.0
	for i := range f.cells {
		c := &f.cells[i]
		c.mu.RLock()
		for key, e := range c.entries {
			if key.Kind != kind {
				continue
			}
			e.mu.Lock()
			if !e.dead {
				total += e.res.Amount
			}
			e.mu.Unlock()
		}
		c.mu.RUnlock()
	}
	return total
}

func (f *ResourceField) emit(d Depletion) {
	f.eventsMu.Lock()
	f.events = append(f.events, d)
	f.eventsMu.Unlock()
}

// insertLocked requires c to be write-locked.
func (f *ResourceField) insertLocked(c *fieldCell, key Key, r Resource) error {
	e, err := f.pools[key.Kind].acquire(key, r)
	if err != nil {
		return err
	}
	c.entries[key] = e
	f.counts[key.Kind].Add(1)
	return nil
}

// unlinkLocked requires c to be write-locked. Live counts are dropped here,
// so a dead entry still linked is counted until it is unlinked.
func (f *ResourceField) unlinkLocked(c *fieldCell, e *entry) {
	delete(c.entries, e.key)
	f.counts[e.key.Kind].Add(-1)
	f.pools[e.key.Kind].release(e)
}
