package systems

import (
	"errors"
	"sync"
)

// ErrPoolExhausted is returned when a resource pool has reached its ceiling.
// The simulation cannot continue without more trail storage, so callers treat it as fatal.
var ErrPoolExhausted = errors.New("resource pool capacity exceeded")

// entry is the field's mutable slot for one key.
// mu guards res and dead; key and gen only change while the owning cell is write-locked.
type entry struct {
	mu   sync.Mutex
	res  Resource
	key  Key
	gen  uint64
	dead bool
}

// entryPool recycles field entries for one resource kind.
// A max of zero or less means unbounded.
type entryPool struct {
	mu        sync.Mutex
	free      []*entry
	allocated int
	max       int
	nextGen   uint64
}

func newEntryPool(initial, max int) *entryPool {
	if max > 0 && initial > max {
		initial = max
	}
	p := &entryPool{max: max, free: make([]*entry, 0, initial)}
	slab := make([]entry, initial)
	for i := range slab {
		p.free = append(p.free, &slab[i])
	}
	p.allocated = initial
	return p
}

// acquire hands out a live entry holding r under key.
func (p *entryPool) acquire(key Key, r Resource) (*entry, error) {
	p.mu.Lock()
	var e *entry
	if n := len(p.free); n > 0 {
		e = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		if p.max > 0 && p.allocated >= p.max {
			p.mu.Unlock()
			return nil, ErrPoolExhausted
		}
		e = &entry{}
		p.allocated++
	}
	p.nextGen++
	gen := p.nextGen
	p.mu.Unlock()

	e.res = r
	e.key = key
	e.gen = gen
	e.dead = false
	return e, nil
}

// release returns e to the pool. The caller must have unlinked it from the field.
func (p *entryPool) release(e *entry) {
	e.res = Resource{}
	e.dead = true
	p.mu.Lock()
	p.free = append(p.free, e)
	p.mu.Unlock()
}

// inUse returns the number of entries handed out and not yet released.
func (p *entryPool) inUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated - len(p.free)
}
