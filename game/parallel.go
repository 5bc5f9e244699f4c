package game

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/mbauer83/ANTS/systems"
)

// parallelThreshold is the minimum ant count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// antWork is one ant's working copy for the current tick.
type antWork struct {
	Entity ecs.Entity
	Ant    systems.Ant
}

// intent captures what an ant's turn produced, applied after the parallel phase.
type intent struct {
	Out    systems.Outcome
	Err    error
	Failed bool // the ant's behavior panicked; its state is not written back
}

// workChunk represents a range of ants for a worker to process.
type workChunk struct {
	start, end int
	dt         float64
}

// parallelState holds resources for parallel behavior computation.
type parallelState struct {
	work       []antWork
	intents    []intent
	scratches  []*systems.Scratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]*systems.Scratch, numWorkers)
	for i := range scratches {
		scratches[i] = systems.NewScratch()
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
		work:       make([]antWork, 0, 512),
		intents:    make([]intent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end, scratch, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// snapshotAnts copies every ant out of the ECS world and rebuilds the agent grid.
func (g *Game) snapshotAnts() {
	p := g.parallel
	p.work = p.work[:0]
	g.grid.Clear()

	query := g.antFilter.Query()
	for query.Next() {
		pos, head, motion, sensory, forager := query.Get()
		g.grid.Insert(len(p.work), pos.X, pos.Y)
		p.work = append(p.work, antWork{
			Entity: query.Entity(),
			Ant: systems.Ant{
				Pos:     *pos,
				Heading: *head,
				Motion:  *motion,
				Sensory: *sensory,
				Forager: *forager,
			},
		})
	}

	n := len(p.work)
	if cap(p.intents) < n {
		p.intents = make([]intent, n)
	}
	p.intents = p.intents[:n]
}

// computeAgents runs every ant's behavior, in parallel for large colonies.
func (g *Game) computeAgents(dt float64) {
	n := len(g.parallel.work)
	if n == 0 {
		return
	}
	if n < parallelThreshold || g.parallel.numWorkers == 1 {
		g.computeChunk(0, n, g.parallel.scratches[0], dt)
		return
	}
	g.computeParallel(n, dt)
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int, dt float64) {
	// Ensure workers are running
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		g.parallel.workChan <- workChunk{start: start, end: end, dt: dt}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeChunk processes a range of ants for a single worker.
func (g *Game) computeChunk(i0, i1 int, scratch *systems.Scratch, dt float64) {
	for i := i0; i < i1; i++ {
		g.actIsolated(&g.parallel.work[i], &g.parallel.intents[i], scratch, dt)
	}
}

// actIsolated runs one ant's turn, converting a panic into a failed intent so
// the rest of the colony keeps going.
func (g *Game) actIsolated(w *antWork, it *intent, scratch *systems.Scratch, dt float64) {
	*it = intent{}
	defer func() {
		if r := recover(); r != nil {
			it.Failed = true
			it.Err = fmt.Errorf("ant %d: %v", w.Ant.Forager.ID, r)
		}
	}()
	it.Out, it.Err = systems.Act(&w.Ant, g.arena, &g.params, scratch, dt)
}

// applyIntents writes results back to the ECS world and records telemetry.
// A pheromone pool failure is returned; any other per-ant failure is logged
// and that ant keeps its previous state.
func (g *Game) applyIntents() error {
	var fatal error
	for i := range g.parallel.work {
		w := &g.parallel.work[i]
		it := &g.parallel.intents[i]

		if it.Failed {
			g.collector.RecordAgentFailure()
			slog.Warn("ant behavior failed", "tick", g.tick, "error", it.Err)
			continue
		}
		if it.Err != nil {
			if errors.Is(it.Err, systems.ErrPoolExhausted) {
				fatal = errors.Join(fatal, it.Err)
			} else {
				g.collector.RecordAgentFailure()
				slog.Warn("ant behavior failed", "tick", g.tick, "ant", w.Ant.Forager.ID, "error", it.Err)
				continue
			}
		}

		pos, head, motion, sensory, forager := g.antMapper.Get(w.Entity)
		*pos = w.Ant.Pos
		*head = w.Ant.Heading
		*motion = w.Ant.Motion
		*sensory = w.Ant.Sensory
		*forager = w.Ant.Forager

		if it.Out.Picked > 0 {
			g.collector.RecordPickup(it.Out.Picked)
		}
		if it.Out.Delivered > 0 {
			g.collector.RecordDelivery(it.Out.Delivered)
		}
		if it.Out.Deposited {
			g.collector.RecordDeposit()
		}
	}
	return fatal
}
