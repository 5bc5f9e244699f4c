package systems

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestField(poolMin, poolMax int) *ResourceField {
	return NewResourceField(FieldParams{
		Width:            200,
		Height:           100,
		CellSize:         20,
		Resolution:       1,
		Epsilon:          0.08,
		PheromonePoolMin: poolMin,
		PheromonePoolMax: poolMax,
		Workers:          4,
	})
}

func mustAdd(t *testing.T, f *ResourceField, r Resource) Key {
	t.Helper()
	ok, err := f.TryAdd(r)
	if err != nil || !ok {
		t.Fatalf("TryAdd(%+v) = %v, %v", r, ok, err)
	}
	return f.Key(r.Kind, r.X, r.Y)
}

func TestFieldAddGetRemove(t *testing.T) {
	f := newTestField(16, 0)
	key := mustAdd(t, f, Resource{Kind: KindFood, X: 10.3, Y: 20.6, Amount: 3, DecayRate: 0.02})

	got, ok := f.Get(key)
	if !ok {
		t.Fatal("Get after TryAdd: not found")
	}
	if got.X != 10 || got.Y != 21 {
		t.Errorf("stored position = (%v, %v), want quantized (10, 21)", got.X, got.Y)
	}

	if ok, _ := f.TryAdd(Resource{Kind: KindFood, X: 10, Y: 21, Amount: 9}); ok {
		t.Error("TryAdd on an occupied key succeeded")
	}
	if got, _ := f.Get(key); got.Amount != 3 {
		t.Errorf("occupied TryAdd changed amount to %v", got.Amount)
	}

	last, ok := f.TryRemove(key)
	if !ok || last.Amount != 3 {
		t.Fatalf("TryRemove = %+v, %v", last, ok)
	}
	if _, ok := f.Get(key); ok {
		t.Error("Get after TryRemove still finds the resource")
	}
	if _, ok := f.TryRemove(key); ok {
		t.Error("second TryRemove succeeded")
	}
	if events := f.DrainDepletions(nil); len(events) != 1 || events[0].Key != key {
		t.Errorf("removal events = %v, want one for %v", events, key)
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d after removal", f.Len())
	}
}

func TestFieldTryUpdate(t *testing.T) {
	f := newTestField(16, 0)
	key := mustAdd(t, f, Resource{Kind: KindFood, X: 5, Y: 5, Amount: 2})
	cur, _ := f.Get(key)

	if !f.TryUpdate(key, cur.WithAmount(1.5), cur) {
		t.Fatal("TryUpdate with the current value failed")
	}
	if f.TryUpdate(key, cur.WithAmount(4), cur) {
		t.Error("TryUpdate with a stale expected value succeeded")
	}
	if got, _ := f.Get(key); got.Amount != 1.5 {
		t.Errorf("amount = %v, want 1.5", got.Amount)
	}
}

func TestDecaySweepRemovesDepleted(t *testing.T) {
	f := newTestField(16, 0)
	weak := mustAdd(t, f, Resource{Kind: KindPheromoneOutbound, X: 1, Y: 1, Amount: 0.1, DecayRate: 0.5})
	strong := mustAdd(t, f, Resource{Kind: KindFood, X: 150, Y: 80, Amount: 5, DecayRate: 0.02})

	f.DecaySweep(1)

	if _, ok := f.Get(weak); ok {
		t.Error("resource decayed below epsilon was not removed")
	}
	got, ok := f.Get(strong)
	if !ok {
		t.Fatal("strong resource removed")
	}
	if want := 5 * 0.98; math.Abs(got.Amount-want) > 1e-12 {
		t.Errorf("strong amount = %v, want %v", got.Amount, want)
	}

	events := f.DrainDepletions(nil)
	if len(events) != 1 || events[0].Key != weak {
		t.Fatalf("events = %v, want exactly one for %v", events, weak)
	}
	f.DecaySweep(1)
	if again := f.DrainDepletions(nil); len(again) != 0 {
		t.Errorf("depleted key notified again: %v", again)
	}
}

func TestAttemptToTakeDepletes(t *testing.T) {
	f := newTestField(16, 0)
	key := mustAdd(t, f, Resource{Kind: KindFood, X: 30, Y: 30, Amount: 5})

	got, ok := f.AttemptToTake(key, 2)
	if !ok || got != 2 {
		t.Fatalf("first take = %v, %v, want 2", got, ok)
	}
	got, ok = f.AttemptToTake(key, 10)
	if !ok || got != 3 {
		t.Fatalf("second take = %v, %v, want 3", got, ok)
	}
	if _, ok := f.AttemptToTake(key, 1); ok {
		t.Error("take from a depleted key succeeded")
	}
	if _, ok := f.Get(key); ok {
		t.Error("emptied resource still present")
	}
	if events := f.DrainDepletions(nil); len(events) != 1 {
		t.Errorf("got %d depletion events, want 1", len(events))
	}
}

func TestAttemptToTakeRemovesBelowEpsilon(t *testing.T) {
	f := newTestField(16, 0)
	key := mustAdd(t, f, Resource{Kind: KindFood, X: 30, Y: 30, Amount: 1.05})

	got, ok := f.AttemptToTake(key, 1)
	if !ok || got != 1 {
		t.Fatalf("take = %v, %v", got, ok)
	}
	if _, ok := f.Get(key); ok {
		t.Error("remainder at or below epsilon was not removed")
	}
}

func TestConcurrentTakeNoDoubleSpend(t *testing.T) {
	f := newTestField(16, 0)
	const initial = 50.0
	key := mustAdd(t, f, Resource{Kind: KindFood, X: 42, Y: 42, Amount: initial})

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0.0
	var successes atomic.Int32
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				got, ok := f.AttemptToTake(key, 0.5)
				if !ok {
					continue
				}
				successes.Add(1)
				mu.Lock()
				total += got
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if total > initial+1e-9 {
		t.Errorf("took %v from a pile of %v", total, initial)
	}
	if total < initial-f.Epsilon()-1e-9 {
		t.Errorf("took only %v of %v with 640 attempts", total, initial)
	}
	if events := f.DrainDepletions(nil); len(events) != 1 {
		t.Errorf("got %d depletion events, want 1", len(events))
	}
	if successes.Load() != 100 {
		t.Errorf("successful takes = %d, want 100", successes.Load())
	}
}

func TestConcurrentDepositAdditive(t *testing.T) {
	f := newTestField(4, 0)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := f.Deposit(KindPheromoneReturn, 77, 33, 0.25, 0.1); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, ok := f.Get(f.Key(KindPheromoneReturn, 77, 33))
	if !ok {
		t.Fatal("deposited pheromone missing")
	}
	if want := 32 * 100 * 0.25; math.Abs(got.Amount-want) > 1e-9 {
		t.Errorf("amount = %v, want %v", got.Amount, want)
	}
	if n := f.Count(KindPheromoneReturn); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestDepositRevivesDepletedKey(t *testing.T) {
	f := newTestField(4, 0)
	if err := f.Deposit(KindPheromoneOutbound, 9, 9, 0.1, 0.9); err != nil {
		t.Fatal(err)
	}
	f.DecaySweep(1)
	if f.Count(KindPheromoneOutbound) != 0 {
		t.Fatal("pheromone did not decay away")
	}
	if err := f.Deposit(KindPheromoneOutbound, 9, 9, 0.25, 0.1); err != nil {
		t.Fatal(err)
	}
	got, ok := f.Get(f.Key(KindPheromoneOutbound, 9, 9))
	if !ok || got.Amount != 0.25 {
		t.Errorf("revived pheromone = %+v, %v", got, ok)
	}
	if n := f.PoolInUse(KindPheromoneOutbound); n != 1 {
		t.Errorf("pool in use = %d, want 1", n)
	}
}

func TestConcurrentTakeAndDeposit(t *testing.T) {
	f := newTestField(64, 0)
	key := f.Key(KindFood, 60, 60)

	var wg sync.WaitGroup
	var taken, added float64
	var mu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := f.Deposit(KindFood, 60, 60, 0.5, 0); err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				added += 0.5
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got, ok := f.AttemptToTake(key, 0.3); ok {
					mu.Lock()
					taken += got
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	remaining := 0.0
	if r, ok := f.Get(key); ok {
		remaining = r.Amount
	}
	// Each depletion may discard up to epsilon.
	lost := float64(len(f.DrainDepletions(nil))) * f.Epsilon()
	if diff := added - taken - remaining; diff < -1e-9 || diff > lost+1e-9 {
		t.Errorf("added %v, taken %v, remaining %v: unaccounted %v exceeds %v", added, taken, remaining, diff, lost)
	}
}

func BenchmarkDecaySweep(b *testing.B) {
	f := NewResourceField(FieldParams{Width: 1000, Height: 600, CellSize: 40, Resolution: 1, Epsilon: 0.08, PheromonePoolMin: 4096})
	for x := 0; x < 1000; x += 5 {
		for y := 0; y < 600; y += 5 {
			_ = f.Deposit(KindPheromoneOutbound, float64(x), float64(y), 1000, 0)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.DecaySweep(0.05)
	}
}
