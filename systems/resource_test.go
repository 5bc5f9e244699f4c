package systems

import (
	"math"
	"testing"
)

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		requested float64
		want      Split
	}{
		{"partial", 5, 2, Split{Taken: 2, Rest: 3, HasTaken: true, HasRest: true}},
		{"exact", 5, 5, Split{Taken: 5, HasTaken: true}},
		{"more than available", 5, 7.5, Split{Taken: 5, HasTaken: true}},
		{"zero request", 5, 0, Split{Rest: 5, HasRest: true}},
		{"negative request", 5, -1, Split{Rest: 5, HasRest: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAmount(tt.total, tt.requested)
			if got != tt.want {
				t.Errorf("SplitAmount(%v, %v) = %+v, want %+v", tt.total, tt.requested, got, tt.want)
			}
			if sum := got.Taken + got.Rest; sum != tt.total {
				t.Errorf("parts sum to %v, want %v", sum, tt.total)
			}
		})
	}
}

func TestDecayedMonotonic(t *testing.T) {
	r := Resource{Kind: KindPheromoneOutbound, Amount: 1, DecayRate: 0.1}
	prev := r.Amount
	for i := 0; i < 100; i++ {
		r = r.Decayed(0.05, 1)
		if r.Amount > prev {
			t.Fatalf("step %d: amount rose from %v to %v", i, prev, r.Amount)
		}
		if r.Amount < 0 {
			t.Fatalf("step %d: amount went negative: %v", i, r.Amount)
		}
		prev = r.Amount
	}
}

func TestDecayedExponential(t *testing.T) {
	r := Resource{Kind: KindFood, Amount: 2, DecayRate: 0.5}

	got := r.Decayed(2, 1).Amount
	want := 2 * math.Pow(0.5, 2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Decayed amount = %v, want %v", got, want)
	}

	if got := r.Decayed(1, 0.5).Amount; math.Abs(got-1.5) > 1e-12 {
		t.Errorf("Decayed with modifier = %v, want 1.5", got)
	}
	if got := r.Decayed(1, 2).Amount; got != 0 {
		t.Errorf("rate >= 1 should empty the resource, got %v", got)
	}
	if got := r.Decayed(0, 1).Amount; got != 2 {
		t.Errorf("zero dt changed amount to %v", got)
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{MakeKey(KindFood, 12.4, 7.6, 1), "(12.0000,8.0000)-food"},
		{MakeKey(KindPheromoneOutbound, 0.2, 3, 1), "(0.0000,3.0000)-pheromone"},
		{MakeKey(KindPheromoneReturn, -0.2, 1.26, 0.5), "(0.0000,1.5000)-pheromone-r"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMakeKeyAggregates(t *testing.T) {
	a := MakeKey(KindFood, 10.2, 20.4, 1)
	b := MakeKey(KindFood, 9.8, 19.6, 1)
	if a != b {
		t.Errorf("nearby points quantized to different keys: %v vs %v", a, b)
	}
	if c := MakeKey(KindPheromoneReturn, 10.2, 20.4, 1); c == a {
		t.Error("different kinds share a key")
	}
}
