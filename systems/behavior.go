package systems

import (
	"math"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/config"
)

// Arena is what an ant can see and touch during its turn.
type Arena interface {
	ResourcesInSensoryField(dst []Sensed, v View, kind Kind, lower, upper float64) []Sensed
	AttemptToTake(key Key, maxAmount float64) (float64, bool)
	Deposit(kind Kind, x, y, amount, decayRate float64) error
	Home() (x, y float64)
	Size() (w, h float64)
	WithinBounds(x, y float64) bool
}

// BehaviorParams holds the foraging tuning read from config once per game.
type BehaviorParams struct {
	FoodThreshold      float64
	PheromoneThreshold float64
	PickupRadius       float64
	DepositRadius      float64
	DepositEvery       int
	ResetAfter         int
	IgnoreSteps        int
	RandomTurn         float64
	ApproachSpeed      float64
	ApproachTurn       float64
	SectorWidth        float64
	WallRetries        int
	PheromoneAmount    float64
	PheromoneDecay     float64
}

// NewBehaviorParams extracts behavior parameters from cfg.
func NewBehaviorParams(cfg *config.Config) BehaviorParams {
	return BehaviorParams{
		FoodThreshold:      cfg.Behavior.FoodThreshold,
		PheromoneThreshold: cfg.Behavior.PheromoneThreshold,
		PickupRadius:       cfg.Colony.PickupRadius,
		DepositRadius:      cfg.Colony.DepositRadius,
		DepositEvery:       cfg.Behavior.DepositEvery,
		ResetAfter:         cfg.Behavior.ResetAfter,
		IgnoreSteps:        cfg.Behavior.IgnoreSteps,
		RandomTurn:         cfg.Derived.RandomTurn,
		ApproachSpeed:      cfg.Behavior.ApproachSpeed,
		ApproachTurn:       cfg.Behavior.ApproachTurn,
		SectorWidth:        cfg.Derived.SectorWidth,
		WallRetries:        cfg.Behavior.WallRetries,
		PheromoneAmount:    cfg.Pheromone.Amount,
		PheromoneDecay:     cfg.Pheromone.DecayRate,
	}
}

// Ant is a working copy of one ant's components for a single tick.
// Act mutates only the copy; the caller writes it back.
type Ant struct {
	Pos     components.Position
	Heading components.Heading
	Motion  components.Motion
	Sensory components.Sensory
	Forager components.Forager
}

// View returns the ant's current sensory cone.
func (a *Ant) View() View {
	return View{
		X:         a.Pos.X,
		Y:         a.Pos.Y,
		Heading:   a.Heading.Angle,
		Radius:    a.Sensory.Radius,
		HalfAngle: a.Sensory.HalfAngle,
	}
}

// Outcome records what an ant did during Act.
type Outcome struct {
	Picked    float64 // food taken from the field
	Delivered float64 // food dropped at home
	Deposited bool    // laid a pheromone
}

// Scratch holds per-worker reusable buffers.
type Scratch struct {
	Sensed  []Sensed
	Sectors []sectorCount // in order of first encounter
}

type sectorCount struct {
	sector, count int
}

// NewScratch allocates a scratch buffer.
func NewScratch() *Scratch {
	return &Scratch{
		Sensed:  make([]Sensed, 0, 64),
		Sectors: make([]sectorCount, 0, 36),
	}
}

// Act advances one ant by one tick of dt seconds.
// The only error is a failed pheromone deposit, which is fatal to the simulation.
func Act(a *Ant, arena Arena, p *BehaviorParams, s *Scratch, dt float64) (Outcome, error) {
	var out Outcome
	f := &a.Forager

	a.Motion.Speed = a.Motion.BaseSpeed
	a.Motion.MaxTurn = a.Motion.BaseTurn
	if f.Pending {
		return out, nil
	}

	homeX, homeY := arena.Home()

	if f.Carried > 0 && Distance(a.Pos.X, a.Pos.Y, homeX, homeY) <= p.DepositRadius {
		out.Delivered = f.Carried
		depositFood(a)
		return out, move(a, arena, p, dt, &out)
	}

	if f.Mode == components.ModeReturn {
		if WithinSensoryField(a.View(), homeX, homeY) {
			return out, approach(a, arena, p, dt, homeX, homeY, &out)
		}
		return out, navigate(a, arena, p, s, dt, KindPheromoneOutbound, &out)
	}

	s.Sensed = arena.ResourcesInSensoryField(s.Sensed[:0], a.View(), KindFood, p.FoodThreshold, NoUpperLimit)
	if len(s.Sensed) > 0 && s.Sensed[0].Distance <= p.PickupRadius {
		nearest := s.Sensed[0]
		f.Pending = true
		taken, ok := arena.AttemptToTake(nearest.Key, f.Capacity-f.Carried)
		f.Pending = false
		if ok {
			out.Picked = taken
			takeFood(a, nearest.Resource.X, nearest.Resource.Y, taken, homeX, homeY)
		}
		return out, nil
	}

	if len(s.Sensed) > 0 {
		best := mostSalient(s.Sensed)
		return out, approach(a, arena, p, dt, best.Resource.X, best.Resource.Y, &out)
	}
	return out, navigate(a, arena, p, s, dt, KindPheromoneReturn, &out)
}

// mostSalient picks the food with the highest amount per squared distance.
func mostSalient(food []Sensed) Sensed {
	best, bestScore := food[0], math.Inf(-1)
	for _, sf := range food {
		score := math.Inf(1)
		if d2 := sf.Distance * sf.Distance; d2 > 0 {
			score = sf.Resource.Amount / d2
		}
		if score > bestScore {
			best, bestScore = sf, score
		}
	}
	return best
}

func takeFood(a *Ant, x, y, amount, homeX, homeY float64) {
	f := &a.Forager
	f.LastFoodX, f.LastFoodY, f.HasLastFood = x, y, true
	f.Carried = math.Min(f.Carried+amount, f.Capacity)
	f.Desired = AngleBetween(a.Pos.X, a.Pos.Y, homeX, homeY)
	a.Heading.Angle = f.Desired
	f.Mode = components.ModeReturn
	resetTrailState(f)
}

func depositFood(a *Ant) {
	f := &a.Forager
	f.Carried = 0
	if f.HasLastFood {
		f.Desired = AngleBetween(a.Pos.X, a.Pos.Y, f.LastFoodX, f.LastFoodY)
	} else {
		f.Desired = NormalizeAngle(a.Heading.Angle + math.Pi)
	}
	a.Heading.Angle = f.Desired
	f.Mode = components.ModeForage
	resetTrailState(f)
}

func resetTrailState(f *components.Forager) {
	f.HasCeiling = false
	f.Ceiling = 0
	f.StepsWithoutEvent = 0
	f.IgnoreSteps = 0
}

// approach steers toward (x, y) more slowly and more sharply than normal.
func approach(a *Ant, arena Arena, p *BehaviorParams, dt, x, y float64, out *Outcome) error {
	a.Motion.Speed *= p.ApproachSpeed
	a.Motion.MaxTurn *= p.ApproachTurn
	a.Forager.Desired = AngleBetween(a.Pos.X, a.Pos.Y, x, y)
	a.Heading.Angle = TurnToward(a.Heading.Angle, a.Forager.Desired, a.Motion.MaxTurn)
	return move(a, arena, p, dt, out)
}

// navigate follows the trail of kind, or walks randomly while pheromones are ignored.
func navigate(a *Ant, arena Arena, p *BehaviorParams, s *Scratch, dt float64, kind Kind, out *Outcome) error {
	f := &a.Forager
	upper := NoUpperLimit
	if f.HasCeiling {
		upper = f.Ceiling
	}

	if f.StepsWithoutEvent >= p.ResetAfter {
		f.IgnoreSteps = p.IgnoreSteps
		f.StepsWithoutEvent = 0
		f.HasCeiling = false
	}

	if f.IgnoreSteps > 0 {
		f.IgnoreSteps--
		return randomWalk(a, arena, p, dt, out)
	}

	s.Sensed = arena.ResourcesInSensoryField(s.Sensed[:0], a.View(), kind, p.PheromoneThreshold, upper)
	f.StepsWithoutEvent++
	if len(s.Sensed) == 0 {
		return randomWalk(a, arena, p, dt, out)
	}

	strongest := 0.0
	for _, ph := range s.Sensed {
		strongest = math.Max(strongest, ph.Resource.Amount)
	}
	f.Ceiling, f.HasCeiling = strongest, true

	f.Desired = gradientHeading(a, s, p.SectorWidth)
	a.Heading.Angle = TurnToward(a.Heading.Angle, f.Desired, a.Motion.MaxTurn)
	return move(a, arena, p, dt, out)
}

// gradientHeading bins sensed pheromones into bearing sectors, takes the
// most populated sector and returns the bearing to its weakest pheromone.
// s.Sensed is sorted by distance, so a tie goes to the sector holding the
// nearer pheromone.
func gradientHeading(a *Ant, s *Scratch, sectorWidth float64) float64 {
	s.Sectors = s.Sectors[:0]
	for _, ph := range s.Sensed {
		sector := int(math.Floor(ph.Bearing / sectorWidth))
		found := false
		for i := range s.Sectors {
			if s.Sectors[i].sector == sector {
				s.Sectors[i].count++
				found = true
				break
			}
		}
		if !found {
			s.Sectors = append(s.Sectors, sectorCount{sector: sector, count: 1})
		}
	}
	if len(s.Sectors) == 0 {
		return a.Heading.Angle
	}

	best := s.Sectors[0]
	for _, c := range s.Sectors[1:] {
		if c.count > best.count {
			best = c
		}
	}
	bestSector := best.sector

	var target *Sensed
	for i := range s.Sensed {
		ph := &s.Sensed[i]
		if int(math.Floor(ph.Bearing/sectorWidth)) != bestSector {
			continue
		}
		if target == nil || ph.Resource.Amount < target.Resource.Amount {
			target = ph
		}
	}
	if target == nil {
		return a.Heading.Angle
	}
	return target.Bearing
}

// randomWalk perturbs the desired heading every TurnPeriod steps and keeps turning toward it.
func randomWalk(a *Ant, arena Arena, p *BehaviorParams, dt float64, out *Outcome) error {
	f := &a.Forager
	if f.StepsSinceTurn%f.TurnPeriod == 0 {
		delta := f.Rng.Float64()*2*p.RandomTurn - p.RandomTurn
		f.Desired = NormalizeAngle(a.Heading.Angle + delta)
		f.StepsSinceTurn = 1
	} else {
		f.StepsSinceTurn++
	}

	if AngularDistance(a.Heading.Angle, f.Desired) > 0.01 {
		a.Heading.Angle = TurnToward(a.Heading.Angle, f.Desired, a.Motion.MaxTurn)
	}
	return move(a, arena, p, dt, out)
}

// move advances the ant along its heading. If the step would leave the
// buffered arena, random headings are tried until one stays inside; after
// WallRetries failures the ant heads for the arena centre.
func move(a *Ant, arena Arena, p *BehaviorParams, dt float64, out *Outcome) error {
	w, h := arena.Size()
	step := a.Motion.Speed * dt
	dx, dy := math.Cos(a.Heading.Angle)*step, math.Sin(a.Heading.Angle)*step

	if !arena.WithinBounds(a.Pos.X+dx, a.Pos.Y+dy) {
		heading, found := 0.0, false
		for i := 0; i < p.WallRetries; i++ {
			heading = a.Forager.Rng.Float64() * TwoPi
			dx, dy = math.Cos(heading)*step, math.Sin(heading)*step
			if arena.WithinBounds(a.Pos.X+dx, a.Pos.Y+dy) {
				found = true
				break
			}
		}
		if !found {
			heading = AngleBetween(a.Pos.X, a.Pos.Y, w/2, h/2)
			dx, dy = math.Cos(heading)*step, math.Sin(heading)*step
		}
		a.Heading.Angle = heading
		a.Forager.Desired = heading
	}

	a.Pos.X = clamp(a.Pos.X+dx, 0, w-1)
	a.Pos.Y = clamp(a.Pos.Y+dy, 0, h-1)

	return depositPeriodically(a, arena, p, out)
}

func depositPeriodically(a *Ant, arena Arena, p *BehaviorParams, out *Outcome) error {
	f := &a.Forager
	if f.StepsSinceDeposit%p.DepositEvery != 0 {
		f.StepsSinceDeposit++
		return nil
	}
	f.StepsSinceDeposit = 1

	kind := KindPheromoneOutbound
	if f.Mode == components.ModeReturn {
		kind = KindPheromoneReturn
	}
	if err := arena.Deposit(kind, a.Pos.X, a.Pos.Y, p.PheromoneAmount, p.PheromoneDecay); err != nil {
		return err
	}
	out.Deposited = true
	return nil
}
