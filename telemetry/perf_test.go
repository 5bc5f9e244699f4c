package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseDecay)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseAgents)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Fatal("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseAgents] <= 0 || stats.PhaseAvg[PhaseDecay] <= 0 {
		t.Errorf("phases not tracked: %v", stats.PhaseAvg)
	}
	if stats.PhasePct[PhaseAgents] <= stats.PhasePct[PhaseDecay] {
		t.Errorf("agents %.1f%% should exceed decay %.1f%%", stats.PhasePct[PhaseAgents], stats.PhasePct[PhaseDecay])
	}
	if stats.PhaseAvg[PhaseRender] != 0 {
		t.Errorf("untimed phase has duration %v", stats.PhaseAvg[PhaseRender])
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v, avg %v, max %v out of order", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseApply)
		pc.EndTick()
	}
	if pc.filled != 3 {
		t.Errorf("filled = %d, want 3", pc.filled)
	}
	if stats := pc.Stats(); stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", stats)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 2 * time.Millisecond
	s.PhasePct[PhaseAgents] = 75
	s.PhasePct[PhaseRender] = 5

	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 2000 {
		t.Errorf("row = %+v", row)
	}
	if row.AgentsPct != 75 || row.RenderPct != 5 {
		t.Errorf("phase percentages = %v, %v", row.AgentsPct, row.RenderPct)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseAgents.String() != "agents" || noPhase.String() != "none" {
		t.Errorf("unexpected names %q, %q", PhaseAgents, noPhase)
	}
}
