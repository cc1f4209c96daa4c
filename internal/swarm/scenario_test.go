package swarm

import (
	"testing"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// TestScenarioThreeDroneSweep is the reference run: radius 800, density 12,
// 3 drones. Expect 10–14 victims strictly inside the disc, three disjoint
// regions, and a complete rescue within a bounded number of ticks.
func TestScenarioThreeDroneSweep(t *testing.T) {
	s := newLaunchedSim(t) // defaults: 3 agents, density 12, radius 800

	if n := len(s.victims); n < 10 || n > 14 {
		t.Fatalf("detected %d victims, want 10–14", n)
	}
	for _, v := range s.victims {
		if d := geometry.Distance(s.center, v.pos); d >= 800 {
			t.Errorf("victim %.0fm from centre, outside the flood disc", d)
		}
	}
	regions := 0
	for _, d := range s.drones {
		if d.region != nil {
			regions++
		}
	}
	if regions != 3 {
		t.Fatalf("%d regions assigned, want 3", regions)
	}

	done := s.RunUntil((*Simulation).Finished, 3000)
	if done < 0 {
		t.Fatalf("run did not terminate\n%s", s.log.Format())
	}
	sum := s.Summary()
	if sum.TotalRescued != sum.TotalDetected {
		t.Errorf("rescued %d of %d detected", sum.TotalRescued, sum.TotalDetected)
	}
	if sum.Remaining != 0 {
		t.Errorf("%d victims remaining after completion", sum.Remaining)
	}
}

// TestScenarioVictimAtSeed: one drone, one victim exactly on the drone's
// seed. The very first tick's rescue check fires (distance 0 ≤ trigger) and
// the run terminates on tick 1.
func TestScenarioVictimAtSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agents = 1
	s := newLaunchedSim(t, WithConfig(cfg))

	s.victims = []*Victim{newVictim(s.drones[0].seed)}

	done := s.Step()
	if !done {
		t.Fatal("run should terminate on tick 1")
	}
	if s.Tick() != 1 {
		t.Fatalf("terminated at tick %d, want 1", s.Tick())
	}
	if s.drones[0].rescued != 1 {
		t.Fatalf("rescued count %d, want 1", s.drones[0].rescued)
	}
	if !s.victims[0].rescued {
		t.Fatal("victim not marked rescued")
	}
}

// TestScenarioRelaunch: launching again replaces the previous run's
// entities wholesale.
func TestScenarioRelaunch(t *testing.T) {
	s := newLaunchedSim(t)
	s.RunTicks(10)
	firstVictims := make(map[string]bool)
	for _, v := range s.victims {
		firstVictims[v.id] = true
	}

	if err := s.Launch(); err != nil {
		t.Fatalf("relaunch: %v", err)
	}
	if s.Tick() != 0 {
		t.Error("relaunch should restart the tick counter")
	}
	for _, v := range s.victims {
		if firstVictims[v.id] {
			t.Fatal("relaunch kept a victim from the previous run")
		}
	}
	for _, d := range s.drones {
		if d.rescued != 0 {
			t.Error("relaunch should reset rescue counts")
		}
	}
}

// TestScenarioTerminationLogsSummary checks the completion entry carries
// the final totals.
func TestScenarioTerminationLogsSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agents = 2
	cfg.Density = 3
	s := newLaunchedSim(t, WithConfig(cfg))

	if done := s.RunUntil((*Simulation).Finished, 3000); done < 0 {
		t.Fatalf("run did not terminate\n%s", s.log.Format())
	}
	entry, ok := s.log.LastOf("run", "complete")
	if !ok {
		t.Fatal("no completion entry logged")
	}
	if int(entry.NumVal) != s.Tick() {
		t.Errorf("completion entry at tick %v, sim finished at %d", entry.NumVal, s.Tick())
	}

	// Ticking past termination changes nothing.
	tick := s.Tick()
	s.RunTicks(5)
	if s.Tick() != tick {
		t.Error("ticks must stop advancing after termination")
	}
}
