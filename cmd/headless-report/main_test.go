package main

import (
	"strings"
	"testing"

	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

func TestFormatPerDroneSortsLabels(t *testing.T) {
	got := formatPerDrone(map[string]int{"D2": 3, "D0": 5, "D1": 4})
	if got != "D0=5 D1=4 D2=3" {
		t.Fatalf("got %q", got)
	}
	if formatPerDrone(nil) != "none" {
		t.Fatal("empty map should render as none")
	}
}

func TestAvgTickString(t *testing.T) {
	if s := avgTickString(nil); s != "n/a" {
		t.Fatalf("got %q for empty input", s)
	}
	if s := avgTickString([]int{10, 20}); s != "15.0" {
		t.Fatalf("got %q, want 15.0", s)
	}
}

func TestPct(t *testing.T) {
	if p := pct(3, 0); p != 0 {
		t.Fatalf("got %f for zero denominator", p)
	}
	if p := pct(1, 4); p != 25 {
		t.Fatalf("got %f, want 25", p)
	}
}

func TestRunRescueCompletes(t *testing.T) {
	cfg := swarm.DefaultConfig()
	rs := runRescue(1, 42, 3000, cfg)

	if rs.detected == 0 {
		t.Fatal("run detected no victims")
	}
	if !rs.completed {
		t.Fatalf("run did not complete: %+v", rs)
	}
	if rs.rescued != rs.detected {
		t.Errorf("rescued %d of %d", rs.rescued, rs.detected)
	}
	if rs.completionTik <= 0 {
		t.Errorf("completion tick %d, want > 0", rs.completionTik)
	}
	if rs.firstRescue < 0 || rs.firstRescue > rs.completionTik {
		t.Errorf("first rescue tick %d outside (0, %d]", rs.firstRescue, rs.completionTik)
	}
	total := 0
	for label, n := range rs.perDrone {
		if !strings.HasPrefix(label, "D") {
			t.Errorf("unexpected drone label %q", label)
		}
		total += n
	}
	if total != rs.rescued {
		t.Errorf("per-drone counts sum to %d, rescued %d", total, rs.rescued)
	}
}
