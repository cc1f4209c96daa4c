package swarm

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// DroneCount is one drone's line in the run summary.
type DroneCount struct {
	Label   string `json:"label"`
	Team    string `json:"team"`
	Rescued int    `json:"rescued"`
}

// Summary is the structured record delivered to the reporting surface on
// termination: totals plus per-drone rescue counts.
type Summary struct {
	TotalDetected int          `json:"total_detected"`
	TotalRescued  int          `json:"total_rescued"`
	Remaining     int          `json:"remaining"`
	Ticks         int          `json:"ticks"`
	Finished      bool         `json:"finished"`
	PerDrone      []DroneCount `json:"per_drone"`
}

// Summary returns the current run totals. Valid at any tick boundary, not
// just at termination.
func (s *Simulation) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

// summary is the lock-free inner variant. Caller holds the mutex.
func (s *Simulation) summary() Summary {
	sum := Summary{
		TotalDetected: len(s.victims),
		Ticks:         s.tick,
		Finished:      s.finished,
	}
	for _, v := range s.victims {
		if v.rescued {
			sum.TotalRescued++
		}
	}
	sum.Remaining = sum.TotalDetected - sum.TotalRescued
	for _, d := range s.drones {
		sum.PerDrone = append(sum.PerDrone, DroneCount{Label: d.label, Team: d.team, Rescued: d.rescued})
	}
	return sum
}

// FormatReport renders the summary as a short human-readable block, used by
// the map view's clipboard export and the headless report.
func (sum Summary) FormatReport() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Rescue Summary (T=%03d) ---\n", sum.Ticks)
	fmt.Fprintf(&sb, "detected=%d rescued=%d remaining=%d finished=%v\n",
		sum.TotalDetected, sum.TotalRescued, sum.Remaining, sum.Finished)
	for _, dc := range sum.PerDrone {
		fmt.Fprintf(&sb, "  %-4s %-8s rescued=%d\n", dc.Label, dc.Team, dc.Rescued)
	}
	return sb.String()
}

// RegionSnapshot pairs a drone with its assigned polygon.
type RegionSnapshot struct {
	DroneID string      `json:"drone_id"`
	Label   string      `json:"label"`
	Polygon orb.Polygon `json:"polygon"`
}

// SimSnapshot is a lightweight copy of the whole visible state at one tick
// boundary, for render surfaces and the HTTP API.
type SimSnapshot struct {
	Tick        int              `json:"tick"`
	Launched    bool             `json:"launched"`
	Finished    bool             `json:"finished"`
	FloodCenter orb.Point        `json:"flood_center"`
	FloodRadius float64          `json:"flood_radius_m"`
	Drones      []DroneSnapshot  `json:"drones"`
	Victims     []VictimSnapshot `json:"victims"`
	Regions     []RegionSnapshot `json:"regions"`
}

// Snapshot captures the current state of all entities.
func (s *Simulation) Snapshot() SimSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SimSnapshot{
		Tick:        s.tick,
		Launched:    s.launched,
		Finished:    s.finished,
		FloodCenter: s.center,
		FloodRadius: s.cfg.FloodRadius,
	}
	for _, d := range s.drones {
		snap.Drones = append(snap.Drones, d.snapshot())
		if d.region != nil {
			snap.Regions = append(snap.Regions, RegionSnapshot{
				DroneID: d.id,
				Label:   d.label,
				Polygon: d.region,
			})
		}
	}
	for _, v := range s.victims {
		snap.Victims = append(snap.Victims, v.snapshot())
	}
	return snap
}
