package swarm

import (
	"fmt"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// allocate refreshes every drone's target. Runs each tick before motion.
//
// Policy per drone:
//  1. A live (unrescued) target is kept unchanged — sticky assignment, so
//     pursuit never thrashes between near-equidistant victims.
//  2. Otherwise the candidate set is the unrescued victims inside the
//     drone's region; if that is empty, or the drone has no region, it is
//     every unrescued victim (global fallback).
//  3. The candidate nearest the drone's SEED position wins, first
//     encountered on a tie. The seed, not the live position, keeps the
//     preference anchored to the drone's own cell.
//  4. With no unrescued victims anywhere the target clears and the drone
//     patrols.
//
// Selection is computed independently per drone with no reservation, so two
// drones can pick the same victim in one tick. That costs redundant travel,
// never incorrect state: rescue marking is idempotent and the loser's target
// clears on the next pass.
func (s *Simulation) allocate() {
	for _, d := range s.drones {
		if d.target != noTarget && !s.victims[d.target].rescued {
			continue
		}

		prev := d.target
		d.target = s.selectTarget(d)

		if d.target == noTarget {
			if prev != noTarget {
				s.log.Add(s.tick, d.label, d.team, "allocate", "target_cleared",
					"no unrescued victims, patrolling", 0)
			}
			continue
		}
		v := s.victims[d.target]
		s.log.Add(s.tick, d.label, d.team, "allocate", "target_set",
			fmt.Sprintf("victim %s (%.0fm from seed)", v.shortID(),
				geometry.Distance(d.seed, v.pos)),
			geometry.Distance(d.seed, v.pos))
	}
}

// selectTarget returns the victim arena index this drone should pursue, or
// noTarget when no unrescued victims remain.
func (s *Simulation) selectTarget(d *Drone) int {
	best := noTarget
	bestDist := 0.0
	pick := func(i int) {
		dist := geometry.Distance(d.seed, s.victims[i].pos)
		if best == noTarget || dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if d.region != nil {
		for i, v := range s.victims {
			if v.rescued || !geometry.PointInPolygon(v.pos, d.region) {
				continue
			}
			pick(i)
		}
		if best != noTarget {
			return best
		}
	}

	// Global fallback: empty region candidate set, or no region at all.
	for i, v := range s.victims {
		if v.rescued {
			continue
		}
		pick(i)
	}
	return best
}
