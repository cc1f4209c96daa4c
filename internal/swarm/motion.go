package swarm

import (
	"fmt"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// advance runs the per-tick motion and rescue resolution for every drone:
// pursuing drones step toward their target, idle drones patrol, then each
// pursuing drone within trigger range resolves its rescue. Each drone's
// mutations complete atomically before the next drone is touched.
func (s *Simulation) advance() {
	for _, d := range s.drones {
		if d.target != noTarget {
			d.stepToward(s.victims[d.target].pos)
		} else {
			d.patrol(s.rng)
		}
		s.log.AddVerbose(s.tick, d.label, d.team, "move", "position",
			fmt.Sprintf("(%.5f,%.5f)", d.pos.Lat(), d.pos.Lon()), 0)
		s.render.DroneMoved(d.snapshot())
	}

	for _, d := range s.drones {
		if d.target == noTarget {
			continue
		}
		v := s.victims[d.target]
		dist := geometry.Distance(d.pos, v.pos)
		if dist > s.cfg.TriggerRange {
			continue
		}
		s.resolveRescue(d, v, dist)
	}
}

// resolveRescue marks the victim rescued, credits the drone, notifies the
// guidance sink, routes the rescue event, and clears the target so the next
// allocation pass reassigns the drone.
//
// Marking is idempotent: if another drone rescued this victim earlier in the
// same tick the flag is already set, nothing is credited, and the target is
// simply dropped.
func (s *Simulation) resolveRescue(d *Drone, v *Victim, dist float64) {
	if v.rescued {
		d.target = noTarget
		return
	}
	v.rescued = true
	d.rescued++

	s.guidance.Announce(fmt.Sprintf(
		"Drone %s, team %s: victim located %.0f meters out. Initiating rescue guidance.",
		d.label, d.team, dist))

	ev := s.router.Route(d, v, dist)

	s.render.VictimUpdated(v.snapshot())
	s.render.DroneMoved(d.snapshot())

	s.log.Add(s.tick, d.label, d.team, "rescue", "completed",
		fmt.Sprintf("victim %s at %.1fm (total %d)", v.shortID(), dist, d.rescued), dist)
	s.log.Add(s.tick, d.label, d.team, "route", "event_sent",
		fmt.Sprintf("event %.8s victim %s", ev.ID, v.shortID()), 0)

	d.target = noTarget
}
