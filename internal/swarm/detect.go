package swarm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// generateVictims produces the detection batch: a count sampled around the
// density hint, placed uniformly by area inside the flood disc. The square
// root on the radial sample is what makes the density uniform per unit area;
// a uniform radial sample would pile victims up near the centre.
func generateVictims(rng *rand.Rand, center orb.Point, radius, density float64) []*Victim {
	n := int(math.Round(density * (0.8 + 0.4*rng.Float64())))
	if n < 1 {
		n = 1
	}
	victims := make([]*Victim, 0, n)
	for i := 0; i < n; i++ {
		bearing := rng.Float64() * 360
		r := radius * math.Sqrt(rng.Float64())
		victims = append(victims, newVictim(geometry.Destination(center, bearing, r)))
	}
	return victims
}

// detect runs the detection generator and replaces the victim set wholesale.
// One detection record is logged per victim for audit purposes.
func (s *Simulation) detect() {
	s.victims = generateVictims(s.rng, s.center, s.cfg.FloodRadius, s.cfg.Density)
	for _, v := range s.victims {
		s.log.Add(s.tick, v.shortID(), "--", "detect", "victim_found",
			fmt.Sprintf("at (%.5f,%.5f)", v.pos.Lat(), v.pos.Lon()),
			geometry.Distance(s.center, v.pos))
		s.render.VictimUpdated(v.snapshot())
	}
	s.log.Add(s.tick, "--", "--", "detect", "batch_complete",
		fmt.Sprintf("%d victims inside %.0fm disc", len(s.victims), s.cfg.FloodRadius),
		float64(len(s.victims)))
}
