package swarm

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/geometry"
)

// extentMargin scales the flood radius into the half-size of the square
// working extent the Voronoi diagram is clipped to.
const extentMargin = 1.5

// partition divides the working extent into one convex region per drone,
// using the drones' seed positions as Voronoi sites. Cells are re-matched to
// drones by nearest centroid rather than by diagram order: clipping can
// reorder cells, and the ownership that matters is "which seed is this cell
// closest to".
//
// On geometry failure (fewer than 2 distinct seeds) every drone keeps a nil
// region, which the allocator treats as unrestricted. That is a recoverable
// condition, not an error.
func (s *Simulation) partition() {
	bound := geometry.SquareBound(s.center, s.cfg.FloodRadius*extentMargin)

	seeds := make([]orb.Point, len(s.drones))
	for i, d := range s.drones {
		seeds[i] = d.seed
	}

	cells, err := geometry.Voronoi(seeds, bound)
	if err != nil {
		for _, d := range s.drones {
			d.region = nil
		}
		s.log.Add(s.tick, "--", "--", "partition", "fallback",
			fmt.Sprintf("unrestricted regions: %v", err), 0)
		return
	}

	for _, cell := range cells {
		if len(cell) == 0 {
			continue
		}
		centroid := geometry.Centroid(cell)
		owner := s.drones[0]
		best := geometry.Distance(centroid, owner.seed)
		for _, d := range s.drones[1:] {
			if dist := geometry.Distance(centroid, d.seed); dist < best {
				best = dist
				owner = d
			}
		}
		owner.region = cell
		s.render.RegionAssigned(owner.id, cell)
		s.log.Add(s.tick, owner.label, owner.team, "partition", "region_assigned",
			fmt.Sprintf("cell centroid %.0fm from seed", best), best)
	}
}
