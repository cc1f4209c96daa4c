package geometry

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// ErrTooFewSites is returned by Voronoi when fewer than two distinct sites
// are supplied. Callers treat this as recoverable: the partition simply does
// not exist and every agent keeps an unrestricted region.
var ErrTooFewSites = errors.New("geometry: voronoi needs at least 2 distinct sites")

// distinctEpsilon is the local-frame distance in meters under which two
// sites are considered the same point.
const distinctEpsilon = 0.5

// Voronoi partitions bound among the given sites. Cell i of the result is
// the convex polygon of points inside bound that are at least as close to
// site i as to any other site. Cells cover the bound and are disjoint except
// on shared boundaries.
//
// The computation runs in a local equirectangular meter frame around the
// bound centre: each cell starts as the bound rectangle and is clipped
// against the perpendicular-bisector half-plane of every other site. With
// the agent counts this engine allows (≤10 sites) the quadratic cost is
// irrelevant next to a Fortune sweep.
func Voronoi(sites []orb.Point, bound orb.Bound) ([]orb.Polygon, error) {
	pr := newProjection(bound.Center())

	local := make([][2]float64, len(sites))
	for i, s := range sites {
		local[i] = pr.toLocal(s)
	}
	if !hasDistinctPair(local) {
		return nil, ErrTooFewSites
	}

	min := pr.toLocal(bound.Min)
	max := pr.toLocal(bound.Max)
	rect := [][2]float64{
		{min[0], min[1]},
		{max[0], min[1]},
		{max[0], max[1]},
		{min[0], max[1]},
	}

	cells := make([]orb.Polygon, len(sites))
	for i := range sites {
		cell := rect
		for j := range sites {
			if j == i || len(cell) == 0 {
				continue
			}
			cell = clipHalfPlane(cell, local[i], local[j])
		}
		cells[i] = closeRing(cell, pr)
	}
	return cells, nil
}

func hasDistinctPair(pts [][2]float64) bool {
	if len(pts) < 2 {
		return false
	}
	for i := 1; i < len(pts); i++ {
		dx := pts[i][0] - pts[0][0]
		dy := pts[i][1] - pts[0][1]
		if math.Hypot(dx, dy) > distinctEpsilon {
			return true
		}
	}
	return false
}

// clipHalfPlane clips the convex polygon poly to the half-plane of points
// closer to a than to b (Sutherland–Hodgman against the perpendicular
// bisector of a and b).
func clipHalfPlane(poly [][2]float64, a, b [2]float64) [][2]float64 {
	// Half-plane: n·p <= c where n = b-a and c = n·midpoint(a,b).
	nx := b[0] - a[0]
	ny := b[1] - a[1]
	c := nx*(a[0]+b[0])/2 + ny*(a[1]+b[1])/2

	inside := func(p [2]float64) bool {
		return nx*p[0]+ny*p[1] <= c
	}
	intersect := func(p, q [2]float64) [2]float64 {
		dp := nx*p[0] + ny*p[1] - c
		dq := nx*q[0] + ny*q[1] - c
		t := dp / (dp - dq)
		return [2]float64{p[0] + t*(q[0]-p[0]), p[1] + t*(q[1]-p[1])}
	}

	var out [][2]float64
	for i := range poly {
		cur := poly[i]
		prev := poly[(i+len(poly)-1)%len(poly)]
		switch {
		case inside(cur) && inside(prev):
			out = append(out, cur)
		case inside(cur):
			out = append(out, intersect(prev, cur), cur)
		case inside(prev):
			out = append(out, intersect(prev, cur))
		}
	}
	return out
}

// closeRing converts a local-frame convex ring back to a closed geographic
// polygon. Degenerate rings (fewer than 3 vertices after clipping) yield an
// empty polygon.
func closeRing(cell [][2]float64, pr projection) orb.Polygon {
	if len(cell) < 3 {
		return orb.Polygon{}
	}
	ring := make(orb.Ring, 0, len(cell)+1)
	for _, v := range cell {
		ring = append(ring, pr.fromLocal(v[0], v[1]))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
