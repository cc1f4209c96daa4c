// Package geometry provides the pure geographic primitives the swarm engine
// is built on: destination points, distances, point-in-polygon tests and a
// bounded Voronoi partition. All functions are stateless and deterministic
// for identical numeric inputs; randomness lives in the callers.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// earthRadius is the WGS84 equatorial radius in meters, matching orb/geo.
const earthRadius = 6378137.0

// Destination returns the point reached by travelling the given distance in
// meters from origin along the given bearing in degrees (0 = north,
// clockwise).
func Destination(origin orb.Point, bearingDeg, meters float64) orb.Point {
	return geo.PointAtBearingAndDistance(origin, bearingDeg, meters)
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// Bearing returns the initial bearing in degrees from a toward b.
func Bearing(a, b orb.Point) float64 {
	return geo.Bearing(a, b)
}

// PointInPolygon reports whether p lies inside poly (boundary counts as
// inside). Polygons here are small relative to the globe, so the planar test
// is sufficient.
func PointInPolygon(p orb.Point, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	return planar.PolygonContains(poly, p)
}

// Centroid returns the area centroid of poly.
func Centroid(poly orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(poly)
	return c
}

// SquareBound returns a square bounding extent centred on center whose half
// side length is halfSize meters.
func SquareBound(center orb.Point, halfSize float64) orb.Bound {
	ne := Destination(Destination(center, 0, halfSize), 90, halfSize)
	sw := Destination(Destination(center, 180, halfSize), 270, halfSize)
	return orb.Bound{Min: sw, Max: ne}
}

// projection is a local equirectangular frame used for planar computations
// (Voronoi clipping) on extents small enough that the distortion is
// negligible. x is meters east of the origin, y meters north.
type projection struct {
	origin orb.Point
	cosLat float64
}

func newProjection(origin orb.Point) projection {
	return projection{
		origin: origin,
		cosLat: math.Cos(origin.Lat() * math.Pi / 180),
	}
}

func (pr projection) toLocal(p orb.Point) [2]float64 {
	x := (p.Lon() - pr.origin.Lon()) * math.Pi / 180 * earthRadius * pr.cosLat
	y := (p.Lat() - pr.origin.Lat()) * math.Pi / 180 * earthRadius
	return [2]float64{x, y}
}

func (pr projection) fromLocal(x, y float64) orb.Point {
	lon := pr.origin.Lon() + x/(earthRadius*pr.cosLat)*180/math.Pi
	lat := pr.origin.Lat() + y/earthRadius*180/math.Pi
	return orb.Point{lon, lat}
}

// Projection is the exported local frame, used by render surfaces to turn
// geographic positions into meter offsets from a map origin.
type Projection struct {
	pr projection
}

// NewProjection builds a local frame centred on origin.
func NewProjection(origin orb.Point) Projection {
	return Projection{pr: newProjection(origin)}
}

// ToLocal returns p as meters east and north of the origin.
func (p Projection) ToLocal(pt orb.Point) (x, y float64) {
	l := p.pr.toLocal(pt)
	return l[0], l[1]
}

// FromLocal is the inverse of ToLocal.
func (p Projection) FromLocal(x, y float64) orb.Point {
	return p.pr.fromLocal(x, y)
}
