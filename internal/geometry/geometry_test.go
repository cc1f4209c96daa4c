package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var odense = orb.Point{10.3883, 55.3959}

func TestDestinationDistanceRoundTrip(t *testing.T) {
	for _, bearing := range []float64{0, 45, 90, 135, 180, 270} {
		for _, meters := range []float64{10, 250, 800, 2500} {
			p := Destination(odense, bearing, meters)
			got := Distance(odense, p)
			if math.Abs(got-meters) > meters*0.01+0.1 {
				t.Errorf("bearing %.0f dist %.0f: round-trip distance %.2f", bearing, meters, got)
			}
		}
	}
}

func TestDestinationBearingDirection(t *testing.T) {
	north := Destination(odense, 0, 500)
	if north.Lat() <= odense.Lat() {
		t.Errorf("bearing 0 should increase latitude: %.6f -> %.6f", odense.Lat(), north.Lat())
	}
	east := Destination(odense, 90, 500)
	if east.Lon() <= odense.Lon() {
		t.Errorf("bearing 90 should increase longitude: %.6f -> %.6f", odense.Lon(), east.Lon())
	}
}

func TestPointInPolygonSquare(t *testing.T) {
	b := SquareBound(odense, 1000)
	poly := orb.Polygon{orb.Ring{
		b.Min,
		{b.Max.Lon(), b.Min.Lat()},
		b.Max,
		{b.Min.Lon(), b.Max.Lat()},
		b.Min,
	}}

	if !PointInPolygon(odense, poly) {
		t.Error("centre should be inside the square")
	}
	outside := Destination(odense, 90, 5000)
	if PointInPolygon(outside, poly) {
		t.Error("point 5km east should be outside a 1km half-size square")
	}
}

func TestSquareBoundContainsCenter(t *testing.T) {
	b := SquareBound(odense, 1200)
	if !b.Contains(odense) {
		t.Error("bound should contain its own centre")
	}
	// Half-size holds along both axes to within projection error.
	w := Distance(orb.Point{b.Min.Lon(), odense.Lat()}, orb.Point{b.Max.Lon(), odense.Lat()})
	if math.Abs(w-2400) > 50 {
		t.Errorf("bound width %.1fm, want ~2400m", w)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	pr := newProjection(odense)
	for _, bearing := range []float64{15, 100, 200, 340} {
		p := Destination(odense, bearing, 900)
		l := pr.toLocal(p)
		back := pr.fromLocal(l[0], l[1])
		if Distance(p, back) > 1.0 {
			t.Errorf("projection round trip moved point %.2fm", Distance(p, back))
		}
	}
}
