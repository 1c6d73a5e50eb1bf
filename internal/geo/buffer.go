package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// circleSegments is the number of edges used to approximate a circular
// buffer. 64 keeps the inscribed-polygon shortfall below 0.13% of the
// radius, far inside sensor pixel drift.
const circleSegments = 64

// Circle returns a closed polygon approximating the disc of the given
// radius (meters) around a projected point.
func Circle(center orb.Point, radiusM float64) orb.Polygon {
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		ring = append(ring, orb.Point{
			center[0] + radiusM*math.Cos(angle),
			center[1] + radiusM*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// BufferedUnion projects the given WGS84 points to the equal-area plane and
// buffers each by radiusM. The result is a multipolygon whose point-set
// equals the union of the discs; members may overlap, which containment
// handles correctly.
func BufferedUnion(points []orb.Point, radiusM float64) orb.MultiPolygon {
	union := make(orb.MultiPolygon, 0, len(points))
	for _, p := range points {
		union = append(union, Circle(ToPlane(p), radiusM))
	}
	return union
}

// ContainsProjected reports whether the projected point lies inside the
// buffered union (i.e. inside any member disc).
func ContainsProjected(union orb.MultiPolygon, projected orb.Point) bool {
	return planar.MultiPolygonContains(union, projected)
}

// ToGeographic reprojects any planar geometry back to WGS84 degrees.
func ToGeographic(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), ToWGS84)
}
