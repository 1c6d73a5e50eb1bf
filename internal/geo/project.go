// Package geo provides the equal-area projection and buffering primitives
// shared by the industrial filter and the risk buffer generator.
//
// Distance-true buffering over a continental extent needs a planar
// equal-area coordinate system; geographic degrees won't do. The projection
// here is an Albers equal-area conic with the standard CONUS parameters
// (the same parameter set as EPSG:5070), in spherical form. The spherical
// approximation shifts positions by well under the smallest buffer radius
// used anywhere in the pipeline and preserves the equal-area property
// exactly.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadiusM = 6378137.0

	// Albers CONUS parameters: standard parallels, latitude/longitude of origin.
	phi1Deg    = 29.5
	phi2Deg    = 45.5
	phi0Deg    = 23.0
	lambda0Deg = -96.0

	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Precomputed cone constants (Snyder, Map Projections: A Working Manual, eq. 14-3..14-6).
var (
	albersN    = (math.Sin(phi1Deg*deg2rad) + math.Sin(phi2Deg*deg2rad)) / 2
	albersC    = math.Pow(math.Cos(phi1Deg*deg2rad), 2) + 2*albersN*math.Sin(phi1Deg*deg2rad)
	albersRho0 = earthRadiusM / albersN * math.Sqrt(albersC-2*albersN*math.Sin(phi0Deg*deg2rad))
)

// ToPlane projects a WGS84 lon/lat point to the equal-area plane, in meters.
var ToPlane orb.Projection = func(p orb.Point) orb.Point {
	phi := p[1] * deg2rad
	theta := albersN * (p[0] - lambda0Deg) * deg2rad

	rho := earthRadiusM / albersN * math.Sqrt(albersC-2*albersN*math.Sin(phi))

	x := rho * math.Sin(theta)
	y := albersRho0 - rho*math.Cos(theta)
	return orb.Point{x, y}
}

// ToWGS84 is the inverse of ToPlane.
var ToWGS84 orb.Projection = func(p orb.Point) orb.Point {
	x, y := p[0], p[1]

	rho := math.Hypot(x, albersRho0-y)
	theta := math.Atan2(x, albersRho0-y)

	sinPhi := (albersC - math.Pow(rho*albersN/earthRadiusM, 2)) / (2 * albersN)
	phi := math.Asin(sinPhi)
	lambda := lambda0Deg + theta/albersN*rad2deg

	return orb.Point{lambda, phi * rad2deg}
}
