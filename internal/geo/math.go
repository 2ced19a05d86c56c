package geo

import (
	"errors"
	"fmt"
	"math"
)

// WGS84 reference ellipsoid.
const (
	SemiMajorAxis       = 6378137.0
	EccentricitySquared = 0.00669437999014
)

const (
	ecefMaxIterations   = 10
	ecefLatitudeEpsilon = 1e-12
	degreesPerRadian    = 180.0 / math.Pi
	radiansPerDegree    = math.Pi / 180.0
)

// SemiMinorAxis is the polar radius b = a·sqrt(1 - e²).
var SemiMinorAxis = SemiMajorAxis * math.Sqrt(1-EccentricitySquared)

// ErrNonFinite is returned when a coordinate component is NaN or infinite.
var ErrNonFinite = errors.New("non-finite coordinate")

// ErrOutOfRange is returned when latitude or longitude leave their domain.
var ErrOutOfRange = errors.New("coordinate out of range")

// GeodeticPoint is a WGS84 position: degrees and meters above the ellipsoid.
type GeodeticPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Altitude  float64 `json:"altitude" yaml:"altitude"`
}

// EcefPoint is an Earth-Centered-Earth-Fixed position in meters.
type EcefPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Validate checks that all components are finite and that latitude and
// longitude stay within [-90, 90] and [-180, 180].
func (p GeodeticPoint) Validate() error {
	if !IsFinite(p.Latitude, p.Longitude, p.Altitude) {
		return ErrNonFinite
	}
	if math.Abs(p.Latitude) > 90 {
		return fmt.Errorf("%w: latitude %g", ErrOutOfRange, p.Latitude)
	}
	if math.Abs(p.Longitude) > 180 {
		return fmt.Errorf("%w: longitude %g", ErrOutOfRange, p.Longitude)
	}
	return nil
}

// Validate checks that all components are finite.
func (p EcefPoint) Validate() error {
	if !IsFinite(p.X, p.Y, p.Z) {
		return ErrNonFinite
	}
	return nil
}

// IsFinite reports whether none of the values is NaN or infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * radiansPerDegree }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * degreesPerRadian }

// primeVerticalRadius is the ellipsoid radius of curvature in the prime
// vertical at the given geodetic latitude (radians).
func primeVerticalRadius(sinLat float64) float64 {
	return SemiMajorAxis / math.Sqrt(1-EccentricitySquared*sinLat*sinLat)
}

// WGS84ToECEF converts a geodetic point to ECEF using the closed-form
// ellipsoidal formula. It is defined for every finite input.
func WGS84ToECEF(p GeodeticPoint) EcefPoint {
	lat := Radians(p.Latitude)
	lon := Radians(p.Longitude)

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := primeVerticalRadius(sinLat)

	return EcefPoint{
		X: (n + p.Altitude) * cosLat * cosLon,
		Y: (n + p.Altitude) * cosLat * sinLon,
		Z: (n*(1-EccentricitySquared) + p.Altitude) * sinLat,
	}
}

// ECEFToWGS84 converts an ECEF position back to geodetic coordinates.
//
// Longitude comes straight from atan2(y, x). Latitude is refined by the
// fixed-point iteration tan(lat) = (z + e²·N·sin(lat)) / p until the update
// drops below 1e-12 rad, bounded by ecefMaxIterations. Altitude uses the
// projection form p·cos(lat) + z·sin(lat) - a·sqrt(1 - e²·sin²(lat)), which
// stays well conditioned near the poles.
//
// On the polar axis (x = y = 0) longitude is 0 and latitude is ±90 by the
// sign of z. The Earth's center maps to latitude 0, longitude 0, altitude -a.
func ECEFToWGS84(e EcefPoint) GeodeticPoint {
	p := math.Hypot(e.X, e.Y)

	if p == 0 {
		switch {
		case e.Z > 0:
			return GeodeticPoint{Latitude: 90, Altitude: e.Z - SemiMinorAxis}
		case e.Z < 0:
			return GeodeticPoint{Latitude: -90, Altitude: -e.Z - SemiMinorAxis}
		default:
			return GeodeticPoint{Altitude: -SemiMajorAxis}
		}
	}

	lon := math.Atan2(e.Y, e.X)

	// Start from the geocentric latitude corrected for ellipsoid flattening.
	lat := math.Atan2(e.Z, p*(1-EccentricitySquared))
	for i := 0; i < ecefMaxIterations; i++ {
		sinLat := math.Sin(lat)
		n := primeVerticalRadius(sinLat)
		next := math.Atan2(e.Z+EccentricitySquared*n*sinLat, p)
		delta := math.Abs(next - lat)
		lat = next
		if delta < ecefLatitudeEpsilon {
			break
		}
	}

	sinLat, cosLat := math.Sincos(lat)
	alt := p*cosLat + e.Z*sinLat - SemiMajorAxis*math.Sqrt(1-EccentricitySquared*sinLat*sinLat)

	return GeodeticPoint{
		Latitude:  Degrees(lat),
		Longitude: Degrees(lon),
		Altitude:  alt,
	}
}
