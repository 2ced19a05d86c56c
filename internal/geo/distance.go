package geo

import "gonum.org/v1/gonum/spatial/r3"

// Vec returns the ECEF point as a gonum vector.
func (e EcefPoint) Vec() r3.Vec {
	return r3.Vec{X: e.X, Y: e.Y, Z: e.Z}
}

// ChordDistance is the straight-line ECEF distance in meters between two
// geodetic points.
func ChordDistance(a, b GeodeticPoint) float64 {
	return r3.Norm(r3.Sub(WGS84ToECEF(a).Vec(), WGS84ToECEF(b).Vec()))
}
