// Package geomath holds the pure geodesy and 4x4 matrix helpers used to place
// geographic points of interest in an AR scene. Everything here is stateless
// and safe for concurrent use.
package geomath

import "math"

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDegrees converts radians to degrees.
func ToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
