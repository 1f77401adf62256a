package geomath

import "math"

// EarthRadiusMeters is the mean radius of the spherical Earth model.
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS84-like latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bearing returns the forward azimuth from origin to target on a spherical
// Earth, in radians in (-π, π]. 0 points north, π/2 east. Bearing(p, p) is 0,
// the poles included.
func Bearing(origin, target Coordinate) float64 {
	lat1 := ToRadians(origin.Latitude)
	lon1 := ToRadians(origin.Longitude)
	lat2 := ToRadians(target.Latitude)
	lon2 := ToRadians(target.Longitude)

	deltaLon := lon2 - lon1

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	b := math.Atan2(y, x)
	if b <= -math.Pi {
		b = math.Pi
	}
	return b
}

// Distance returns the straight-line distance in meters between two
// coordinates, measured through their Earth-centred 3D positions rather than
// along the great circle. At AR ranges the two agree to well under a
// millimeter.
func Distance(a, b Coordinate) float64 {
	return earthCentred(a).Sub(earthCentred(b)).Norm()
}

// HaversineDistance calculates the great-circle distance between two points
// in meters.
func HaversineDistance(a, b Coordinate) float64 {
	lat1Rad := ToRadians(a.Latitude)
	lat2Rad := ToRadians(b.Latitude)
	deltaLat := ToRadians(b.Latitude - a.Latitude)
	deltaLon := ToRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

func earthCentred(c Coordinate) Vec3 {
	lat := ToRadians(c.Latitude)
	lon := ToRadians(c.Longitude)
	cosLat := math.Cos(lat)
	return Vec3{
		X: EarthRadiusMeters * cosLat * math.Cos(lon),
		Y: EarthRadiusMeters * cosLat * math.Sin(lon),
		Z: EarthRadiusMeters * math.Sin(lat),
	}
}
