package place

import "github.com/askwhyharsh/arlocations/internal/geomath"

// Place is a named point of interest. It is immutable: the distance to the
// user is tracked by the scene, keyed by ID.
type Place struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	HeadingOffset float64 `json:"heading_offset"` // degrees
}

// Location returns the place's coordinate.
func (p Place) Location() geomath.Coordinate {
	return geomath.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// UserPose is a snapshot of the device position reported by the location
// service. Heading is only meaningful when HasHeading is set.
type UserPose struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Heading    float64 `json:"heading,omitempty"` // degrees from true north
	HasHeading bool    `json:"has_heading"`
}

// Location returns the user's coordinate.
func (u UserPose) Location() geomath.Coordinate {
	return geomath.Coordinate{Latitude: u.Latitude, Longitude: u.Longitude}
}

// DefaultPlaces is the built-in place list.
func DefaultPlaces() []Place {
	return []Place{
		{ID: 1, Name: "L", Latitude: 11.053791, Longitude: 76.990920},
		{ID: 2, Name: "R", Latitude: 11.051854, Longitude: 76.991360},
		{ID: 3, Name: "F", Latitude: 11.052917, Longitude: 76.990507},
		{ID: 4, Name: "B", Latitude: 11.053418, Longitude: 76.992725},
	}
}
