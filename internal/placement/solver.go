// Package placement turns a user pose and a place into the transform and
// scale of the place's marker in the AR scene.
package placement

import (
	"math"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/place"
)

// Alignment says how the host session orients its world frame.
type Alignment string

const (
	// AlignGravityAndHeading: -Z points to true north, so no locator is
	// needed.
	AlignGravityAndHeading Alignment = "gravity_and_heading"
	// AlignGravity: only Y is fixed; the user's compass heading rotates the
	// placement into the device frame.
	AlignGravity Alignment = "gravity"
)

type Config struct {
	ScaleNumerator float64
	MinScale       float64
	MaxScale       float64
	MinDistance    float64
	Alignment      Alignment
}

func DefaultConfig() Config {
	return Config{
		ScaleNumerator: 1000,
		MinScale:       1.5,
		MaxScale:       3,
		MinDistance:    0.01,
		Alignment:      AlignGravityAndHeading,
	}
}

// Solution is everything the scene needs to position one marker.
type Solution struct {
	Bearing     float64      // radians
	Distance    float64      // meters, after clamping
	Placement   geomath.Mat4 // world placement: locator · rotation · translation
	Orientation geomath.Mat4 // local facing, derived from the node's original transform
	Transform   geomath.Mat4 // orientation with placement's position
	Scale       geomath.Vec3
}

type Solver struct {
	cfg Config
}

func NewSolver(cfg Config) *Solver {
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = DefaultConfig().MinDistance
	}
	if cfg.Alignment == "" {
		cfg.Alignment = AlignGravityAndHeading
	}
	return &Solver{cfg: cfg}
}

// Solve computes the marker transform for p seen from pose at the given
// distance. original is the node transform captured when the node was
// created.
func (s *Solver) Solve(pose place.UserPose, p place.Place, distance float64, original geomath.Mat4) Solution {
	d := s.clampDistance(distance)

	bearing := geomath.Bearing(pose.Location(), p.Location())
	rotation := geomath.RotationAroundVertical(bearing)
	translation := geomath.Translation(geomath.Identity(), geomath.Vec3{Z: -d})

	placement := geomath.Compose(s.Locator(pose), geomath.Compose(rotation, translation))
	orientation := s.Orient(original, p.HeadingOffset)

	return Solution{
		Bearing:     bearing,
		Distance:    d,
		Placement:   placement,
		Orientation: orientation,
		Transform:   orientation.WithPosition(placement.Position()),
		Scale:       geomath.Uniform(s.Scale(d)),
	}
}

// Orient yaws original by -(heading-180) degrees around the vertical axis.
func (s *Solver) Orient(original geomath.Mat4, headingDeg float64) geomath.Mat4 {
	angle := -geomath.ToRadians(headingDeg - 180)
	return geomath.Compose(original, geomath.RotationY(angle))
}

// Locator is the base transform placements are composed onto.
func (s *Solver) Locator(pose place.UserPose) geomath.Mat4 {
	if s.cfg.Alignment == AlignGravity && pose.HasHeading {
		return geomath.RotationY(geomath.ToRadians(pose.Heading))
	}
	return geomath.Identity()
}

// Scale returns numerator/distance clamped to [MinScale, MaxScale]. It is
// non-increasing in distance.
func (s *Solver) Scale(distance float64) float64 {
	d := s.clampDistance(distance)
	return math.Max(s.cfg.MinScale, math.Min(s.cfg.ScaleNumerator/d, s.cfg.MaxScale))
}

func (s *Solver) clampDistance(d float64) float64 {
	if math.IsNaN(d) || d < s.cfg.MinDistance {
		return s.cfg.MinDistance
	}
	return d
}
