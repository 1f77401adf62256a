package placement

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/place"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestScaleBounds(t *testing.T) {
	s := NewSolver(DefaultConfig())

	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 3},
		{-12, 3},
		{math.NaN(), 3},
		{100, 3},
		{333.3, 3},
		{500, 2},
		{600, 1000.0 / 600},
		{2000, 1.5},
		{1e9, 1.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.Scale(tt.distance), 1e-12, "distance %v", tt.distance)
	}
}

// A clamp written as max(min(x, lower), upper) always yields the upper
// bound. Far markers must shrink to the lower bound instead.
func TestScaleUsesLowerBoundForFarMarkers(t *testing.T) {
	s := NewSolver(DefaultConfig())
	assert.Equal(t, 1.5, s.Scale(2000))
	assert.NotEqual(t, s.Scale(100), s.Scale(2000))
}

func TestScaleMonotonicNonIncreasing(t *testing.T) {
	s := NewSolver(DefaultConfig())

	prev := math.Inf(1)
	for d := 0.001; d < 20000; d *= 1.07 {
		got := s.Scale(d)
		assert.LessOrEqual(t, got, prev, "distance %v", d)
		assert.GreaterOrEqual(t, got, 1.5)
		assert.LessOrEqual(t, got, 3.0)
		prev = got
	}
}

func TestSolvePlacesAlongBearing(t *testing.T) {
	s := NewSolver(DefaultConfig())
	user := place.UserPose{Latitude: 0, Longitude: 0}

	tests := []struct {
		name   string
		target place.Place
		want   geomath.Vec3
	}{
		{"north", place.Place{ID: 1, Name: "N", Latitude: 0.001}, geomath.Vec3{Z: -100}},
		{"east", place.Place{ID: 2, Name: "E", Longitude: 0.001}, geomath.Vec3{X: 100}},
		{"south", place.Place{ID: 3, Name: "S", Latitude: -0.001}, geomath.Vec3{Z: 100}},
		{"west", place.Place{ID: 4, Name: "W", Longitude: -0.001}, geomath.Vec3{X: -100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := s.Solve(user, tt.target, 100, geomath.Identity())
			if diff := cmp.Diff(tt.want, sol.Placement.Position(), approx); diff != "" {
				t.Errorf("placement position (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, sol.Transform.Position(), approx); diff != "" {
				t.Errorf("transform position (-want +got):\n%s", diff)
			}
			assert.Equal(t, geomath.Uniform(3), sol.Scale)
		})
	}
}

func TestSolveOrientationFromHeadingOffset(t *testing.T) {
	s := NewSolver(DefaultConfig())
	user := place.UserPose{}

	sol := s.Solve(user, place.Place{ID: 1, Name: "N", Latitude: 0.001}, 50, geomath.Identity())
	want := geomath.RotationY(math.Pi)
	if diff := cmp.Diff(want, sol.Orientation, approx); diff != "" {
		t.Errorf("orientation (-want +got):\n%s", diff)
	}

	sol = s.Solve(user, place.Place{ID: 1, Name: "N", Latitude: 0.001, HeadingOffset: 90}, 50, geomath.Identity())
	want = geomath.RotationY(math.Pi / 2)
	if diff := cmp.Diff(want, sol.Orientation, approx); diff != "" {
		t.Errorf("orientation with offset (-want +got):\n%s", diff)
	}

	// rotation part comes from orientation, translation from placement
	for _, i := range []int{0, 1, 2, 4, 5, 6, 8, 9, 10} {
		assert.Equal(t, sol.Orientation[i], sol.Transform[i])
	}
}

func TestSolveOrientationKeepsOriginal(t *testing.T) {
	s := NewSolver(DefaultConfig())
	original := geomath.Translation(geomath.Identity(), geomath.Vec3{Y: 2})

	got := s.Orient(original, 180)
	assert.Equal(t, geomath.Compose(original, geomath.RotationY(0)), got)
}

func TestSolveGravityAlignmentUsesUserHeading(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alignment = AlignGravity
	s := NewSolver(cfg)

	north := place.Place{ID: 1, Name: "N", Latitude: 0.001}

	noHeading := s.Solve(place.UserPose{}, north, 100, geomath.Identity())
	if diff := cmp.Diff(geomath.Vec3{Z: -100}, noHeading.Placement.Position(), approx); diff != "" {
		t.Errorf("without heading (-want +got):\n%s", diff)
	}

	facingEast := place.UserPose{Heading: 90, HasHeading: true}
	sol := s.Solve(facingEast, north, 100, geomath.Identity())
	if diff := cmp.Diff(geomath.Vec3{X: -100}, sol.Placement.Position(), approx); diff != "" {
		t.Errorf("facing east (-want +got):\n%s", diff)
	}
}

func TestSolveClampsDegenerateDistance(t *testing.T) {
	s := NewSolver(DefaultConfig())
	sol := s.Solve(place.UserPose{}, place.Place{ID: 1, Name: "here"}, 0, geomath.Identity())

	assert.Equal(t, 0.01, sol.Distance)
	assert.True(t, sol.Transform.IsFinite())
	assert.Equal(t, geomath.Uniform(3), sol.Scale)
}

func TestSolveIsDeterministic(t *testing.T) {
	s := NewSolver(DefaultConfig())
	user := place.UserPose{Latitude: 11.0530, Longitude: 76.9910}
	p := place.DefaultPlaces()[0]

	a := s.Solve(user, p, 88.4, geomath.Identity())
	b := s.Solve(user, p, 88.4, geomath.Identity())
	assert.Equal(t, a, b)
}
