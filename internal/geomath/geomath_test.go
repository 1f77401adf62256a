package geomath

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

var approx = cmpopts.EquateApprox(0, tolerance)

func TestAngleRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 1, -1, math.Pi, -math.Pi / 3, 1e-12, 12345.678, -98765.4321} {
		assert.InDelta(t, x, ToRadians(ToDegrees(x)), 1e-9*math.Max(1, math.Abs(x)))
		assert.InDelta(t, x, ToDegrees(ToRadians(x)), 1e-9*math.Max(1, math.Abs(x)))
	}
	assert.InDelta(t, math.Pi, ToRadians(180), tolerance)
	assert.InDelta(t, 180.0, ToDegrees(math.Pi), tolerance)
}

func TestAnglePropagatesNaN(t *testing.T) {
	assert.True(t, math.IsNaN(ToRadians(math.NaN())))
	assert.True(t, math.IsInf(ToDegrees(math.Inf(1)), 1))
}

func TestBearing(t *testing.T) {
	origin := Coordinate{Latitude: 0, Longitude: 0}

	tests := []struct {
		name   string
		target Coordinate
		want   float64
	}{
		{"north", Coordinate{1, 0}, 0},
		{"east", Coordinate{0, 1}, math.Pi / 2},
		{"south", Coordinate{-1, 0}, math.Pi},
		{"west", Coordinate{0, -1}, -math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(origin, tt.target), tolerance)
		})
	}
}

func TestBearingSamePointIsZero(t *testing.T) {
	for _, p := range []Coordinate{
		{0, 0},
		{11.0530, 76.9910},
		{90, 0},
		{-90, 45},
		{45, 180},
	} {
		b := Bearing(p, p)
		assert.False(t, math.IsNaN(b))
		assert.Equal(t, 0.0, b, "bearing(%v, %v)", p, p)
	}
}

func TestBearingRange(t *testing.T) {
	origin := Coordinate{11.0530, 76.9910}
	for lat := -80.0; lat <= 80; lat += 7.3 {
		for lon := -179.0; lon <= 180; lon += 11.1 {
			b := Bearing(origin, Coordinate{lat, lon})
			assert.Greater(t, b, -math.Pi)
			assert.LessOrEqual(t, b, math.Pi)
		}
	}
}

func TestDistanceMatchesHaversineAtShortRange(t *testing.T) {
	user := Coordinate{11.0530, 76.9910}
	place := Coordinate{11.053791, 76.990920}

	d := Distance(user, place)
	assert.InDelta(t, 88.4, d, 0.5)
	assert.InDelta(t, HaversineDistance(user, place), d, 1e-6)
	assert.Equal(t, d, Distance(place, user))
	assert.Equal(t, 0.0, Distance(user, user))
}

func TestRotationAroundVerticalIsInverse(t *testing.T) {
	for _, a := range []float64{0, 0.3, math.Pi / 2, -2.5, math.Pi} {
		got := RotationAroundVertical(a)
		if diff := cmp.Diff(RotationY(-a), got, approx); diff != "" {
			t.Errorf("angle %v (-want +got):\n%s", a, diff)
		}
		if diff := cmp.Diff(Identity(), Compose(RotationY(a), got), approx); diff != "" {
			t.Errorf("R·R⁻¹ != I for %v:\n%s", a, diff)
		}
	}
}

func TestTranslation(t *testing.T) {
	base := RotationY(0.7)
	m := Translation(base, Vec3{1, 2, -3})

	assert.Equal(t, Vec3{1, 2, -3}, m.Position())
	for _, i := range []int{0, 1, 2, 4, 5, 6, 8, 9, 10, 12, 13, 14, 15} {
		assert.Equal(t, base[i], m[i], "element %d", i)
	}
	assert.Equal(t, Vec3{1, 2, -3}, m.Apply(Vec3{}))
}

func TestComposeOrderMatters(t *testing.T) {
	r := RotationY(math.Pi / 2)
	tr := Translation(Identity(), Vec3{0, 0, -10})

	rt := Compose(r, tr)
	tr2 := Compose(tr, r)

	// rotate after translating: (0,0,-10) turned a quarter around Y
	if diff := cmp.Diff(Vec3{-10, 0, 0}, rt.Position(), approx); diff != "" {
		t.Errorf("r·t position:\n%s", diff)
	}
	if diff := cmp.Diff(Vec3{0, 0, -10}, tr2.Position(), approx); diff != "" {
		t.Errorf("t·r position:\n%s", diff)
	}
	assert.NotEqual(t, rt, tr2)
}

func TestComposeIdentity(t *testing.T) {
	m := Translation(RotationY(1.1), Vec3{4, 5, 6})
	assert.Equal(t, m, Compose(Identity(), m))
	assert.Equal(t, m, Compose(m, Identity()))
}

func TestInverseSingular(t *testing.T) {
	_, err := Inverse(Mat4{})
	require.Error(t, err)
}

func TestMat4Helpers(t *testing.T) {
	m := Translation(Identity(), Vec3{1, 2, 3})
	assert.Equal(t, 3.0, m.At(2, 3))
	assert.Equal(t, m, m.Transpose().Transpose())
	assert.True(t, m.IsFinite())

	m[0] = math.NaN()
	assert.False(t, m.IsFinite())

	half := Identity().Lerp(Translation(Identity(), Vec3{2, 0, 0}), 0.5)
	assert.Equal(t, Vec3{1, 0, 0}, half.Position())
}

func TestVec3(t *testing.T) {
	v := NewVec3(3, 4, 0)
	assert.Equal(t, 5.0, v.Norm())
	assert.Equal(t, Vec3{6, 8, 0}, v.Mul(2))
	assert.Equal(t, Vec3{3, 8, 0}, v.Hadamard(Vec3{1, 2, 3}))
	assert.Equal(t, Uniform(2), Vec3{2, 2, 2})
	assert.Equal(t, Vec3{1.5, 2, 0}, Vec3{}.Lerp(v, 0.5))
}
