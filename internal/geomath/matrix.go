package geomath

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat4 is a 4x4 transform stored row-major: m00,m01,m02,m03, m10,...
// Points are column vectors, so the translation lives in elements 3, 7 and 11.
type Mat4 [16]float64

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float64 { return m[r*4+c] }

// Position returns the translation column.
func (m Mat4) Position() Vec3 { return Vec3{m[3], m[7], m[11]} }

// WithPosition returns m with its translation column replaced by p.
func (m Mat4) WithPosition(p Vec3) Mat4 { return Translation(m, p) }

// Apply transforms point p (w=1) by m.
func (m Mat4) Apply(p Vec3) Vec3 {
	return Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// Lerp blends every element of m toward o by fraction t.
func (m Mat4) Lerp(o Mat4, t float64) Mat4 {
	var out Mat4
	for i := range m {
		out[i] = m[i] + (o[i]-m[i])*t
	}
	return out
}

// IsFinite reports whether no element is NaN or infinite.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Translation returns base with its translation column set to v. The
// rotation part of base is left untouched.
func Translation(base Mat4, v Vec3) Mat4 {
	base[3] = v.X
	base[7] = v.Y
	base[11] = v.Z
	return base
}

// RotationY returns a rotation of angle radians around the vertical (Y) axis.
func RotationY(angle float64) Mat4 {
	sin, cos := math.Sincos(angle)
	return Mat4{
		cos, 0, sin, 0,
		0, 1, 0, 0,
		-sin, 0, cos, 0,
		0, 0, 0, 1,
	}
}

// RotationAroundVertical builds the vertical-axis rotation for angle on the
// identity and returns its inverse, i.e. RotationY(-angle). Placement
// composition is written against this inverted form.
func RotationAroundVertical(angle float64) Mat4 {
	r := RotationY(angle)
	inv, err := Inverse(r)
	if err != nil {
		// orthonormal: transpose is the inverse
		return r.Transpose()
	}
	return Compose(inv, Identity())
}

// Compose returns a·b. Order matters: b is applied first.
func Compose(a, b Mat4) Mat4 {
	var c mat.Dense
	c.Mul(a.dense(), b.dense())
	return fromDense(&c)
}

// Inverse returns the inverse of m, or an error when m is singular or too
// ill-conditioned to invert reliably.
func Inverse(m Mat4) (Mat4, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Mat4{}, err
	}
	return fromDense(&inv), nil
}

func (m Mat4) dense() *mat.Dense {
	data := make([]float64, 16)
	copy(data, m[:])
	return mat.NewDense(4, 4, data)
}

func fromDense(d mat.Matrix) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = d.At(r, c)
		}
	}
	return m
}
