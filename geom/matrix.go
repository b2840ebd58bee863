package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Matrix2 is a row-major 2x2 matrix.
type Matrix2 struct {
	A, B float64
	C, D float64
}

func Identity() Matrix2 {
	return Matrix2{A: 1, D: 1}
}

// Rotation returns the counter-clockwise rotation matrix for angle radians.
func Rotation(angle float64) Matrix2 {
	s, c := math.Sincos(angle)
	return Matrix2{A: c, B: -s, C: s, D: c}
}

func (m Matrix2) MulVector(v cp.Vector) cp.Vector {
	return cp.Vector{X: m.A*v.X + m.B*v.Y, Y: m.C*v.X + m.D*v.Y}
}

func (m Matrix2) Mul(o Matrix2) Matrix2 {
	return Matrix2{
		A: m.A*o.A + m.B*o.C,
		B: m.A*o.B + m.B*o.D,
		C: m.C*o.A + m.D*o.C,
		D: m.C*o.B + m.D*o.D,
	}
}
