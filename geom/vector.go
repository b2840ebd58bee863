package geom

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/common"
)

// Normal returns the left-hand perpendicular of v.
func Normal(v cp.Vector) cp.Vector {
	return v.Perp()
}

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func Unit(v cp.Vector) cp.Vector {
	l := v.Length()
	if l <= common.Epsilon {
		return cp.Vector{}
	}
	return cp.Vector{X: v.X / l, Y: v.Y / l}
}

func IsZero(v cp.Vector) bool {
	return common.NearlyZero(v.X) && common.NearlyZero(v.Y)
}

func NearlyEqual(a, b cp.Vector) bool {
	return common.NearlyEqual(a.X, b.X) && common.NearlyEqual(a.Y, b.Y)
}

// Boundaries returns the bounding box enclosing pts.
func Boundaries(pts []cp.Vector) cp.BB {
	if len(pts) == 0 {
		return cp.BB{}
	}
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, p := range pts {
		bb.L = math.Min(bb.L, p.X)
		bb.B = math.Min(bb.B, p.Y)
		bb.R = math.Max(bb.R, p.X)
		bb.T = math.Max(bb.T, p.Y)
	}
	return bb
}

// Overlaps reports whether two boxes share any area or boundary.
func Overlaps(a, b cp.BB) bool {
	return a.L <= b.R && b.L <= a.R && a.B <= b.T && b.B <= a.T
}

// Grow expands bb by margin on every side.
func Grow(bb cp.BB, margin float64) cp.BB {
	return cp.BB{L: bb.L - margin, B: bb.B - margin, R: bb.R + margin, T: bb.T + margin}
}

// Merge returns the smallest box enclosing a and b.
func Merge(a, b cp.BB) cp.BB {
	return cp.BB{L: math.Min(a.L, b.L), B: math.Min(a.B, b.B), R: math.Max(a.R, b.R), T: math.Max(a.T, b.T)}
}

func Center(bb cp.BB) cp.Vector {
	return cp.Vector{X: (bb.L + bb.R) / 2, Y: (bb.B + bb.T) / 2}
}
