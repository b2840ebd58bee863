package collision

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/geom"
)

// Resolution is the minimum translation separating two shapes.
type Resolution struct {
	// Direction is a unit vector pointing from the remote shape toward the
	// local one.
	Direction   cp.Vector
	Penetration float64
	// Contact is the deepest vertex of the shape that did not supply the
	// winning axis.
	Contact cp.Vector
}

// Reversed returns the resolution seen from the other shape.
func (r Resolution) Reversed() Resolution {
	return Resolution{Direction: r.Direction.Neg(), Penetration: r.Penetration, Contact: r.Contact}
}

// Resolve runs the separating axis test between a and b. Their bounding boxes
// should already overlap. ok is false when the shapes are disjoint or only
// touching.
func Resolve(a, b *geom.Shape) (res Resolution, ok bool, err error) {
	if a == nil || b == nil {
		return Resolution{}, false, geom.ErrNoVertices
	}
	axesA, err := geom.Axes(a, b)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("collision: axes of shape %d: %w", a.ID, err)
	}
	axesB, err := geom.Axes(b, a)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("collision: axes of shape %d: %w", b.ID, err)
	}

	axes := make([]cp.Vector, 0, len(axesA)+len(axesB))
	axes = append(axes, axesA...)
	axes = append(axes, axesB...)

	var (
		found       bool
		minOverlap  float64
		bestAxis    cp.Vector
		vertexShape *geom.Shape
	)

	for i, axis := range axes {
		pa, err := geom.Project(axis, a)
		if err != nil {
			return Resolution{}, false, err
		}
		pb, err := geom.Project(axis, b)
		if err != nil {
			return Resolution{}, false, err
		}

		overlap := math.Min(pa.Max, pb.Max) - math.Max(pa.Min, pb.Min)
		if overlap < 0 {
			return Resolution{}, false, nil
		}

		// One interval nested in the other: push out through the nearer end.
		if (pa.Max > pb.Max && pa.Min < pb.Min) || (pa.Max < pb.Max && pa.Min > pb.Min) {
			mins := math.Abs(pa.Min - pb.Min)
			maxs := math.Abs(pa.Max - pb.Max)
			if mins < maxs {
				overlap += mins
			} else {
				overlap += maxs
				axis = axis.Neg()
			}
		}

		if found && overlap >= minOverlap {
			continue
		}
		found = true
		minOverlap = overlap
		bestAxis = axis
		if i < len(axesA) {
			vertexShape = b
			if pa.Max > pb.Max {
				bestAxis = axis.Neg()
			}
		} else {
			vertexShape = a
			if pa.Max < pb.Max {
				bestAxis = axis.Neg()
			}
		}
	}

	if !found || minOverlap <= 0 {
		return Resolution{}, false, nil
	}

	contact, err := geom.Project(bestAxis, vertexShape)
	if err != nil {
		return Resolution{}, false, err
	}
	if vertexShape == b {
		bestAxis = bestAxis.Neg()
	}

	return Resolution{
		Direction:   geom.Unit(bestAxis),
		Penetration: minOverlap,
		Contact:     contact.Vertex,
	}, true, nil
}
