package geom

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Projection is the interval a shape covers along an axis. Vertex is the
// point with the smallest projection.
type Projection struct {
	Min, Max float64
	Vertex   cp.Vector
}

// Axes returns the candidate separating axes contributed by s when tested
// against other. Every returned axis has unit length.
func Axes(s, other *Shape) ([]cp.Vector, error) {
	if s == nil || len(s.Vertices) == 0 {
		return nil, ErrNoVertices
	}
	switch s.Kind {
	case KindBox, KindTileCell, KindEdge:
		return []cp.Vector{Normal(s.Direction), s.Direction}, nil
	case KindPolygon:
		axes := make([]cp.Vector, 0, len(s.Vertices))
		for i, v := range s.Vertices {
			next := s.Vertices[(i+1)%len(s.Vertices)]
			n := Unit(Normal(next.Sub(v)))
			if IsZero(n) {
				continue
			}
			axes = append(axes, n)
		}
		return axes, nil
	case KindBall:
		return []cp.Vector{ballAxis(s, other)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
}

// ballAxis points from the ball centre toward the closest feature of other.
func ballAxis(ball, other *Shape) cp.Vector {
	target := ball.Center
	if other != nil {
		if other.Kind == KindBall {
			target = other.Center
		} else {
			best := math.Inf(1)
			for _, v := range other.Vertices {
				if d := v.Sub(ball.Center).LengthSq(); d < best {
					best = d
					target = v
				}
			}
		}
	}
	axis := Unit(target.Sub(ball.Center))
	if IsZero(axis) {
		return cp.Vector{X: 1, Y: 0}
	}
	return axis
}

// Project returns the interval of s along axis.
func Project(axis cp.Vector, s *Shape) (Projection, error) {
	if s == nil || len(s.Vertices) == 0 {
		return Projection{}, ErrNoVertices
	}
	switch s.Kind {
	case KindBall:
		c := axis.Dot(s.Center)
		return Projection{
			Min:    c - s.Radius,
			Max:    c + s.Radius,
			Vertex: s.Center.Sub(Unit(axis).Mult(s.Radius)),
		}, nil
	case KindBox, KindTileCell, KindEdge, KindPolygon:
		p := Projection{Vertex: s.Vertices[0]}
		p.Min = axis.Dot(s.Vertices[0])
		p.Max = p.Min
		for _, v := range s.Vertices[1:] {
			d := axis.Dot(v)
			if d < p.Min {
				p.Min = d
				p.Vertex = v
			}
			if d > p.Max {
				p.Max = d
			}
		}
		return p, nil
	}
	return Projection{}, fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
}
