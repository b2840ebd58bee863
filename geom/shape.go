package geom

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jakecoffman/cp"
)

var (
	ErrNoVertices  = errors.New("geom: shape has no vertices")
	ErrDegenerate  = errors.New("geom: degenerate shape")
	ErrUnknownKind = errors.New("geom: unknown shape kind")
)

// Kind is the closed set of shape variants the resolver understands.
type Kind uint8

const (
	KindBall Kind = iota + 1
	KindBox
	KindPolygon
	KindEdge
	KindTileCell
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindBox:
		return "box"
	case KindPolygon:
		return "polygon"
	case KindEdge:
		return "edge"
	case KindTileCell:
		return "tile"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a spec name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ball", "circle":
		return KindBall, nil
	case "box", "rect", "rectangle":
		return KindBox, nil
	case "polygon", "poly":
		return KindPolygon, nil
	case "edge", "segment":
		return KindEdge, nil
	case "tile":
		return KindTileCell, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Shape is one convex collision primitive for a single tick.
type Shape struct {
	ID   int
	Kind Kind

	// Vertices are in world space. Balls carry only their centre.
	Vertices  []cp.Vector
	Direction cp.Vector
	Center    cp.Vector
	Radius    float64
	BB        cp.BB

	Collider         int
	Entity           uint64
	Layer            string
	IgnoreLayers     []string
	UpdateCollisions bool
}

// NewBox builds an axis-aligned rectangle from two opposite corners.
// Vertex order is (x1,y1), (x1,y2), (x2,y2), (x2,y1) with x1<x2, y1<y2.
func NewBox(x1, y1, x2, y2 float64) (*Shape, error) {
	return newRect(KindBox, x1, y1, x2, y2)
}

// NewTileCell builds the box covering tile (col,row) of edge size.
func NewTileCell(col, row int, size float64) (*Shape, error) {
	x, y := float64(col)*size, float64(row)*size
	return newRect(KindTileCell, x, y, x+size, y+size)
}

// NewTileRect builds a tile-derived box spanning w*h tiles.
func NewTileRect(col, row, w, h int, size float64) (*Shape, error) {
	x, y := float64(col)*size, float64(row)*size
	return newRect(KindTileCell, x, y, x+float64(w)*size, y+float64(h)*size)
}

func newRect(kind Kind, x1, y1, x2, y2 float64) (*Shape, error) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x1 == x2 || y1 == y2 {
		return nil, fmt.Errorf("%w: %s (%g,%g)-(%g,%g)", ErrDegenerate, kind, x1, y1, x2, y2)
	}
	s := &Shape{
		Kind: kind,
		Vertices: []cp.Vector{
			{X: x1, Y: y1},
			{X: x1, Y: y2},
			{X: x2, Y: y2},
			{X: x2, Y: y1},
		},
		Direction:        cp.Vector{X: 0, Y: 1},
		UpdateCollisions: true,
	}
	s.refresh()
	return s, nil
}

// NewOrientedBox builds a w*h rectangle centred on c and rotated by angle.
func NewOrientedBox(c cp.Vector, w, h, angle float64) (*Shape, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: box %gx%g", ErrDegenerate, w, h)
	}
	dir := Rotation(angle).MulVector(cp.Vector{X: 0, Y: 1})
	right := cp.Vector{X: dir.Y, Y: -dir.X}
	hw, hh := right.Mult(w/2), dir.Mult(h/2)
	s := &Shape{
		Kind: KindBox,
		Vertices: []cp.Vector{
			c.Sub(hw).Sub(hh),
			c.Sub(hw).Add(hh),
			c.Add(hw).Add(hh),
			c.Add(hw).Sub(hh),
		},
		Direction:        dir,
		UpdateCollisions: true,
	}
	s.refresh()
	return s, nil
}

func NewBall(c cp.Vector, r float64) (*Shape, error) {
	if r <= 0 {
		return nil, fmt.Errorf("%w: ball radius %g", ErrDegenerate, r)
	}
	s := &Shape{
		Kind:             KindBall,
		Vertices:         []cp.Vector{c},
		Direction:        cp.Vector{X: 0, Y: 1},
		Radius:           r,
		UpdateCollisions: true,
	}
	s.refresh()
	return s, nil
}

// NewPolygon builds a convex polygon. Vertices are copied.
func NewPolygon(verts []cp.Vector) (*Shape, error) {
	if len(verts) == 0 {
		return nil, ErrNoVertices
	}
	if len(verts) < 3 {
		return nil, fmt.Errorf("%w: polygon with %d vertices", ErrDegenerate, len(verts))
	}
	dir := Unit(verts[1].Sub(verts[0]))
	if IsZero(dir) {
		return nil, fmt.Errorf("%w: polygon first edge has zero length", ErrDegenerate)
	}
	s := &Shape{
		Kind:             KindPolygon,
		Vertices:         slices.Clone(verts),
		Direction:        dir,
		UpdateCollisions: true,
	}
	s.refresh()
	return s, nil
}

func NewEdge(a, b cp.Vector) (*Shape, error) {
	dir := Unit(b.Sub(a))
	if IsZero(dir) {
		return nil, fmt.Errorf("%w: edge (%g,%g)-(%g,%g)", ErrDegenerate, a.X, a.Y, b.X, b.Y)
	}
	s := &Shape{
		Kind:             KindEdge,
		Vertices:         []cp.Vector{a, b},
		Direction:        dir,
		UpdateCollisions: true,
	}
	s.refresh()
	return s, nil
}

// Translate moves the shape by d in place.
func (s *Shape) Translate(d cp.Vector) {
	if s == nil {
		return
	}
	for i := range s.Vertices {
		s.Vertices[i] = s.Vertices[i].Add(d)
	}
	s.refresh()
}

// Ignores reports whether the shape skips collisions with layer.
func (s *Shape) Ignores(layer string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.IgnoreLayers, layer)
}

// Clone returns a deep copy safe to move independently.
func (s *Shape) Clone() *Shape {
	if s == nil {
		return nil
	}
	c := *s
	c.Vertices = slices.Clone(s.Vertices)
	c.IgnoreLayers = slices.Clone(s.IgnoreLayers)
	return &c
}

func (s *Shape) refresh() {
	if s.Kind == KindBall {
		s.Center = s.Vertices[0]
		s.BB = cp.BB{
			L: s.Center.X - s.Radius,
			B: s.Center.Y - s.Radius,
			R: s.Center.X + s.Radius,
			T: s.Center.Y + s.Radius,
		}
		return
	}
	s.BB = Boundaries(s.Vertices)
	var sum cp.Vector
	for _, v := range s.Vertices {
		sum = sum.Add(v)
	}
	s.Center = sum.Mult(1 / float64(len(s.Vertices)))
}
