package system

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/geom"
)

// ColliderRef is one Collider component seen during a tick.
type ColliderRef struct {
	Entity   ecs.Entity
	Collider *component.Collider
	// Shapes indexes into ShapeSet.Shapes.
	Shapes []int
	Center cp.Vector
}

// ShapeSet is the tick's flat shape list. Shape i always has ID i.
type ShapeSet struct {
	Shapes    []*geom.Shape
	Colliders []ColliderRef

	byEntity map[ecs.Entity]int
}

// Collider returns the collider owned by e.
func (s *ShapeSet) Collider(e ecs.Entity) (*ColliderRef, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.byEntity[e]
	if !ok {
		return nil, false
	}
	return &s.Colliders[i], true
}

// ShapesOf returns the shapes owned by e.
func (s *ShapeSet) ShapesOf(e ecs.Entity) []*geom.Shape {
	ref, ok := s.Collider(e)
	if !ok {
		return nil
	}
	out := make([]*geom.Shape, 0, len(ref.Shapes))
	for _, id := range ref.Shapes {
		out = append(out, s.Shapes[id])
	}
	return out
}

// Translate moves every shape of e and its collider centre by d.
func (s *ShapeSet) Translate(e ecs.Entity, d cp.Vector) {
	ref, ok := s.Collider(e)
	if !ok {
		return
	}
	for _, id := range ref.Shapes {
		s.Shapes[id].Translate(d)
	}
	ref.Center = ref.Center.Add(d)
}

// CollectShapes rebuilds world-space shapes for every entity with a
// Transform and a Collider. Entities whose shapes cannot be built are
// skipped and reported in the joined error.
func CollectShapes(w *ecs.World) (*ShapeSet, error) {
	set := &ShapeSet{byEntity: make(map[ecs.Entity]int)}
	var errs []error

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		shapes, err := BuildShapes(t, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e, err))
			return
		}
		if len(shapes) == 0 {
			return
		}

		idx := len(set.Colliders)
		ref := ColliderRef{Entity: e, Collider: c}
		var bb cp.BB
		for i, s := range shapes {
			s.ID = len(set.Shapes)
			s.Collider = idx
			s.Entity = e.Owner()
			s.Layer = c.Layer
			s.IgnoreLayers = c.IgnoreLayers
			s.UpdateCollisions = !c.Passive
			if i == 0 {
				bb = s.BB
			} else {
				bb = geom.Merge(bb, s.BB)
			}
			ref.Shapes = append(ref.Shapes, s.ID)
			set.Shapes = append(set.Shapes, s)
		}
		ref.Center = geom.Center(bb)
		set.byEntity[e] = idx
		set.Colliders = append(set.Colliders, ref)
	})

	return set, errors.Join(errs...)
}

// BuildShapes places a collider's shapes at transform t. Shape offsets turn
// with the transform; tilemaps are only translated.
func BuildShapes(t *component.Transform, c *component.Collider) ([]*geom.Shape, error) {
	if t == nil || c == nil {
		return nil, nil
	}
	origin := t.Position()
	rot := geom.Rotation(t.Rotation)

	var out []*geom.Shape
	for i, spec := range c.Shapes {
		s, err := buildShape(origin, rot, t.Rotation, spec)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		out = append(out, s)
	}
	if c.Tilemap != nil {
		tiles, err := TileShapes(c.Tilemap)
		if err != nil {
			return nil, err
		}
		for _, s := range tiles {
			s.Translate(origin)
		}
		out = append(out, tiles...)
	}
	return out, nil
}

func buildShape(origin cp.Vector, rot geom.Matrix2, angle float64, spec component.ShapeSpec) (*geom.Shape, error) {
	kind, err := geom.ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}
	center := origin.Add(rot.MulVector(cp.Vector{X: spec.OffsetX, Y: spec.OffsetY}))
	angle += spec.Rotation

	switch kind {
	case geom.KindBall:
		return geom.NewBall(center, spec.Radius)
	case geom.KindBox, geom.KindTileCell:
		if math.Mod(angle, 2*math.Pi) == 0 {
			hw, hh := spec.Width/2, spec.Height/2
			if hw <= 0 || hh <= 0 {
				return nil, fmt.Errorf("%w: box %gx%g", geom.ErrDegenerate, spec.Width, spec.Height)
			}
			return geom.NewBox(center.X-hw, center.Y-hh, center.X+hw, center.Y+hh)
		}
		return geom.NewOrientedBox(center, spec.Width, spec.Height, angle)
	case geom.KindPolygon, geom.KindEdge:
		if len(spec.Vertices) == 0 {
			return nil, geom.ErrNoVertices
		}
		local := geom.Rotation(angle)
		verts := make([]cp.Vector, 0, len(spec.Vertices))
		for _, v := range spec.Vertices {
			verts = append(verts, center.Add(local.MulVector(cp.Vector{X: v[0], Y: v[1]})))
		}
		if kind == geom.KindEdge {
			if len(verts) != 2 {
				return nil, fmt.Errorf("%w: edge with %d vertices", geom.ErrDegenerate, len(verts))
			}
			return geom.NewEdge(verts[0], verts[1])
		}
		return geom.NewPolygon(verts)
	}
	return nil, fmt.Errorf("%w: %s", geom.ErrUnknownKind, spec.Kind)
}

// TileShapes turns solid tiles into shapes in the tilemap's local space.
// With Merge set, solid cells are greedily joined into maximal rectangles:
// each run is grown right along its row, then down while every cell of the
// next row is solid and unclaimed.
func TileShapes(tm *component.Tilemap) ([]*geom.Shape, error) {
	if tm == nil || tm.Width <= 0 || tm.Height <= 0 {
		return nil, nil
	}
	if tm.TileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size %g", geom.ErrDegenerate, tm.TileSize)
	}

	var out []*geom.Shape
	if !tm.Merge {
		for row := 0; row < tm.Height; row++ {
			for col := 0; col < tm.Width; col++ {
				if !tm.Solid(col, row) {
					continue
				}
				s, err := geom.NewTileCell(col, row, tm.TileSize)
				if err != nil {
					return nil, err
				}
				out = append(out, s)
			}
		}
		return out, nil
	}

	used := make([]bool, tm.Width*tm.Height)
	free := func(col, row int) bool {
		return tm.Solid(col, row) && !used[row*tm.Width+col]
	}
	for row := 0; row < tm.Height; row++ {
		for col := 0; col < tm.Width; col++ {
			if !free(col, row) {
				continue
			}
			w := 1
			for free(col+w, row) {
				w++
			}
			h := 1
		grow:
			for row+h < tm.Height {
				for x := col; x < col+w; x++ {
					if !free(x, row+h) {
						break grow
					}
				}
				h++
			}
			for y := row; y < row+h; y++ {
				for x := col; x < col+w; x++ {
					used[y*tm.Width+x] = true
				}
			}
			s, err := geom.NewTileRect(col, row, w, h, tm.TileSize)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}
