package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/geom"
)

var ErrParentCycle = errors.New("transform: parent cycle")

// TransformSystem places child transforms relative to their parents.
// Parents are resolved before their children regardless of entity order.
type TransformSystem struct{}

func NewTransformSystem() *TransformSystem {
	return &TransformSystem{}
}

func (ts *TransformSystem) Update(_ context.Context, w *ecs.World, _ float64) error {
	if w == nil {
		return nil
	}
	done := make(map[ecs.Entity]bool)
	visiting := make(map[ecs.Entity]bool)
	var errs []error

	var resolve func(e ecs.Entity) error
	resolve = func(e ecs.Entity) error {
		if done[e] {
			return nil
		}
		if visiting[e] {
			return fmt.Errorf("%w at entity %s", ErrParentCycle, e)
		}
		p, ok := ecs.Get(w, e, component.ParentComponent.Kind())
		if !ok {
			done[e] = true
			return nil
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			done[e] = true
			return nil
		}
		parent := ecs.OwnerEntity(p.Entity)
		pt, ok := ecs.Get(w, parent, component.TransformComponent.Kind())
		if !ok {
			done[e] = true
			return nil
		}

		visiting[e] = true
		err := resolve(parent)
		visiting[e] = false
		done[e] = true
		if err != nil {
			return err
		}

		offset := geom.Rotation(pt.Rotation).MulVector(cp.Vector{X: p.OffsetX, Y: p.OffsetY})
		t.X = pt.X + offset.X
		t.Y = pt.Y + offset.Y
		t.Rotation = pt.Rotation + p.Rotation
		return nil
	}

	ecs.ForEach(w, component.ParentComponent.Kind(), func(e ecs.Entity, _ *component.Parent) {
		if err := resolve(e); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
