package system

import (
	"context"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
)

// RepositionSystem pushes dynamic bodies out of whatever the narrow phase
// found them overlapping. Each body takes the single largest correction
// among its records; a dynamic remote splits the penetration in half.
type RepositionSystem struct {
	Collision *CollisionSystem
	Transform *TransformSystem
}

func NewRepositionSystem(cs *CollisionSystem, ts *TransformSystem) *RepositionSystem {
	return &RepositionSystem{Collision: cs, Transform: ts}
}

func (rs *RepositionSystem) Update(ctx context.Context, w *ecs.World, dt float64) error {
	if rs == nil || w == nil || rs.Collision == nil {
		return nil
	}
	set := rs.Collision.Shapes()

	byLocal := make(map[ecs.Entity][]collision.Record)
	for _, rec := range rs.Collision.Records() {
		if _, ok := physicsCollider(w, set, rec.LocalCollider); !ok {
			continue
		}
		if _, ok := physicsCollider(w, set, rec.RemoteCollider); !ok {
			continue
		}
		local := ecs.OwnerEntity(rec.LocalEntity)
		byLocal[local] = append(byLocal[local], rec)
	}
	if len(byLocal) == 0 {
		return nil
	}

	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if !rb.Dynamic() {
			return
		}
		var best cp.Vector
		for _, rec := range byLocal[e] {
			pen := rec.Resolution.Penetration
			if remote, ok := ecs.Get(w, ecs.OwnerEntity(rec.RemoteEntity), component.RigidBodyComponent.Kind()); ok && remote.Dynamic() {
				pen /= 2
			}
			// Direction already points away from the remote.
			c := rec.Resolution.Direction.Mult(pen)
			if c.LengthSq() > best.LengthSq() {
				best = c
			}
		}
		if best.X == 0 && best.Y == 0 {
			return
		}
		t.Move(best)
		if rb.Gravity > 0 && best.Y*rb.Velocity.Y < 0 {
			rb.Velocity.Y = 0
		}
	})

	if rs.Transform != nil {
		return rs.Transform.Update(ctx, w, dt)
	}
	return nil
}
