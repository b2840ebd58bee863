package system

import (
	"context"
	"errors"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/geom"
)

// RigidBodySystem integrates dynamic bodies one axis at a time. After each
// axis step it asks the detector for fresh contacts and undoes the step,
// zeroing that velocity component, when the body moved into another rigid
// body.
type RigidBodySystem struct {
	Collision *CollisionSystem
}

func NewRigidBodySystem(cs *CollisionSystem) *RigidBodySystem {
	return &RigidBodySystem{Collision: cs}
}

func (rs *RigidBodySystem) Update(ctx context.Context, w *ecs.World, dt float64) error {
	if rs == nil || w == nil || dt <= 0 {
		return nil
	}
	set := rs.Collision.Shapes()
	detector := rs.detector()

	// Shapes move during this pass but the index does not; widen every
	// query by the furthest any body can travel this tick.
	margin := 0.0
	ecs.ForEach(w, component.RigidBodyComponent.Kind(), func(_ ecs.Entity, rb *component.RigidBody) {
		if !rb.Dynamic() {
			return
		}
		vy := math.Abs(rb.Velocity.Y)
		if rb.Gravity > 0 {
			vy += rb.Gravity * dt
		}
		margin = math.Max(margin, (math.Abs(rb.Velocity.X)+vy)*dt)
	})

	var errs []error
	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if !rb.Dynamic() {
			return
		}
		if rb.Gravity > 0 {
			rb.Velocity.Y -= rb.Gravity * dt
		}
		if rb.Velocity.X != 0 {
			d := cp.Vector{X: rb.Velocity.X * dt}
			blocked, err := rs.step(ctx, w, detector, set, e, rb, t, d, margin)
			errs = append(errs, err)
			if blocked {
				rb.Velocity.X = 0
			}
		}
		if rb.Velocity.Y != 0 {
			d := cp.Vector{Y: rb.Velocity.Y * dt}
			blocked, err := rs.step(ctx, w, detector, set, e, rb, t, d, margin)
			errs = append(errs, err)
			if blocked {
				rb.Velocity.Y = 0
			}
		}
	})
	return errors.Join(errs...)
}

func (rs *RigidBodySystem) detector() *collision.Detector {
	if rs.Collision == nil {
		return nil
	}
	return rs.Collision.Detector
}

// step moves e by d and reports whether the move was rolled back.
func (rs *RigidBodySystem) step(ctx context.Context, w *ecs.World, d *collision.Detector, set *ShapeSet, e ecs.Entity, rb *component.RigidBody, t *component.Transform, delta cp.Vector, margin float64) (bool, error) {
	t.Move(delta)
	set.Translate(e, delta)

	local, ok := set.Collider(e)
	if !ok || d == nil {
		return false, nil
	}

	contacts, err := d.Probe(ctx, set.ShapesOf(e), set.Shapes, margin, func(remote *geom.Shape) bool {
		if !rb.CollidesWith(remote.Layer) {
			return false
		}
		_, ok := physicsCollider(w, set, remote.Collider)
		return ok
	})

	rollback := false
	for _, c := range contacts {
		remote := set.Colliders[c.Remote.Collider].Center
		if movingInto(delta, local.Center, remote) {
			rollback = true
			break
		}
	}
	if rollback {
		t.Move(delta.Neg())
		set.Translate(e, delta.Neg())
	}
	return rollback, err
}

// movingInto reports whether the remote centre lies at or beyond the local
// centre along the direction of travel.
func movingInto(delta, local, remote cp.Vector) bool {
	switch {
	case delta.X > 0:
		return remote.X >= local.X
	case delta.X < 0:
		return remote.X <= local.X
	case delta.Y > 0:
		return remote.Y >= local.Y
	case delta.Y < 0:
		return remote.Y <= local.Y
	}
	return false
}
