package system

import (
	"context"
	"errors"
	"log"

	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
)

// CollisionSystem collects the tick's shapes, rebuilds the broad phase and
// fills the repository. Later systems read Shapes and the repository.
type CollisionSystem struct {
	Detector *collision.Detector
	// Events publishes one ecs.CollisionEvent per record.
	Events bool

	shapes   *ShapeSet
	stats    collision.Stats
	degraded bool
}

func NewCollisionSystem(d *collision.Detector) *CollisionSystem {
	if d == nil {
		d = collision.NewDetector(nil, nil, nil)
	}
	return &CollisionSystem{Detector: d, Events: true}
}

func (cs *CollisionSystem) Update(ctx context.Context, w *ecs.World, _ float64) error {
	if cs == nil || w == nil {
		return nil
	}
	w.Events().Clear()

	set, collectErr := CollectShapes(w)
	if collectErr != nil {
		log.Printf("collision: %v", collectErr)
	}
	cs.shapes = set

	stats, err := cs.Detector.Detect(ctx, set.Shapes)
	cs.stats = stats
	cs.degraded = errors.Is(err, collision.ErrBroadPhaseUnavailable)
	if cs.degraded {
		log.Printf("collision: skipping resolution this tick: %v", err)
		return nil
	}

	if cs.Events {
		for _, rec := range cs.Detector.Repository.All() {
			remote := set.Colliders[rec.RemoteCollider]
			w.Events().Push(ecs.Event{Type: ecs.EventCollision, Data: ecs.CollisionEvent{
				Local:      ecs.OwnerEntity(rec.LocalEntity),
				Remote:     ecs.OwnerEntity(rec.RemoteEntity),
				Layer:      remote.Collider.Layer,
				Resolution: rec.Resolution,
			}})
		}
	}
	return errors.Join(collectErr, err)
}

// Shapes returns the shapes collected by the last Update.
func (cs *CollisionSystem) Shapes() *ShapeSet {
	if cs == nil {
		return nil
	}
	return cs.shapes
}

func (cs *CollisionSystem) Stats() collision.Stats {
	if cs == nil {
		return collision.Stats{}
	}
	return cs.stats
}

// Degraded reports whether the last tick ran without a broad phase.
func (cs *CollisionSystem) Degraded() bool {
	return cs != nil && cs.degraded
}

// Records returns the repository snapshot of the last tick.
func (cs *CollisionSystem) Records() []collision.Record {
	if cs == nil || cs.Detector == nil {
		return nil
	}
	return cs.Detector.Repository.All()
}

// CollisionsWithLayer returns this tick's records where e is the local side
// and the remote collider sits on layer.
func CollisionsWithLayer(w *ecs.World, e ecs.Entity, layer string) []ecs.CollisionEvent {
	var out []ecs.CollisionEvent
	for _, evt := range w.Events().Collisions() {
		if evt.Local == e && evt.Layer == layer {
			out = append(out, evt)
		}
	}
	return out
}

// physicsCollider reports whether rollback and correction may use e's
// collider: it must be physics-enabled and e must own a RigidBody.
func physicsCollider(w *ecs.World, set *ShapeSet, collider int) (*component.RigidBody, bool) {
	if set == nil || collider < 0 || collider >= len(set.Colliders) {
		return nil, false
	}
	ref := set.Colliders[collider]
	if ref.Collider == nil || !ref.Collider.Physics {
		return nil, false
	}
	return ecs.Get(w, ref.Entity, component.RigidBodyComponent.Kind())
}
