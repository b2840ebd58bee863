package system

import (
	"context"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/stretchr/testify/require"
)

func box(w, h float64) []component.ShapeSpec {
	return []component.ShapeSpec{{Kind: "box", Width: w, Height: h}}
}

func TestCollisionSystemPublishesEvents(t *testing.T) {
	w := ecs.NewWorld()
	player := spawn(t, w, component.Transform{}, &component.Collider{Layer: "player", Shapes: box(10, 10)})
	coin := spawn(t, w, component.Transform{X: 6}, &component.Collider{Layer: "pickup", Passive: true, Shapes: box(4, 4)})
	spawn(t, w, component.Transform{X: 100}, &component.Collider{Layer: "world", Shapes: box(4, 4)})

	cs := NewCollisionSystem(nil)
	require.NoError(t, cs.Update(context.Background(), w, 0.1))
	require.False(t, cs.Degraded())
	require.Len(t, cs.Records(), 2)
	require.Equal(t, 3, cs.Stats().Shapes)

	hits := CollisionsWithLayer(w, player, "pickup")
	require.Len(t, hits, 1)
	require.Equal(t, coin, hits[0].Remote)
	require.Empty(t, CollisionsWithLayer(w, player, "world"))

	back := CollisionsWithLayer(w, coin, "player")
	require.Len(t, back, 1)
	require.Equal(t, hits[0].Resolution.Penetration, back[0].Resolution.Penetration)

	// Events only describe the latest tick.
	tr, _ := ecs.Get(w, coin, component.TransformComponent.Kind())
	tr.X = 50
	require.NoError(t, cs.Update(context.Background(), w, 0.1))
	require.Empty(t, CollisionsWithLayer(w, player, "pickup"))
	require.Zero(t, w.Events().Len())
}

func TestCollisionSystemWithoutEvents(t *testing.T) {
	w := ecs.NewWorld()
	spawn(t, w, component.Transform{}, &component.Collider{Shapes: box(10, 10)})
	spawn(t, w, component.Transform{X: 5}, &component.Collider{Shapes: box(10, 10)})

	cs := NewCollisionSystem(collision.NewDetector(collision.NewGrid(8), nil, nil))
	cs.Events = false
	require.NoError(t, cs.Update(context.Background(), w, 0.1))
	require.Len(t, cs.Records(), 2)
	require.Zero(t, w.Events().Len())
}

func TestCollisionSystemReportsBadColliders(t *testing.T) {
	w := ecs.NewWorld()
	spawn(t, w, component.Transform{}, &component.Collider{Shapes: []component.ShapeSpec{{Kind: "ball"}}})
	spawn(t, w, component.Transform{}, &component.Collider{Shapes: box(2, 2)})
	spawn(t, w, component.Transform{X: 1}, &component.Collider{Shapes: box(2, 2)})

	cs := NewCollisionSystem(nil)
	err := cs.Update(context.Background(), w, 0.1)
	require.Error(t, err)
	// The healthy colliders are still resolved.
	require.Len(t, cs.Records(), 2)
}

func TestPhysicsCollider(t *testing.T) {
	w := ecs.NewWorld()
	withBody := spawn(t, w, component.Transform{}, &component.Collider{Physics: true, Shapes: box(1, 1)})
	require.NoError(t, ecs.Add(w, withBody, component.RigidBodyComponent.Kind(), &component.RigidBody{}))
	spawn(t, w, component.Transform{}, &component.Collider{Physics: true, Shapes: box(1, 1)})
	trigger := spawn(t, w, component.Transform{}, &component.Collider{Shapes: box(1, 1)})
	require.NoError(t, ecs.Add(w, trigger, component.RigidBodyComponent.Kind(), &component.RigidBody{}))

	set, err := CollectShapes(w)
	require.NoError(t, err)

	tests := []struct {
		name     string
		collider int
		want     bool
	}{
		{"physics with body", 0, true},
		{"physics without body", 1, false},
		{"non-physics", 2, false},
		{"out of range", 7, false},
		{"negative", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := physicsCollider(w, set, tt.collider)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestMovingInto(t *testing.T) {
	local := cp.Vector{}
	tests := []struct {
		name           string
		dx, dy, rx, ry float64
		want           bool
	}{
		{"right toward", 1, 0, 5, 0, true},
		{"right level", 1, 0, 0, 3, true},
		{"right away", 1, 0, -5, 0, false},
		{"left toward", -1, 0, -5, 0, true},
		{"up toward", 0, 1, 0, 5, true},
		{"down away", 0, -1, 0, 5, false},
		{"down toward", 0, -1, 0, -5, true},
		{"no motion", 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movingInto(cp.Vector{X: tt.dx, Y: tt.dy}, local, cp.Vector{X: tt.rx, Y: tt.ry})
			require.Equal(t, tt.want, got)
		})
	}
}
