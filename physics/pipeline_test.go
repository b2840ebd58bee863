package physics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/ecs/entity"
	"github.com/milk9111/collide2d/geom"
	"github.com/stretchr/testify/require"
)

type bodySpec struct {
	x, y, w, h float64
	layer      string
	body       component.BodyType
	vel        cp.Vector
	gravity    float64
	collide    []string
	// ghost colliders report contacts but take no part in rollback or
	// correction.
	ghost bool
}

func addBody(t *testing.T, w *ecs.World, s bodySpec) ecs.Entity {
	t.Helper()
	if s.layer == "" {
		s.layer = "default"
	}
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: s.x, Y: s.y}))
	require.NoError(t, ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Shapes:  []component.ShapeSpec{{Kind: "box", Width: s.w, Height: s.h}},
		Physics: !s.ghost,
		Layer:   s.layer,
	}))
	require.NoError(t, ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Type:            s.body,
		Velocity:        s.vel,
		Gravity:         s.gravity,
		LayersToCollide: s.collide,
	}))
	return e
}

func transformOf(t *testing.T, w *ecs.World, e ecs.Entity) *component.Transform {
	t.Helper()
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	require.True(t, ok)
	return tr
}

func bodyOf(t *testing.T, w *ecs.World, e ecs.Entity) *component.RigidBody {
	t.Helper()
	rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	require.True(t, ok)
	return rb
}

func floor(t *testing.T, w *ecs.World) ecs.Entity {
	return addBody(t, w, bodySpec{x: 0, y: 0, w: 100, h: 10, layer: "world", body: component.BodyStatic})
}

func run(t *testing.T, p *Pipeline, w *ecs.World, ticks int, dt float64) StepStats {
	t.Helper()
	var stats StepStats
	for i := 0; i < ticks; i++ {
		var err error
		stats, err = p.Step(context.Background(), w, dt)
		require.NoError(t, err)
	}
	return stats
}

func TestPipelineSystemOrder(t *testing.T) {
	p := New(DefaultConfig())
	defer p.Close()
	require.Equal(t, []string{"script", "collision", "rigid_body", "reposition"}, p.Systems())

	cfg := DefaultConfig()
	cfg.DisableScripts = true
	require.Equal(t, []string{"collision", "rigid_body", "reposition"}, New(cfg).Systems())
}

func TestFallingBodyComesToRest(t *testing.T) {
	for _, worker := range []bool{false, true} {
		name := "grid"
		if worker {
			name = "worker"
		}
		t.Run(name, func(t *testing.T) {
			w := ecs.NewWorld()
			floor(t, w)
			body := addBody(t, w, bodySpec{x: 0, y: 20, w: 10, h: 10, body: component.BodyDynamic, gravity: 10})

			cfg := DefaultConfig()
			cfg.Worker = worker
			cfg.Timeout = time.Second
			p := New(cfg)
			defer p.Close()

			run(t, p, w, 200, 0.1)
			tr := transformOf(t, w, body)
			rb := bodyOf(t, w, body)
			require.Zero(t, rb.Velocity.Y)
			// Rests within one step of the floor without sinking into it.
			require.GreaterOrEqual(t, tr.Y, 10.0-1e-9)
			require.Less(t, tr.Y, 10.1)

			// And stays there.
			before := tr.Y
			stats := run(t, p, w, 20, 0.1)
			require.InDelta(t, before, tr.Y, 1e-9)
			require.Zero(t, rb.Velocity.Y)
			require.False(t, stats.Degraded)
			require.Equal(t, uint64(220), stats.Tick)
		})
	}
}

func TestBodySlidesAlongFloor(t *testing.T) {
	w := ecs.NewWorld()
	floor(t, w)
	body := addBody(t, w, bodySpec{x: 0, y: 10, w: 10, h: 10, body: component.BodyDynamic, gravity: 10, vel: cp.Vector{X: 5}})

	p := New(DefaultConfig())
	run(t, p, w, 10, 0.1)

	tr := transformOf(t, w, body)
	require.InDelta(t, 5, tr.X, 1e-9)
	require.InDelta(t, 10, tr.Y, 1e-9)
	require.Equal(t, 5.0, bodyOf(t, w, body).Velocity.X)
}

func TestWallStopsHorizontalMotion(t *testing.T) {
	w := ecs.NewWorld()
	addBody(t, w, bodySpec{x: 25, y: 0, w: 10, h: 40, layer: "world", body: component.BodyStatic})
	body := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, body: component.BodyDynamic, vel: cp.Vector{X: 10}})

	p := New(DefaultConfig())
	run(t, p, w, 30, 0.1)

	require.InDelta(t, 15, transformOf(t, w, body).X, 1e-9)
	require.Zero(t, bodyOf(t, w, body).Velocity.X)
}

func TestLayersToCollideLimitsRollback(t *testing.T) {
	w := ecs.NewWorld()
	addBody(t, w, bodySpec{x: 25, y: 0, w: 10, h: 40, layer: "world", body: component.BodyStatic})
	body := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, body: component.BodyDynamic, vel: cp.Vector{X: 10}, collide: []string{"enemy"}})

	p := New(DefaultConfig())
	run(t, p, w, 3, 0.1)

	// Not stopped by the wall's layer; still travelling.
	require.Equal(t, 10.0, bodyOf(t, w, body).Velocity.X)
	require.InDelta(t, 3, transformOf(t, w, body).X, 1e-9)
}

func TestNonPhysicsBodyDoesNotBlock(t *testing.T) {
	w := ecs.NewWorld()
	wall := addBody(t, w, bodySpec{x: 25, y: 0, w: 10, h: 40, layer: "world", body: component.BodyStatic, ghost: true})
	body := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, body: component.BodyDynamic, vel: cp.Vector{X: 10}})

	p := New(DefaultConfig())
	stats := run(t, p, w, 30, 0.1)

	// Passing through the wall still produces records, but neither rollback
	// nor correction react to them.
	require.Equal(t, 2, stats.Records)
	require.Equal(t, 10.0, bodyOf(t, w, body).Velocity.X)
	require.InDelta(t, 30, transformOf(t, w, body).X, 1e-9)
	require.Equal(t, 25.0, transformOf(t, w, wall).X)
}

func TestDynamicPairSplitsCorrection(t *testing.T) {
	w := ecs.NewWorld()
	a := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, body: component.BodyDynamic})
	b := addBody(t, w, bodySpec{x: 8, y: 0, w: 10, h: 10, body: component.BodyDynamic})

	p := New(DefaultConfig())
	stats := run(t, p, w, 1, 0.1)
	require.Equal(t, 2, stats.Records)

	require.InDelta(t, -1, transformOf(t, w, a).X, 1e-9)
	require.InDelta(t, 9, transformOf(t, w, b).X, 1e-9)
}

func TestCorrectionKeepsLargestAndLands(t *testing.T) {
	w := ecs.NewWorld()
	addBody(t, w, bodySpec{x: -9, y: 0, w: 10, h: 10, layer: "world", body: component.BodyStatic})
	addBody(t, w, bodySpec{x: 0, y: -8, w: 10, h: 12, layer: "world", body: component.BodyStatic})
	// Rollback ignores the world so only correction acts.
	body := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, body: component.BodyDynamic, gravity: 10, vel: cp.Vector{Y: -3}, collide: []string{"none"}})

	p := New(DefaultConfig())
	run(t, p, w, 1, 0.1)

	tr := transformOf(t, w, body)
	rb := bodyOf(t, w, body)
	// Integration moved it down 0.4, then the 3 unit push from below won
	// over the 1 unit push from the left.
	require.InDelta(t, 0, tr.X, 1e-9)
	require.InDelta(t, 2.6, tr.Y, 1e-9)
	require.Zero(t, rb.Velocity.Y)
}

type unavailable struct{}

func (unavailable) RebuildIndex(context.Context, []*geom.Shape) error {
	return collision.ErrBroadPhaseUnavailable
}

func (unavailable) Candidates(context.Context, cp.BB) ([]int, error) {
	return nil, collision.ErrBroadPhaseUnavailable
}

func TestDegradedTickSkipsResolution(t *testing.T) {
	w := ecs.NewWorld()
	floor(t, w)
	a := addBody(t, w, bodySpec{x: 0, y: 20, w: 10, h: 10, body: component.BodyDynamic})
	b := addBody(t, w, bodySpec{x: 8, y: 20, w: 10, h: 10, body: component.BodyDynamic})

	p := New(DefaultConfig())
	p.Collision.Detector.BroadPhase = unavailable{}

	stats := run(t, p, w, 1, 0.1)
	require.True(t, stats.Degraded)
	require.Zero(t, stats.Records)
	require.Empty(t, p.Records())
	// No correction was applied.
	require.Equal(t, 0.0, transformOf(t, w, a).X)
	require.Equal(t, 8.0, transformOf(t, w, b).X)
}

func TestDegradedTickStillRollsBackByScanning(t *testing.T) {
	w := ecs.NewWorld()
	floor(t, w)
	body := addBody(t, w, bodySpec{x: 0, y: 10, w: 10, h: 10, body: component.BodyDynamic, gravity: 10})

	p := New(DefaultConfig())
	p.Collision.Detector.BroadPhase = unavailable{}
	run(t, p, w, 5, 0.1)

	require.InDelta(t, 10, transformOf(t, w, body).Y, 1e-9)
}

// stalled answers nothing: every call waits out its timeout, the way a hung
// collision.Worker does.
type stalled struct {
	timeout time.Duration
	calls   atomic.Int32
}

func (s *stalled) wait() error {
	s.calls.Add(1)
	time.Sleep(s.timeout)
	return collision.ErrBroadPhaseUnavailable
}

func (s *stalled) RebuildIndex(context.Context, []*geom.Shape) error {
	return s.wait()
}

func (s *stalled) Candidates(context.Context, cp.BB) ([]int, error) {
	return nil, s.wait()
}

func TestStalledBroadPhaseCostsOneTimeoutPerTick(t *testing.T) {
	w := ecs.NewWorld()
	floor(t, w)
	var bodies []ecs.Entity
	for i := 0; i < 6; i++ {
		x := -40 + float64(i)*15
		bodies = append(bodies, addBody(t, w, bodySpec{x: x, y: 30, w: 10, h: 10, body: component.BodyDynamic, gravity: 10, vel: cp.Vector{X: 5}}))
	}

	bp := &stalled{timeout: 50 * time.Millisecond}
	p := New(DefaultConfig())
	p.Collision.Detector.BroadPhase = bp

	for tick := 0; tick < 3; tick++ {
		start := time.Now()
		stats, err := p.Step(context.Background(), w, 0.1)
		require.NoError(t, err)
		require.True(t, stats.Degraded)
		require.Less(t, time.Since(start), 2*bp.timeout)
	}
	// Only each tick's rebuild reached the broad phase.
	require.Equal(t, int32(3), bp.calls.Load())
	// Integration kept running on the scanning fallback.
	for i, e := range bodies {
		require.InDelta(t, -40+float64(i)*15+1.5, transformOf(t, w, e).X, 1e-9)
	}
}

func TestStepHonoursCancelledContext(t *testing.T) {
	w := ecs.NewWorld()
	p := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Step(ctx, w, 0.1)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, p.Ticks())
}

func TestAdvanceRunsFixedSteps(t *testing.T) {
	w := ecs.NewWorld()
	body := addBody(t, w, bodySpec{x: 0, y: 0, w: 1, h: 1, body: component.BodyDynamic, vel: cp.Vector{X: 1}})

	cfg := DefaultConfig()
	cfg.FixedStep = 0.25
	cfg.MaxSteps = 3
	p := New(cfg)

	n, stats, err := p.Advance(context.Background(), w, 0.6)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(2), stats.Tick)
	require.InDelta(t, 0.5, transformOf(t, w, body).X, 1e-9)

	n, _, err = p.Advance(context.Background(), w, 10)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Greater(t, p.Clock().Dropped(), 0.0)
}

func TestReconfigureSwapsBroadPhase(t *testing.T) {
	w := ecs.NewWorld()
	a := addBody(t, w, bodySpec{x: 0, y: 0, w: 10, h: 10, layer: "a", body: component.BodyDynamic})
	addBody(t, w, bodySpec{x: 8, y: 0, w: 10, h: 10, layer: "b", body: component.BodyStatic})

	cfg := DefaultConfig()
	cfg.Worker = true
	p := New(cfg)
	defer p.Close()

	cfg.Worker = false
	cfg.Matrix = collision.Matrix{}
	require.NoError(t, p.Reconfigure(cfg))
	_, ok := p.Collision.Detector.BroadPhase.(*collision.Grid)
	require.True(t, ok)

	stats := run(t, p, w, 1, 0.1)
	require.Zero(t, stats.Records)
	require.Equal(t, 0.0, transformOf(t, w, a).X)
}

func TestPitSceneSettles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 100

	w := ecs.NewWorld()
	ents, err := entity.LoadScene(w, "scenes/pit", cfg.EntityOptions())
	require.NoError(t, err)
	require.Len(t, ents, 2)
	crate := ents[1]

	p := New(cfg)
	defer p.Close()
	run(t, p, w, 120, 1.0/60)

	tr := transformOf(t, w, crate)
	require.InDelta(t, 48, tr.X, 1e-9)
	require.GreaterOrEqual(t, tr.Y, 44.0-1e-9)
	require.Less(t, tr.Y, 44.1)

	set := p.Collision.Shapes()
	require.Len(t, set.ShapesOf(ents[0]), 3)
}
