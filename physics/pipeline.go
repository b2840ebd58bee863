package physics

import (
	"context"
	"log"
	"time"

	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/system"
)

// StepStats describes one tick.
type StepStats struct {
	Tick      uint64
	Collision collision.Stats
	Records   int
	// Degraded ticks ran without the broad phase and resolved nothing.
	Degraded bool
	Elapsed  time.Duration
}

// Pipeline owns the collision state and runs the physics systems in a fixed
// order: scripts, collision, integration, correction. Correction finishes by
// propagating parent transforms.
type Pipeline struct {
	cfg       Config
	scheduler *ecs.Scheduler
	clock     *Clock
	worker    *collision.Worker
	ticks     uint64
	primed    bool

	Script     *system.ScriptSystem
	Collision  *system.CollisionSystem
	RigidBody  *system.RigidBodySystem
	Reposition *system.RepositionSystem
	Transform  *system.TransformSystem
}

func New(cfg Config) *Pipeline {
	bp, worker := cfg.broadPhase()
	detector := collision.NewDetector(bp, cfg.Matrix, nil)

	p := &Pipeline{
		cfg:       cfg,
		scheduler: ecs.NewScheduler(),
		clock:     NewClock(cfg.FixedStep, cfg.MaxSteps),
		worker:    worker,
		Script:    system.NewScriptSystem(),
		Collision: system.NewCollisionSystem(detector),
		Transform: system.NewTransformSystem(),
	}
	p.RigidBody = system.NewRigidBodySystem(p.Collision)
	p.Reposition = system.NewRepositionSystem(p.Collision, p.Transform)

	if !cfg.DisableScripts {
		p.scheduler.Add("script", p.Script)
	}
	p.scheduler.Add("collision", p.Collision)
	p.scheduler.Add("rigid_body", p.RigidBody)
	p.scheduler.Add("reposition", p.Reposition)
	return p
}

func (p *Pipeline) Config() Config {
	if p == nil {
		return Config{}
	}
	return p.cfg
}

// Systems returns the scheduled system names in run order.
func (p *Pipeline) Systems() []string {
	if p == nil {
		return nil
	}
	return p.scheduler.Names()
}

// Step runs one tick of dt seconds. A cancelled ctx stops the pipeline only
// between ticks.
func (p *Pipeline) Step(ctx context.Context, w *ecs.World, dt float64) (StepStats, error) {
	if p == nil || w == nil {
		return StepStats{}, nil
	}
	if err := ctx.Err(); err != nil {
		return StepStats{Tick: p.ticks}, err
	}
	start := time.Now()

	// Children need placing before their shapes are first collected.
	if !p.primed {
		if err := p.Transform.Update(ctx, w, 0); err != nil {
			log.Printf("physics: transform: %v", err)
		}
		p.primed = true
	}

	err := p.scheduler.Update(ctx, w, dt)
	p.ticks++
	stats := StepStats{
		Tick:      p.ticks,
		Collision: p.Collision.Stats(),
		Records:   len(p.Collision.Records()),
		Degraded:  p.Collision.Degraded(),
		Elapsed:   time.Since(start),
	}
	return stats, err
}

// Advance feeds a frame time to the fixed-step clock and runs the resulting
// steps. It returns the stats of the last step run.
func (p *Pipeline) Advance(ctx context.Context, w *ecs.World, frame float64) (int, StepStats, error) {
	if p == nil {
		return 0, StepStats{}, nil
	}
	n := p.clock.Advance(frame)
	var last StepStats
	for i := 0; i < n; i++ {
		stats, err := p.Step(ctx, w, p.clock.Step)
		last = stats
		if err != nil {
			return i + 1, last, err
		}
	}
	return n, last, nil
}

// Clock exposes the fixed-step accumulator used by Advance.
func (p *Pipeline) Clock() *Clock {
	if p == nil {
		return nil
	}
	return p.clock
}

// Records returns the collision records of the last tick.
func (p *Pipeline) Records() []collision.Record {
	if p == nil {
		return nil
	}
	return p.Collision.Records()
}

func (p *Pipeline) Ticks() uint64 {
	if p == nil {
		return 0
	}
	return p.ticks
}

// Reconfigure swaps in a new matrix and broad phase, e.g. after the physics
// spec was edited. Bodies keep their own gravity.
func (p *Pipeline) Reconfigure(cfg Config) error {
	if p == nil {
		return nil
	}
	old := p.worker
	bp, worker := cfg.broadPhase()
	d := p.Collision.Detector
	d.BroadPhase = bp
	d.Matrix = cfg.Matrix
	p.worker = worker
	fresh := NewClock(cfg.FixedStep, cfg.MaxSteps)
	p.clock.Step, p.clock.MaxSteps = fresh.Step, fresh.MaxSteps
	p.cfg = cfg
	if old != nil {
		return old.Close()
	}
	return nil
}

// Close stops the broad phase worker, if any.
func (p *Pipeline) Close() error {
	if p == nil || p.worker == nil {
		return nil
	}
	return p.worker.Close()
}
