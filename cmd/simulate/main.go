package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"

	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/ecs/entity"
	"github.com/milk9111/collide2d/physics"
	"github.com/milk9111/collide2d/prefabs"
)

type options struct {
	scene   string
	physics string
	ticks   int
	dt      float64
	worker  bool
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "scenes/sandbox", "scene spec in prefabs/")
	flag.StringVar(&opts.physics, "physics", "physics", "physics spec in prefabs/")
	flag.IntVar(&opts.ticks, "ticks", 300, "number of ticks to run")
	flag.Float64Var(&opts.dt, "dt", 0, "tick length in seconds (0 uses the physics spec)")
	flag.BoolVar(&opts.worker, "worker", false, "run the broad phase on its own goroutine")
	flag.BoolVar(&opts.verbose, "v", false, "log every tick")
	watch := flag.Bool("watch", false, "rerun whenever a spec or script changes")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := simulate(ctx, opts); err != nil {
		log.Print(err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	w, err := prefabs.NewWatcher(prefabs.DiskRoot, prefabs.DiskRoot+"/scenes", prefabs.DiskRoot+"/scripts")
	if err != nil {
		log.Fatalf("simulate: watch: %v", err)
	}
	defer w.Close()
	log.Printf("simulate: watching %s", prefabs.DiskRoot)

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			log.Printf("simulate: %s changed", name)
			if err := simulate(ctx, opts); err != nil {
				log.Print(err)
			}
		case err := <-w.Errors:
			log.Printf("simulate: watch: %v", err)
		}
	}
}

func simulate(ctx context.Context, opts options) error {
	cfg, err := physics.LoadConfig(opts.physics)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	if opts.worker {
		cfg.Worker = true
	}
	dt := opts.dt
	if dt <= 0 {
		dt = cfg.FixedStep
	}

	world := ecs.NewWorld()
	if _, err := entity.LoadScene(world, opts.scene, cfg.EntityOptions()); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	p := physics.New(cfg)
	defer p.Close()

	var degraded int
	for i := 0; i < opts.ticks; i++ {
		stats, err := p.Step(ctx, world, dt)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("simulate: tick %d: %v", stats.Tick, err)
		}
		if stats.Degraded {
			degraded++
		}
		if opts.verbose {
			log.Printf("simulate: tick=%d shapes=%d tests=%d collisions=%d records=%d elapsed=%s",
				stats.Tick, stats.Collision.Shapes, stats.Collision.Tests, stats.Collision.Collisions, stats.Records, stats.Elapsed)
		}
	}

	log.Printf("simulate: %s ran %d ticks of %.4fs (%d degraded)", opts.scene, p.Ticks(), dt, degraded)
	for _, line := range bodyReport(world) {
		log.Print(line)
	}
	for _, rec := range p.Records() {
		log.Printf("simulate: record %s", rec)
	}
	return nil
}

func bodyReport(w *ecs.World) []string {
	var lines []string
	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if !rb.Dynamic() {
			return
		}
		name := e.String()
		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
			name = n.Value
		}
		lines = append(lines, fmt.Sprintf("simulate: %-12s pos=(%.2f, %.2f) vel=(%.2f, %.2f)", name, t.X, t.Y, rb.Velocity.X, rb.Velocity.Y))
	})
	sort.Strings(lines)
	return lines
}
