package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/ecs/entity"
	"github.com/milk9111/collide2d/ecs/system"
	"github.com/milk9111/collide2d/physics"
	"github.com/milk9111/collide2d/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	nudgeSpeed = 120
	jumpSpeed  = 320
)

// Game steps a scene and draws its collision state. Space pauses, period
// single-steps while paused, R rebuilds the scene, arrows push the body
// named "hero".
type Game struct {
	sceneName   string
	physicsName string

	world    *ecs.World
	pipeline *physics.Pipeline
	watcher  *prefabs.Watcher
	camera   system.DebugCamera

	paused bool
	frames int
	last   physics.StepStats
}

func NewGame(sceneName, physicsName string, zoom float64, watch bool) (*Game, error) {
	cfg, err := physics.LoadConfig(physicsName)
	if err != nil {
		return nil, err
	}
	g := &Game{
		sceneName:   sceneName,
		physicsName: physicsName,
		pipeline:    physics.New(cfg),
		camera:      system.DebugCamera{Zoom: zoom},
	}
	if err := g.reloadScene(); err != nil {
		g.pipeline.Close()
		return nil, err
	}

	if watch {
		w, err := prefabs.NewWatcher(prefabs.DiskRoot, prefabs.DiskRoot+"/scenes", prefabs.DiskRoot+"/scripts")
		if err != nil {
			log.Printf("sandbox: hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) reloadScene() error {
	w := ecs.NewWorld()
	if _, err := entity.LoadScene(w, g.sceneName, g.pipeline.Config().EntityOptions()); err != nil {
		return fmt.Errorf("sandbox: load scene %s: %w", g.sceneName, err)
	}
	g.world = w
	g.pipeline.Script.Reset()
	g.pipeline.Clock().Reset()
	return nil
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reloadScene(); err != nil {
			log.Print(err)
		}
	}
	g.nudgeHero()

	ctx := context.Background()
	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
			stats, err := g.pipeline.Step(ctx, g.world, g.pipeline.Clock().Step)
			g.report(stats, err)
		}
		return nil
	}

	n, stats, err := g.pipeline.Advance(ctx, g.world, 1/float64(ebiten.TPS()))
	if n > 0 {
		g.report(stats, err)
	}
	return nil
}

func (g *Game) report(stats physics.StepStats, err error) {
	g.last = stats
	if err != nil {
		log.Printf("sandbox: tick %d: %v", stats.Tick, err)
	}
}

func (g *Game) nudgeHero() {
	hero, ok := g.findNamed("hero")
	if !ok {
		return
	}
	rb, ok := ecs.Get(g.world, hero, component.RigidBodyComponent.Kind())
	if !ok {
		return
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		rb.Velocity.X = -nudgeSpeed
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		rb.Velocity.X = nudgeSpeed
	default:
		rb.Velocity.X = 0
	}
	// Rollback zeroes vy whenever the hero is standing on something.
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && rb.Velocity.Y == 0 {
		rb.Velocity = rb.Velocity.Add(cp.Vector{Y: jumpSpeed})
	}
}

func (g *Game) findNamed(name string) (ecs.Entity, bool) {
	var found ecs.Entity
	ecs.ForEach(g.world, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if found == 0 && n.Value == name {
			found = e
		}
	})
	return found, found != 0
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(name)
		case err := <-g.watcher.Errors:
			log.Printf("sandbox: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) applyChange(name string) {
	if prefabs.Matches(name, g.physicsName) {
		cfg, err := physics.LoadConfig(g.physicsName)
		if err != nil {
			log.Printf("sandbox: reload physics: %v", err)
			return
		}
		if err := g.pipeline.Reconfigure(cfg); err != nil {
			log.Printf("sandbox: reconfigure: %v", err)
		}
		log.Printf("sandbox: physics reloaded")
		return
	}
	if err := g.reloadScene(); err != nil {
		log.Print(err)
		return
	}
	log.Printf("sandbox: %s changed, scene rebuilt", name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	system.DrawPhysicsDebug(g.world, g.pipeline.Collision, screen, g.camera)

	status := "running"
	if g.paused {
		status = "paused (. to step)"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("tick %d  %s  FPS %.1f  degraded %v",
		g.last.Tick, status, ebiten.ActualFPS(), g.last.Degraded), 10, baseHeight-20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	_ = g.pipeline.Close()
}
