package physics

import (
	"time"

	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/common"
	"github.com/milk9111/collide2d/ecs/entity"
	"github.com/milk9111/collide2d/prefabs"
)

// Config is the runtime form of prefabs.PhysicsSpec.
type Config struct {
	Gravity   float64
	CellSize  float64
	FixedStep float64
	MaxSteps  int
	TileSize  float64

	// Worker runs the broad phase on its own goroutine, each call bounded by
	// Timeout.
	Worker  bool
	Timeout time.Duration

	Matrix collision.Matrix

	// DisableScripts skips the script system.
	DisableScripts bool
}

func DefaultConfig() Config {
	return Config{
		Gravity:   common.Gravity,
		FixedStep: common.FixedStep,
		MaxSteps:  common.MaxCatchUpSteps,
		TileSize:  common.TileSize,
		Timeout:   collision.DefaultWorkerTimeout,
	}
}

func ConfigFromSpec(spec prefabs.PhysicsSpec) Config {
	spec = spec.WithDefaults()
	return Config{
		Gravity:   spec.Gravity,
		CellSize:  spec.CellSize,
		FixedStep: spec.FixedStep,
		MaxSteps:  spec.MaxSteps,
		TileSize:  spec.TileSize,
		Worker:    spec.BroadPhase.Worker,
		Timeout:   spec.BroadPhase.Timeout(),
		Matrix:    spec.CollisionMatrix,
	}
}

// LoadConfig reads a physics spec through prefabs.
func LoadConfig(name string) (Config, error) {
	spec, err := prefabs.LoadPhysicsSpec(name)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromSpec(spec), nil
}

// EntityOptions passes the scene-wide defaults to the entity builders.
func (c Config) EntityOptions() entity.Options {
	return entity.Options{Gravity: c.Gravity, TileSize: c.TileSize}
}

func (c Config) broadPhase() (collision.BroadPhase, *collision.Worker) {
	if c.Worker {
		w := collision.NewWorker(c.CellSize, c.Timeout)
		return w, w
	}
	return collision.NewGrid(c.CellSize), nil
}
