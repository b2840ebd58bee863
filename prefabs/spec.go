package prefabs

import (
	"errors"
	"fmt"
	"time"

	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/common"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// PhysicsSpec configures the simulation. Zero fields take defaults.
type PhysicsSpec struct {
	// Gravity is used by rigid bodies that do not set their own.
	Gravity float64 `yaml:"gravity"`
	// CellSize of the broad phase grid. Zero sizes cells from the shapes.
	CellSize   float64        `yaml:"cell_size"`
	FixedStep  float64        `yaml:"fixed_step"`
	MaxSteps   int            `yaml:"max_steps"`
	TileSize   float64        `yaml:"tile_size"`
	BroadPhase BroadPhaseSpec `yaml:"broad_phase"`
	// CollisionMatrix lists the layer pairs allowed to collide. Leaving it
	// out lets every layer collide.
	CollisionMatrix collision.Matrix `yaml:"collision_matrix"`
}

type BroadPhaseSpec struct {
	// Worker runs the grid on its own goroutine.
	Worker    bool `yaml:"worker"`
	TimeoutMS int  `yaml:"timeout_ms"`
}

func (b BroadPhaseSpec) Timeout() time.Duration {
	if b.TimeoutMS <= 0 {
		return collision.DefaultWorkerTimeout
	}
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// WithDefaults fills unset fields.
func (s PhysicsSpec) WithDefaults() PhysicsSpec {
	if s.Gravity == 0 {
		s.Gravity = common.Gravity
	}
	if s.FixedStep <= 0 {
		s.FixedStep = common.FixedStep
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = common.MaxCatchUpSteps
	}
	if s.TileSize <= 0 {
		s.TileSize = common.TileSize
	}
	return s
}

func (s PhysicsSpec) Validate() error {
	switch {
	case s.Gravity < 0:
		return fmt.Errorf("%w: gravity %g is negative", ErrInvalidSpec, s.Gravity)
	case s.CellSize < 0:
		return fmt.Errorf("%w: cell_size %g is negative", ErrInvalidSpec, s.CellSize)
	case s.FixedStep < 0:
		return fmt.Errorf("%w: fixed_step %g is negative", ErrInvalidSpec, s.FixedStep)
	case s.BroadPhase.TimeoutMS < 0:
		return fmt.Errorf("%w: broad_phase.timeout_ms %d is negative", ErrInvalidSpec, s.BroadPhase.TimeoutMS)
	}
	return nil
}

// LoadPhysicsSpec reads, validates and defaults a physics config.
func LoadPhysicsSpec(filename string) (PhysicsSpec, error) {
	spec, err := LoadSpec[PhysicsSpec](filename)
	if err != nil {
		return PhysicsSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return PhysicsSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec.WithDefaults(), nil
}

// SceneSpec lists the entities to build, plus an optional tile level whose
// entity markers are expanded into prefabs.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Level    string            `yaml:"level"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}
