package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/common"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/levels"
	"github.com/milk9111/collide2d/prefabs"
)

var ErrUnknownComponent = errors.New("entity: unknown component")

// Options carries scene-wide defaults into the component builders.
type Options struct {
	// Gravity is given to rigid bodies that leave theirs unset.
	Gravity  float64
	TileSize float64
}

func (o Options) withDefaults() Options {
	if o.Gravity == 0 {
		o.Gravity = common.Gravity
	}
	if o.TileSize <= 0 {
		o.TileSize = common.TileSize
	}
	return o
}

type buildContext struct {
	Name    string
	Options Options
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":  addTransform,
	"parent":     addParent,
	"collider":   addCollider,
	"rigid_body": addRigidBody,
	"script":     addScript,
}

var componentBuildOrder = []string{
	"transform",
	"parent",
	"collider",
	"rigid_body",
	"script",
}

// BuildEntity resolves spec's prefab chain and adds its components to a new
// entity. On failure nothing is left in the world.
func BuildEntity(w *ecs.World, spec prefabs.EntityBuildSpec, opts Options) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	label := spec.Name
	if label == "" {
		label = spec.Prefab
	}
	resolved, err := spec.Resolve()
	if err != nil {
		return 0, fmt.Errorf("build entity: resolve %q: %w", label, err)
	}
	if len(resolved.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", label)
	}

	names := make([]string, 0, len(resolved.Components))
	for name := range resolved.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: %w %q", label, ErrUnknownComponent, name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return buildRank(names[i]) < buildRank(names[j])
	})

	e := ecs.CreateEntity(w)
	ctx := &buildContext{Name: resolved.Name, Options: opts.withDefaults()}
	if resolved.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: resolved.Name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}
	for _, name := range names {
		if err := componentRegistry[name](w, e, resolved.Components[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", label, name, err)
		}
	}
	return e, nil
}

func buildRank(name string) int {
	for i, n := range componentBuildOrder {
		if n == name {
			return i
		}
	}
	return len(componentBuildOrder)
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

// addParent records the parent by name; ResolveParents links it once every
// entity of the scene exists.
func addParent(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ParentComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Name == "" {
		return fmt.Errorf("parent has no name")
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{}); err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.ParentComponent.Kind(), &component.Parent{
		Name:     spec.Name,
		OffsetX:  spec.OffsetX,
		OffsetY:  spec.OffsetY,
		Rotation: spec.Rotation,
	})
}

func addCollider(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ColliderComponentSpec](raw)
	if err != nil {
		return err
	}
	c := &component.Collider{
		Physics:      spec.Physics,
		Layer:        spec.Layer,
		IgnoreLayers: spec.IgnoreLayers,
		Passive:      spec.Passive,
		Level:        spec.Level,
	}
	for _, s := range spec.Shapes {
		c.Shapes = append(c.Shapes, component.ShapeSpec{
			Kind:     s.Kind,
			OffsetX:  s.OffsetX,
			OffsetY:  s.OffsetY,
			Width:    s.Width,
			Height:   s.Height,
			Radius:   s.Radius,
			Rotation: s.Rotation,
			Vertices: s.Vertices,
		})
	}
	switch {
	case spec.Tilemap != nil:
		tm := spec.Tilemap
		size := tm.TileSize
		if size <= 0 {
			size = ctx.Options.TileSize
		}
		if len(tm.Tiles) != tm.Width*tm.Height {
			return fmt.Errorf("tilemap has %d tiles, want %d", len(tm.Tiles), tm.Width*tm.Height)
		}
		c.Tilemap = &component.Tilemap{
			Width:    tm.Width,
			Height:   tm.Height,
			TileSize: size,
			Tiles:    tm.Tiles,
			Merge:    tm.Merge || spec.Merge,
		}
	case spec.Level != "":
		lvl, err := levels.LoadLevelFromFS(spec.Level)
		if err != nil {
			return err
		}
		c.Tilemap = lvl.Tilemap(levelTileSize(lvl, ctx.Options), spec.Merge)
	}
	if len(c.Shapes) == 0 && c.Tilemap == nil {
		return fmt.Errorf("collider has no shapes")
	}
	return ecs.Add(w, e, component.ColliderComponent.Kind(), c)
}

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.RigidBodyComponentSpec](raw)
	if err != nil {
		return err
	}
	rb := &component.RigidBody{
		Velocity:        cp.Vector{X: spec.VelocityX, Y: spec.VelocityY},
		LayersToCollide: spec.LayersToCollide,
	}
	if err := rb.Type.UnmarshalText([]byte(spec.Type)); err != nil {
		return fmt.Errorf("%w: %q", err, spec.Type)
	}
	switch {
	case spec.Gravity != nil:
		rb.Gravity = *spec.Gravity
	case rb.Dynamic():
		rb.Gravity = ctx.Options.Gravity
	}
	if rb.Gravity < 0 {
		return fmt.Errorf("negative gravity %g", rb.Gravity)
	}
	return ecs.Add(w, e, component.RigidBodyComponent.Kind(), rb)
}

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScriptComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Path == "" && spec.Source == "" {
		return fmt.Errorf("script needs a path or source")
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{
		Path:   spec.Path,
		Source: spec.Source,
		Vars:   spec.Vars,
	})
}

func levelTileSize(lvl *levels.Level, opts Options) float64 {
	if lvl.TileSize > 0 {
		return lvl.TileSize
	}
	return opts.TileSize
}
