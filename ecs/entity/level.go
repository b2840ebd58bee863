package entity

import (
	"fmt"
	"maps"

	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/levels"
	"github.com/milk9111/collide2d/prefabs"
)

// LevelLayer is the collider layer given to level geometry.
const LevelLayer = "world"

// LoadLevelToWorld adds one static entity carrying the level's solid tiles and
// builds the prefab named by each level entity marker at its tile centre.
// Marker props override the prefab's components.
func LoadLevelToWorld(w *ecs.World, lvl *levels.Level, opts Options) ([]ecs.Entity, error) {
	if w == nil || lvl == nil {
		return nil, fmt.Errorf("load level: nil world or level")
	}
	opts = opts.withDefaults()
	size := levelTileSize(lvl, opts)

	ground := ecs.CreateEntity(w)
	created := []ecs.Entity{ground}
	fail := func(err error) ([]ecs.Entity, error) {
		for _, e := range created {
			ecs.DestroyEntity(w, e)
		}
		return nil, err
	}

	if err := ecs.Add(w, ground, component.NameComponent.Kind(), &component.Name{Value: "level"}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, ground, component.TransformComponent.Kind(), &component.Transform{}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, ground, component.ColliderComponent.Kind(), &component.Collider{
		Tilemap: lvl.Tilemap(size, true),
		Physics: true,
		Layer:   LevelLayer,
		// Tiles never move, so they only need to be found by others.
		Passive: true,
	}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, ground, component.RigidBodyComponent.Kind(), &component.RigidBody{Type: component.BodyStatic}); err != nil {
		return fail(err)
	}

	for i, marker := range lvl.Entities {
		x, y := lvl.EntityPosition(marker, size)
		components := make(map[string]any, len(marker.Props)+1)
		maps.Copy(components, marker.Props)
		tr, _ := components["transform"].(map[string]any)
		tr = maps.Clone(tr)
		if tr == nil {
			tr = map[string]any{}
		}
		tr["x"], tr["y"] = x, y
		components["transform"] = tr

		e, err := BuildEntity(w, prefabs.EntityBuildSpec{
			Name:       fmt.Sprintf("%s_%d", marker.Type, i),
			Prefab:     marker.Type,
			Components: components,
		}, opts)
		if err != nil {
			return fail(fmt.Errorf("load level: entity %d: %w", i, err))
		}
		created = append(created, e)
	}
	return created, nil
}
