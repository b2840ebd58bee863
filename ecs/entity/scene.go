package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/levels"
	"github.com/milk9111/collide2d/prefabs"
)

var ErrUnknownParent = errors.New("entity: unknown parent")

// LoadScene reads a scene spec and builds it into w.
func LoadScene(w *ecs.World, name string, opts Options) ([]ecs.Entity, error) {
	scene, err := prefabs.LoadSceneSpec(name)
	if err != nil {
		return nil, err
	}
	return BuildScene(w, scene, opts)
}

// BuildScene builds the scene's level, then its entities in order, then links
// parents by name.
func BuildScene(w *ecs.World, scene prefabs.SceneSpec, opts Options) ([]ecs.Entity, error) {
	var created []ecs.Entity
	if scene.Level != "" {
		lvl, err := levels.LoadLevelFromFS(scene.Level)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
		}
		created, err = LoadLevelToWorld(w, lvl, opts)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
		}
	}

	for i, spec := range scene.Entities {
		e, err := BuildEntity(w, spec, opts)
		if err != nil {
			return created, fmt.Errorf("scene %q: entity %d: %w", scene.Name, i, err)
		}
		created = append(created, e)
	}

	if err := ResolveParents(w); err != nil {
		return created, fmt.Errorf("scene %q: %w", scene.Name, err)
	}
	return created, nil
}

// ResolveParents points every unlinked Parent at the entity carrying its
// name. When names repeat the first entity wins.
func ResolveParents(w *ecs.World) error {
	byName := make(map[string]ecs.Entity)
	ecs.ForEach(w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if _, ok := byName[n.Value]; !ok {
			byName[n.Value] = e
		}
	})

	var errs []error
	ecs.ForEach(w, component.ParentComponent.Kind(), func(e ecs.Entity, p *component.Parent) {
		if p.Entity != 0 && ecs.IsAlive(w, ecs.OwnerEntity(p.Entity)) {
			return
		}
		target, ok := byName[p.Name]
		if !ok || target == e {
			errs = append(errs, fmt.Errorf("%w %q for entity %s", ErrUnknownParent, p.Name, e))
			return
		}
		p.Entity = target.Owner()
	})
	return errors.Join(errs...)
}
