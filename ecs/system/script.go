package system

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/prefabs"
)

// ScriptSystem runs each entity's velocity script once per tick, ahead of
// collision detection. Scripts see these globals:
//
//	engine   get_velocity(), set_velocity(x, y), get_position(), touching(layer)
//	dt       tick length in seconds
//	elapsed  seconds simulated so far
//	state    map kept between ticks
//	vars     the component's Vars
type ScriptSystem struct {
	// Load resolves Script.Path. Defaults to prefabs.LoadScript.
	Load func(path string) ([]byte, error)

	elapsed float64
	cache   map[ecs.Entity]*scriptRuntime
}

type scriptRuntime struct {
	key      string
	compiled *tengo.Compiled
	state    *tengo.Map
}

func NewScriptSystem() *ScriptSystem {
	return &ScriptSystem{Load: prefabs.LoadScript}
}

func (ss *ScriptSystem) Update(_ context.Context, w *ecs.World, dt float64) error {
	if ss == nil || w == nil {
		return nil
	}
	if ss.cache == nil {
		ss.cache = make(map[ecs.Entity]*scriptRuntime)
	}
	ss.elapsed += dt

	var errs []error
	seen := make(map[ecs.Entity]bool)
	ecs.ForEach2(w, component.ScriptComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, sc *component.Script, rb *component.RigidBody) {
		seen[e] = true
		rt, err := ss.runtime(e, sc)
		if err != nil {
			log.Printf("script: entity=%s load error: %v", e, err)
			errs = append(errs, fmt.Errorf("entity %s: %w", e, err))
			return
		}
		if err := rt.run(w, e, rb, sc, dt, ss.elapsed); err != nil {
			log.Printf("script: entity=%s run error: %v", e, err)
			errs = append(errs, fmt.Errorf("entity %s: %w", e, err))
		}
	})

	for e := range ss.cache {
		if !seen[e] {
			delete(ss.cache, e)
		}
	}
	return errors.Join(errs...)
}

// Reset forgets compiled scripts and their state, e.g. after a reload.
func (ss *ScriptSystem) Reset() {
	if ss == nil {
		return
	}
	ss.cache = nil
	ss.elapsed = 0
}

func (ss *ScriptSystem) runtime(e ecs.Entity, sc *component.Script) (*scriptRuntime, error) {
	key := sc.Path
	if sc.Source != "" {
		key = "inline:" + sc.Source
	}
	if rt, ok := ss.cache[e]; ok && rt.key == key {
		return rt, nil
	}

	src := []byte(sc.Source)
	if sc.Source == "" {
		if sc.Path == "" {
			return nil, fmt.Errorf("script has neither path nor source")
		}
		load := ss.Load
		if load == nil {
			load = prefabs.LoadScript
		}
		data, err := load(sc.Path)
		if err != nil {
			return nil, err
		}
		src = data
	}

	script := tengo.NewScript(src)
	_ = script.Add("engine", map[string]any{})
	_ = script.Add("dt", 0.0)
	_ = script.Add("elapsed", 0.0)
	_ = script.Add("state", map[string]any{})
	_ = script.Add("vars", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	rt := &scriptRuntime{
		key:      key,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	ss.cache[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(w *ecs.World, e ecs.Entity, rb *component.RigidBody, sc *component.Script, dt, elapsed float64) error {
	vars := sc.Vars
	if vars == nil {
		vars = map[string]any{}
	}
	if err := rt.compiled.Set("engine", scriptEngine(w, e, rb)); err != nil {
		return err
	}
	if err := rt.compiled.Set("dt", dt); err != nil {
		return err
	}
	if err := rt.compiled.Set("elapsed", elapsed); err != nil {
		return err
	}
	if err := rt.compiled.Set("state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("vars", vars); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func scriptEngine(w *ecs.World, e ecs.Entity, rb *component.RigidBody) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["get_velocity"] = &tengo.UserFunction{Name: "get_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vectorObject(rb.Velocity), nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, ok := tengo.ToFloat64(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[0].TypeName()}
		}
		y, ok := tengo.ToFloat64(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[1].TypeName()}
		}
		rb.Velocity = cp.Vector{X: x, Y: y}
		return tengo.UndefinedValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return vectorObject(cp.Vector{}), nil
		}
		return vectorObject(t.Position()), nil
	}}

	values["touching"] = &tengo.UserFunction{Name: "touching", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		layer, ok := tengo.ToString(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		if len(CollisionsWithLayer(w, e, layer)) > 0 {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}
