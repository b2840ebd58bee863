package prefabs

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// EntityBuildSpec is one entity: a component map, optionally layered on top
// of a prefab file whose components it overrides key by key.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Prefab     string         `yaml:"prefab"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// Resolve merges the prefab chain into a single spec. Prefabs may extend
// other prefabs; cycles are rejected.
func (s EntityBuildSpec) Resolve() (EntityBuildSpec, error) {
	return s.resolve(map[string]bool{})
}

func (s EntityBuildSpec) resolve(seen map[string]bool) (EntityBuildSpec, error) {
	if s.Prefab == "" {
		return s, nil
	}
	key := cleanPrefabPath(s.Prefab)
	if seen[key] {
		return EntityBuildSpec{}, fmt.Errorf("%w: prefab cycle through %s", ErrInvalidSpec, s.Prefab)
	}
	seen[key] = true

	base, err := LoadEntityBuildSpec(s.Prefab)
	if err != nil {
		return EntityBuildSpec{}, err
	}
	base, err = base.resolve(seen)
	if err != nil {
		return EntityBuildSpec{}, err
	}

	out := EntityBuildSpec{Name: s.Name, Components: make(map[string]any, len(base.Components)+len(s.Components))}
	if out.Name == "" {
		out.Name = base.Name
	}
	maps.Copy(out.Components, base.Components)
	for k, v := range s.Components {
		bv, ok := out.Components[k].(map[string]any)
		ov, ok2 := v.(map[string]any)
		if ok && ok2 {
			merged := maps.Clone(bv)
			maps.Copy(merged, ov)
			out.Components[k] = merged
			continue
		}
		out.Components[k] = v
	}
	return out, nil
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type ParentComponentSpec struct {
	Name     string  `yaml:"name"`
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	Rotation float64 `yaml:"rotation"`
}

type ShapeComponentSpec struct {
	Kind     string       `yaml:"kind"`
	OffsetX  float64      `yaml:"offset_x"`
	OffsetY  float64      `yaml:"offset_y"`
	Width    float64      `yaml:"width"`
	Height   float64      `yaml:"height"`
	Radius   float64      `yaml:"radius"`
	Rotation float64      `yaml:"rotation"`
	Vertices [][2]float64 `yaml:"vertices"`
}

type TilemapComponentSpec struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`
	Tiles    []int   `yaml:"tiles"`
	Merge    bool    `yaml:"merge"`
}

type ColliderComponentSpec struct {
	Shapes       []ShapeComponentSpec  `yaml:"shapes"`
	Tilemap      *TilemapComponentSpec `yaml:"tilemap"`
	Level        string                `yaml:"level"`
	Merge        bool                  `yaml:"merge"`
	Physics      bool                  `yaml:"physics"`
	Layer        string                `yaml:"layer"`
	IgnoreLayers []string              `yaml:"ignore_layers"`
	Passive      bool                  `yaml:"passive"`
}

type RigidBodyComponentSpec struct {
	Type string `yaml:"type"`
	// Gravity nil means the world default.
	Gravity         *float64 `yaml:"gravity"`
	VelocityX       float64  `yaml:"velocity_x"`
	VelocityY       float64  `yaml:"velocity_y"`
	LayersToCollide []string `yaml:"layers_to_collide"`
}

type ScriptComponentSpec struct {
	Path   string         `yaml:"path"`
	Source string         `yaml:"source"`
	Vars   map[string]any `yaml:"vars"`
}
