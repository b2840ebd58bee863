package component

import "github.com/jakecoffman/cp"

// Transform is an entity's world position. Y grows upward.
type Transform struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

func (t *Transform) Position() cp.Vector {
	if t == nil {
		return cp.Vector{}
	}
	return cp.Vector{X: t.X, Y: t.Y}
}

func (t *Transform) Move(d cp.Vector) {
	if t == nil {
		return
	}
	t.X += d.X
	t.Y += d.Y
}

var TransformComponent = NewComponent[Transform]()
