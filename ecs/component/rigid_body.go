package component

import "github.com/jakecoffman/cp"

type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
)

func (b BodyType) String() string {
	if b == BodyDynamic {
		return "dynamic"
	}
	return "static"
}

// UnmarshalText accepts "static" and "dynamic".
func (b *BodyType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "static", "":
		*b = BodyStatic
	case "dynamic":
		*b = BodyDynamic
	default:
		return ErrUnknownBodyType
	}
	return nil
}

// RigidBody moves its entity each tick. Static bodies never move but can
// still be collided with.
type RigidBody struct {
	Type     BodyType  `yaml:"type"`
	Velocity cp.Vector `yaml:"-"`
	// Gravity is the downward acceleration applied each tick. Zero disables
	// it for this body.
	Gravity float64 `yaml:"gravity"`
	// LayersToCollide limits rollback to these remote layers. Empty means
	// every layer.
	LayersToCollide []string `yaml:"layers_to_collide"`
}

func (rb *RigidBody) Dynamic() bool {
	return rb != nil && rb.Type == BodyDynamic
}

// CollidesWith reports whether rollback considers the remote layer.
func (rb *RigidBody) CollidesWith(layer string) bool {
	if rb == nil {
		return false
	}
	if len(rb.LayersToCollide) == 0 {
		return true
	}
	for _, l := range rb.LayersToCollide {
		if l == layer {
			return true
		}
	}
	return false
}

var RigidBodyComponent = NewComponent[RigidBody]()
