package component

import (
	"errors"
	"reflect"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrUnknownBodyType      = errors.New("component: unknown body type")
)

// ComponentID keys a World's stores. Zero is never assigned.
type ComponentID uint32

var lastComponentID atomic.Uint32

// ComponentKind names one store in a World. Two kinds of the same Go type
// are still two stores, so Transform and a second Transform-typed kind never
// share data.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(lastComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

// Valid is false for the zero kind, which was never registered.
func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// Name is the Go type name of T, used in build and scheduler errors.
func (k ComponentKind[T]) Name() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}

// ComponentHandle is declared once per component file as a package var, for
// example ColliderComponent, and handed to ecs.Add/Get/ForEach via Kind.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
