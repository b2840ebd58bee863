package ecs

import (
	"context"
	"errors"
	"fmt"
)

// System advances one concern of the world by dt seconds.
type System interface {
	Update(ctx context.Context, w *World, dt float64) error
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(ctx context.Context, w *World, dt float64) error

func (f SystemFunc) Update(ctx context.Context, w *World, dt float64) error {
	return f(ctx, w, dt)
}

type namedSystem struct {
	name   string
	system System
}

// Scheduler runs systems in the order they were added. Each system finishes
// before the next one starts.
type Scheduler struct {
	systems []namedSystem
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Add(name string, system System) {
	if s == nil || system == nil {
		return
	}
	s.systems = append(s.systems, namedSystem{name: name, system: system})
}

// Update runs every system once. ctx is only consulted before the first
// system: a tick that has started always runs to the end. Errors from
// individual systems are joined and do not stop later systems.
func (s *Scheduler) Update(ctx context.Context, w *World, dt float64) error {
	if s == nil || w == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for _, ns := range s.systems {
		if err := ns.system.Update(ctx, w, dt); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ns.name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the system names in run order.
func (s *Scheduler) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.systems))
	for _, ns := range s.systems {
		names = append(names, ns.name)
	}
	return names
}
