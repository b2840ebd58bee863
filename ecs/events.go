package ecs

import "github.com/milk9111/collide2d/collision"

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const EventCollision = "collision"

// CollisionEvent is published once per directional collision record.
type CollisionEvent struct {
	Local      Entity
	Remote     Entity
	Layer      string
	Resolution collision.Resolution
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Collisions returns the queued collision events without draining.
func (q *EventQueue) Collisions() []CollisionEvent {
	if q == nil {
		return nil
	}
	var out []CollisionEvent
	for _, evt := range q.items {
		if c, ok := evt.Data.(CollisionEvent); ok && evt.Type == EventCollision {
			out = append(out, c)
		}
	}
	return out
}

// Clear drops events left over from the previous tick.
func (q *EventQueue) Clear() {
	if q == nil {
		return
	}
	q.items = nil
}
