package physics

// Collision describes one contact found during a step. Normal is a unit
// vector pointing from A to B; Depth is the overlap along it.
type Collision struct {
	A, B         BodyID
	BodyA, BodyB *Body
	Normal       Vector2D
	Depth        float64
	Contact      Vector2D
}

// Sensor reports whether either body is a sensor, so the contact is only
// reported and never resolved.
func (c Collision) Sensor() bool {
	return c.BodyA.Sensor || c.BodyB.Sensor
}

// ContactEvent is published after a step for every collision it found.
type ContactEvent struct {
	A, B    BodyID
	Normal  Vector2D
	Contact Vector2D
	Sensor  bool
}

// Other returns the partner of id in the contact.
func (e ContactEvent) Other(id BodyID) (BodyID, bool) {
	switch id {
	case e.A:
		return e.B, true
	case e.B:
		return e.A, true
	}
	return 0, false
}

// EventQueue is a FIFO of contact events, refilled every step.
type EventQueue struct {
	items []ContactEvent
}

// Push adds an event.
func (q *EventQueue) Push(evt ContactEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []ContactEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = q.items[:0]
}
