package physics

import "fmt"

// World owns the live bodies in insertion order and the global gravity.
// It is not safe for concurrent use; readers on other goroutines take a
// Snapshot after a step completes.
type World struct {
	Gravity Vector2D

	slots  slotStore
	ids    []BodyID
	bodies []*Body
	byID   map[BodyID]*Body
}

// NewWorld creates an empty world.
func NewWorld(gravity Vector2D) *World {
	return &World{
		Gravity: gravity,
		byID:    make(map[BodyID]*Body),
	}
}

// Add validates b and takes ownership of it.
func (w *World) Add(b *Body) (BodyID, error) {
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("add body: %w", err)
	}
	for _, existing := range w.bodies {
		if existing == b {
			return 0, fmt.Errorf("add body: already in world: %w", ErrInvalidRange)
		}
	}
	id := w.slots.create()
	w.ids = append(w.ids, id)
	w.bodies = append(w.bodies, b)
	if w.byID == nil {
		w.byID = make(map[BodyID]*Body)
	}
	w.byID[id] = b
	return id, nil
}

// Remove drops the body; the remaining bodies keep their order.
func (w *World) Remove(id BodyID) bool {
	if !w.slots.destroy(id) {
		return false
	}
	delete(w.byID, id)
	for i, cur := range w.ids {
		if cur != id {
			continue
		}
		copy(w.ids[i:], w.ids[i+1:])
		w.ids = w.ids[:len(w.ids)-1]
		copy(w.bodies[i:], w.bodies[i+1:])
		w.bodies[len(w.bodies)-1] = nil
		w.bodies = w.bodies[:len(w.bodies)-1]
		break
	}
	return true
}

// Reset removes every body. Outstanding handles stop resolving.
func (w *World) Reset() {
	for _, id := range w.ids {
		w.slots.destroy(id)
		delete(w.byID, id)
	}
	clear(w.bodies)
	w.ids = w.ids[:0]
	w.bodies = w.bodies[:0]
}

// Body resolves a handle.
func (w *World) Body(id BodyID) (*Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Lookup resolves a handle or returns ErrUnknownBody.
func (w *World) Lookup(id BodyID) (*Body, error) {
	b, ok := w.byID[id]
	if !ok {
		return nil, fmt.Errorf("body %s: %w", id, ErrUnknownBody)
	}
	return b, nil
}

func (w *World) Len() int {
	return len(w.bodies)
}

// Each visits bodies in insertion order until fn returns false.
func (w *World) Each(fn func(BodyID, *Body) bool) {
	for i, b := range w.bodies {
		if !fn(w.ids[i], b) {
			return
		}
	}
}

// Validate checks every body, used before a simulation starts.
func (w *World) Validate() error {
	for i, b := range w.bodies {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("body %s: %w", w.ids[i], err)
		}
	}
	if !w.Gravity.isFinite() {
		return fmt.Errorf("gravity %v: %w", w.Gravity, ErrInvalidRange)
	}
	return nil
}
