package physics

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// BodyState is an immutable copy of what a renderer needs from a body.
type BodyState struct {
	ID       BodyID
	Position Vector2D
	Velocity Vector2D
	Shape    Shape
	Sensor   bool
}

// Snapshot is a copy of the world taken between steps, safe to hand to
// another goroutine.
type Snapshot struct {
	Step   uint64
	Bodies []BodyState
}

// Snapshot copies the current body states in insertion order.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Bodies: make([]BodyState, len(w.bodies))}
	for i, b := range w.bodies {
		s.Bodies[i] = BodyState{
			ID:       w.ids[i],
			Position: b.Position,
			Velocity: b.Velocity,
			Shape:    b.Shape,
			Sensor:   b.Sensor,
		}
	}
	return s
}

// Snapshot copies the world and stamps it with the engine's step count.
func (e *Engine) Snapshot() Snapshot {
	s := e.world.Snapshot()
	s.Step = e.steps
	return s
}

// Digest fingerprints positions and velocities. Two runs fed the same scene
// and the same dt sequence produce the same digest.
func (s Snapshot) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for _, b := range s.Bodies {
		binary.LittleEndian.PutUint64(buf[:], uint64(b.ID))
		_, _ = h.Write(buf[:])
		put(b.Position.X)
		put(b.Position.Y)
		put(b.Velocity.X)
		put(b.Velocity.Y)
	}
	return h.Sum64()
}
