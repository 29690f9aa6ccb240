package physics

import (
	"fmt"
	"math"
)

// BodyOptions describes a body before it is validated by NewBody.
type BodyOptions struct {
	Position    Vector2D
	Velocity    Vector2D
	Mass        float64
	Restitution float64
	Friction    float64
	// Damping is the fraction of velocity kept per second. Zero means 1 (no drag).
	Damping float64
	// MaxSpeed caps the speed after integration. Zero means unlimited.
	MaxSpeed float64
	// Sensor bodies report contacts but are never pushed or bounced.
	Sensor bool
	Shape  Shape
}

// Body is a simulated particle with collision geometry. Mass 0 makes it
// static: it exerts impulses but never receives them and never integrates.
type Body struct {
	Position     Vector2D
	Velocity     Vector2D
	Acceleration Vector2D

	Mass        float64
	Restitution float64
	Friction    float64
	// Damping is the fraction of velocity kept per second. Zero means 1 (no drag).
	Damping  float64
	MaxSpeed float64
	Sensor   bool

	Shape Shape
}

// NewBody validates opts and returns the body. Out of range parameters are
// rejected, never clamped.
func NewBody(opts BodyOptions) (*Body, error) {
	b := &Body{
		Position:    opts.Position,
		Velocity:    opts.Velocity,
		Mass:        opts.Mass,
		Restitution: opts.Restitution,
		Friction:    opts.Friction,
		Damping:     opts.Damping,
		MaxSpeed:    opts.MaxSpeed,
		Sensor:      opts.Sensor,
		Shape:       opts.Shape,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks every invariant of the body.
func (b *Body) Validate() error {
	if b == nil {
		return fmt.Errorf("nil body: %w", ErrInvalidRange)
	}
	if b.Shape == nil {
		return fmt.Errorf("body without shape: %w", ErrInvalidRange)
	}
	if err := b.Shape.validate(); err != nil {
		return err
	}
	if !isFinite(b.Mass) || b.Mass < 0 {
		return fmt.Errorf("mass %g: %w", b.Mass, ErrInvalidRange)
	}
	if math.IsNaN(b.Restitution) || b.Restitution < 0 || b.Restitution > 1 {
		return fmt.Errorf("restitution %g: %w", b.Restitution, ErrInvalidRange)
	}
	if !isFinite(b.Friction) || b.Friction < 0 {
		return fmt.Errorf("friction %g: %w", b.Friction, ErrInvalidRange)
	}
	if math.IsNaN(b.Damping) || b.Damping < 0 || b.Damping > 1 {
		return fmt.Errorf("damping %g: %w", b.Damping, ErrInvalidRange)
	}
	if !isFinite(b.MaxSpeed) || b.MaxSpeed < 0 {
		return fmt.Errorf("max speed %g: %w", b.MaxSpeed, ErrInvalidRange)
	}
	if !b.Position.isFinite() || !b.Velocity.isFinite() || !b.Acceleration.isFinite() {
		return fmt.Errorf("non-finite state: %w", ErrInvalidRange)
	}
	return nil
}

// InverseMass is 0 for static bodies and 1/Mass otherwise.
func (b *Body) InverseMass() float64 {
	if b.Mass == 0 {
		return 0
	}
	return 1 / b.Mass
}

func (b *Body) hasDrag() bool {
	return b.Damping > 0 && b.Damping < 1
}

func (b *Body) IsStatic() bool {
	return b.Mass == 0
}

// ApplyForce accumulates f into the acceleration for the current step.
// Callers divide by mass themselves; gravity is added as is.
func (b *Body) ApplyForce(f Vector2D) {
	b.Acceleration = b.Acceleration.Add(f)
}

// Integrate advances the body by dt seconds using semi-implicit Euler.
// Acceleration is cleared afterwards; forces do not persist across steps.
func (b *Body) Integrate(dt float64) {
	defer func() { b.Acceleration = Vector2D{} }()
	if b.IsStatic() {
		return
	}
	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
	if b.hasDrag() {
		b.Velocity = b.Velocity.Scale(math.Pow(b.Damping, dt))
	}
	if b.MaxSpeed > 0 {
		if speed := b.Velocity.Magnitude(); speed > b.MaxSpeed {
			b.Velocity = b.Velocity.Scale(b.MaxSpeed / speed)
		}
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

func (b *Body) SetVelocity(v Vector2D) {
	b.Velocity = v
}

func (b *Body) SetVelocityY(vy float64) {
	b.Velocity.Y = vy
}

// MoveTo places the body at p. Static paddles are driven this way.
func (b *Body) MoveTo(p Vector2D) {
	b.Position = p
}

// Bounds returns the body's shape bounds at its current position.
func (b *Body) Bounds() AABB {
	return b.Shape.Bounds(b.Position)
}

// Center is the circle center, the rectangle center or the segment midpoint.
func (b *Body) Center() Vector2D {
	switch s := b.Shape.(type) {
	case Circle:
		return b.Position
	case Rectangle:
		return Vector2D{X: b.Position.X + s.Width/2, Y: b.Position.Y + s.Height/2}
	case LineSegment:
		a, e := s.Points(b.Position)
		return Vector2D{X: (a.X + e.X) / 2, Y: (a.Y + e.Y) / 2}
	}
	return b.Position
}
