package physics

import (
	"fmt"
	"math"
)

// normalTolerance is how far |Normal| may drift from 1 before a collision is
// considered malformed.
const normalTolerance = 1e-9

// Resolver applies positional correction and impulses for collisions.
type Resolver struct{}

// Validate checks a collision before anything is applied, so a bad record
// aborts the step without leaving it half resolved.
func (Resolver) Validate(c Collision) error {
	if c.BodyA == nil || c.BodyB == nil {
		return fmt.Errorf("collision %s/%s without bodies: %w", c.A, c.B, ErrInvalidRange)
	}
	if !c.Normal.isFinite() || math.Abs(c.Normal.Magnitude()-1) > normalTolerance {
		return fmt.Errorf("collision %s/%s normal %v: %w", c.A, c.B, c.Normal, ErrInvalidRange)
	}
	if !isFinite(c.Depth) || c.Depth < 0 {
		return fmt.Errorf("collision %s/%s depth %g: %w", c.A, c.B, c.Depth, ErrInvalidRange)
	}
	return nil
}

// Resolve separates the bodies and exchanges impulses. Sensor contacts and
// pairs of static bodies are left untouched.
func (Resolver) Resolve(c Collision) {
	a, b := c.BodyA, c.BodyB
	if c.Sensor() {
		return
	}
	invA, invB := a.InverseMass(), b.InverseMass()
	invSum := invA + invB
	if invSum == 0 {
		return
	}
	n := c.Normal

	if c.Depth > 0 {
		correction := n.Scale(c.Depth / invSum)
		a.Position = a.Position.Sub(correction.Scale(invA))
		b.Position = b.Position.Add(correction.Scale(invB))
	}

	rel := b.Velocity.Sub(a.Velocity)
	vn := rel.Dot(n)
	if vn > 0 {
		return
	}

	e := math.Min(a.Restitution, b.Restitution)
	j := -(1 + e) * vn / invSum
	impulse := n.Scale(j)
	a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
	b.Velocity = b.Velocity.Add(impulse.Scale(invB))

	mu := math.Max(0, math.Min(a.Friction, b.Friction))
	if mu == 0 {
		return
	}
	rel = b.Velocity.Sub(a.Velocity)
	tangent := rel.Sub(n.Scale(rel.Dot(n)))
	t, err := tangent.Normalize()
	if err != nil {
		// no sliding, nothing to oppose
		return
	}
	jt := -rel.Dot(t) / invSum
	limit := mu * j
	jt = math.Max(-limit, math.Min(limit, jt))
	friction := t.Scale(jt)
	a.Velocity = a.Velocity.Sub(friction.Scale(invA))
	b.Velocity = b.Velocity.Add(friction.Scale(invB))
}
