package physics

import (
	"fmt"
	"math"
)

// Detector finds the contacts of a world for one step. Broad phase is an
// all-pairs scan; the scene sizes this drives (a ball, two paddles and a few
// walls) never justify a spatial structure.
//
// A pair collides when the separation is strictly less than the contact
// distance: a circle exactly radius away from a segment is touching, not
// colliding.
type Detector struct {
	buf []Collision
}

// NewDetector returns a detector with room for n collisions before it grows.
func NewDetector(n int) *Detector {
	return &Detector{buf: make([]Collision, 0, n)}
}

// Detect returns the collisions of the current state. The returned slice is
// reused by the next call.
func (d *Detector) Detect(w *World) ([]Collision, error) {
	d.buf = d.buf[:0]
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if a.IsStatic() && b.IsStatic() {
				continue
			}
			if !a.Bounds().Overlaps(b.Bounds()) {
				continue
			}
			c, hit, err := collide(a, b)
			if err != nil {
				return nil, fmt.Errorf("detect %s/%s: %w", w.ids[i], w.ids[j], err)
			}
			if !hit {
				continue
			}
			c.A, c.B = w.ids[i], w.ids[j]
			c.BodyA, c.BodyB = a, b
			d.buf = append(d.buf, c)
		}
	}
	return d.buf, nil
}

// collide dispatches on the pair's shape kinds. Pairs the game never needs
// (segment, rectangle against each other) report no contact.
func collide(a, b *Body) (Collision, bool, error) {
	ka, kb := a.Shape.Kind(), b.Shape.Kind()
	switch ka {
	case ShapeCircle:
		ca := a.Shape.(Circle)
		switch kb {
		case ShapeCircle:
			c, hit := circleCircle(a.Position, ca.Radius, b.Position, b.Shape.(Circle).Radius)
			return c, hit, nil
		case ShapeLineSegment:
			p0, p1 := b.Shape.(LineSegment).Points(b.Position)
			c, hit := circleSegment(a.Position, ca.Radius, a.Velocity, p0, p1)
			return c, hit, nil
		case ShapeRectangle:
			c, hit := circleRectangle(a.Position, ca.Radius, b.Position, b.Shape.(Rectangle))
			return c, hit, nil
		}
	case ShapeLineSegment, ShapeRectangle:
		switch kb {
		case ShapeCircle:
			c, hit, err := collide(b, a)
			if hit {
				c.Normal = c.Normal.Scale(-1)
			}
			return c, hit, err
		case ShapeLineSegment, ShapeRectangle:
			return Collision{}, false, nil
		}
	}
	return Collision{}, false, fmt.Errorf("unsupported shape pair %s/%s: %w", ka, kb, ErrInvalidRange)
}

// ClosestPointOnSegment projects p onto the segment a-b and clamps the
// projection parameter to [0, |b-a|].
func ClosestPointOnSegment(p, a, b Vector2D) Vector2D {
	dir := b.Sub(a)
	length := dir.Magnitude()
	if length == 0 {
		return a
	}
	u := dir.Scale(1 / length)
	t := math.Max(0, math.Min(length, p.Sub(a).Dot(u)))
	return a.Add(u.Scale(t))
}

func circleCircle(ca Vector2D, ra float64, cb Vector2D, rb float64) (Collision, bool) {
	delta := cb.Sub(ca)
	dist := delta.Magnitude()
	sum := ra + rb
	if dist >= sum {
		return Collision{}, false
	}
	normal := Vector2D{X: 1}
	if dist > 0 {
		normal = delta.Scale(1 / dist)
	}
	return Collision{
		Normal:  normal,
		Depth:   sum - dist,
		Contact: ca.Add(normal.Scale(ra)),
	}, true
}

// circleSegment returns a normal pointing from the circle to the segment.
func circleSegment(center Vector2D, radius float64, vel, a, b Vector2D) (Collision, bool) {
	closest := ClosestPointOnSegment(center, a, b)
	delta := closest.Sub(center)
	dist := delta.Magnitude()
	if dist >= radius {
		return Collision{}, false
	}
	var normal Vector2D
	if dist > 0 {
		normal = delta.Scale(1 / dist)
	} else {
		// Center on the segment: push back the way the circle came.
		dir := b.Sub(a)
		normal = Vector2D{X: -dir.Y, Y: dir.X}.Scale(1 / dir.Magnitude())
		if normal.Dot(vel) < 0 {
			normal = normal.Scale(-1)
		}
	}
	return Collision{
		Normal:  normal,
		Depth:   radius - dist,
		Contact: closest,
	}, true
}

// circleRectangle tests the four edges in order top, right, bottom, left and
// keeps the closest; on ties the first edge checked wins.
func circleRectangle(center Vector2D, radius float64, pos Vector2D, r Rectangle) (Collision, bool) {
	edges := r.Edges(pos)
	best := -1
	bestDistSq := math.Inf(1)
	var closest Vector2D
	for i, e := range edges {
		p := ClosestPointOnSegment(center, e[0], e[1])
		if d := p.DistanceSquared(center); d < bestDistSq {
			best, bestDistSq, closest = i, d, p
		}
	}

	inside := r.Contains(pos, center)
	dist := math.Sqrt(bestDistSq)
	if !inside && dist >= radius {
		return Collision{}, false
	}

	edge := edges[best]
	dir := edge[1].Sub(edge[0])
	outward := Vector2D{X: dir.Y, Y: -dir.X}.Scale(1 / dir.Magnitude())

	c := Collision{Contact: closest}
	switch {
	case inside:
		c.Normal = outward.Scale(-1)
		c.Depth = radius + dist
	case dist == 0:
		c.Normal = outward.Scale(-1)
		c.Depth = radius
	default:
		c.Normal = closest.Sub(center).Scale(1 / dist)
		c.Depth = radius - dist
	}
	return c, true
}
