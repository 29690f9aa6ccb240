package physics

import (
	"fmt"
	"math"
)

// ShapeKind tags the concrete geometry behind a Shape.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota + 1
	ShapeRectangle
	ShapeLineSegment
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRectangle:
		return "rectangle"
	case ShapeLineSegment:
		return "segment"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Shape is collision geometry attached to a body. The set of shapes is closed:
// Circle, Rectangle and LineSegment.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the axis-aligned bounds of the shape placed at pos.
	Bounds(pos Vector2D) AABB
	validate() error
}

// Circle is centered on the body position.
type Circle struct {
	Radius float64
}

func (Circle) Kind() ShapeKind { return ShapeCircle }

func (c Circle) Bounds(pos Vector2D) AABB {
	return AABB{
		Min: Vector2D{X: pos.X - c.Radius, Y: pos.Y - c.Radius},
		Max: Vector2D{X: pos.X + c.Radius, Y: pos.Y + c.Radius},
	}
}

func (c Circle) validate() error {
	if !isFinite(c.Radius) || c.Radius <= 0 {
		return fmt.Errorf("circle radius %g: %w", c.Radius, ErrInvalidRange)
	}
	return nil
}

// Rectangle is axis aligned with its top-left corner on the body position.
type Rectangle struct {
	Width, Height float64
}

func (Rectangle) Kind() ShapeKind { return ShapeRectangle }

func (r Rectangle) Bounds(pos Vector2D) AABB {
	return AABB{Min: pos, Max: Vector2D{X: pos.X + r.Width, Y: pos.Y + r.Height}}
}

// Edges returns the four edges placed at pos in the order top, right,
// bottom, left.
func (r Rectangle) Edges(pos Vector2D) [4][2]Vector2D {
	tl := pos
	tr := Vector2D{X: pos.X + r.Width, Y: pos.Y}
	br := Vector2D{X: pos.X + r.Width, Y: pos.Y + r.Height}
	bl := Vector2D{X: pos.X, Y: pos.Y + r.Height}
	return [4][2]Vector2D{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

func (r Rectangle) Contains(pos, p Vector2D) bool {
	return p.X > pos.X && p.X < pos.X+r.Width && p.Y > pos.Y && p.Y < pos.Y+r.Height
}

func (r Rectangle) validate() error {
	if !isFinite(r.Width) || !isFinite(r.Height) || r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("rectangle %gx%g: %w", r.Width, r.Height, ErrInvalidRange)
	}
	return nil
}

// LineSegment endpoints are offsets from the body position, so a segment
// moves with its body. Walls placed at the origin use absolute endpoints.
type LineSegment struct {
	Start, End Vector2D
}

func (LineSegment) Kind() ShapeKind { return ShapeLineSegment }

// Points returns the endpoints placed at pos.
func (s LineSegment) Points(pos Vector2D) (Vector2D, Vector2D) {
	return pos.Add(s.Start), pos.Add(s.End)
}

func (s LineSegment) Length() float64 {
	return s.Start.Distance(s.End)
}

func (s LineSegment) Bounds(pos Vector2D) AABB {
	a, b := s.Points(pos)
	return AABB{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func (s LineSegment) validate() error {
	if !s.Start.isFinite() || !s.End.isFinite() || s.Length() == 0 {
		return fmt.Errorf("segment %v-%v: %w", s.Start, s.End, ErrInvalidRange)
	}
	return nil
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector2D
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

func (b AABB) Center() Vector2D {
	return Vector2D{X: (b.Min.X + b.Max.X) * 0.5, Y: (b.Min.Y + b.Max.Y) * 0.5}
}

// thickness is the smallest extent of a shape, the distance a body may move
// in one step before discrete detection can miss a contact.
func thickness(s Shape) float64 {
	switch sh := s.(type) {
	case Circle:
		return sh.Radius
	case Rectangle:
		return math.Min(sh.Width, sh.Height) / 2
	case LineSegment:
		return 0
	}
	return 0
}
