package physics

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the tolerance used by Equals.
const DefaultEpsilon = 0x1p-52

// Axis names one component of a Vector2D.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// ParseAxis converts host input ("x" or "y") into an Axis.
func ParseAxis(s string) (Axis, error) {
	a := Axis(s)
	if err := a.validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a Axis) validate() error {
	switch a {
	case AxisX, AxisY:
		return nil
	default:
		return fmt.Errorf("axis %q: %w", string(a), ErrInvalidAxis)
	}
}

// Vector2D is a 2D vector value. Every method returns a new value.
type Vector2D struct {
	X, Y float64
}

func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// AddScalar adds s to both components.
func (v Vector2D) AddScalar(s float64) Vector2D {
	return Vector2D{X: v.X + s, Y: v.Y + s}
}

// SubScalar subtracts s from both components.
func (v Vector2D) SubScalar(s float64) Vector2D {
	return Vector2D{X: v.X - s, Y: v.Y - s}
}

// Mul multiplies component-wise.
func (v Vector2D) Mul(o Vector2D) Vector2D {
	return Vector2D{X: v.X * o.X, Y: v.Y * o.Y}
}

func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Div divides component-wise. Either divisor component being zero is an error.
func (v Vector2D) Div(o Vector2D) (Vector2D, error) {
	if o.X == 0 || o.Y == 0 {
		return Vector2D{}, fmt.Errorf("divide %v by %v: %w", v, o, ErrDivisionByZero)
	}
	return Vector2D{X: v.X / o.X, Y: v.Y / o.Y}, nil
}

func (v Vector2D) DivScalar(s float64) (Vector2D, error) {
	if s == 0 {
		return Vector2D{}, fmt.Errorf("divide %v by 0: %w", v, ErrDivisionByZero)
	}
	return Vector2D{X: v.X / s, Y: v.Y / s}, nil
}

func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the 2D pseudo cross product x1*y2 - y1*x2.
func (v Vector2D) Cross(o Vector2D) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vector2D) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2D) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector has no direction and yields ErrDivisionByZero.
func (v Vector2D) Normalize() (Vector2D, error) {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector2D{}, fmt.Errorf("normalize zero vector: %w", ErrDivisionByZero)
	}
	return Vector2D{X: v.X / mag, Y: v.Y / mag}, nil
}

// Rotate rotates v counter-clockwise by angle radians.
func (v Vector2D) Rotate(angle float64) Vector2D {
	sin, cos := math.Sincos(angle)
	return Vector2D{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Reflect mirrors v about the surface with the given normal.
func (v Vector2D) Reflect(normal Vector2D) (Vector2D, error) {
	n, err := normal.Normalize()
	if err != nil {
		return Vector2D{}, fmt.Errorf("reflect: %w", err)
	}
	return v.Sub(n.Scale(2 * v.Dot(n))), nil
}

// ProjectOnto returns the component of v along n.
func (v Vector2D) ProjectOnto(n Vector2D) (Vector2D, error) {
	den := n.MagnitudeSquared()
	if den == 0 {
		return Vector2D{}, fmt.Errorf("project onto zero vector: %w", ErrDivisionByZero)
	}
	return n.Scale(v.Dot(n) / den), nil
}

// Lerp interpolates from v to o. t outside [0,1] is rejected, and the
// endpoints are returned exactly.
func (v Vector2D) Lerp(o Vector2D, t float64) (Vector2D, error) {
	switch {
	case math.IsNaN(t) || t < 0 || t > 1:
		return Vector2D{}, fmt.Errorf("lerp t=%g: %w", t, ErrInvalidRange)
	case t == 0:
		return v, nil
	case t == 1:
		return o, nil
	}
	return Vector2D{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
	}, nil
}

func (v Vector2D) Distance(o Vector2D) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

func (v Vector2D) DistanceSquared(o Vector2D) float64 {
	dx, dy := o.X-v.X, o.Y-v.Y
	return dx*dx + dy*dy
}

// AngleTo returns the signed angle in radians that rotates v onto o.
func (v Vector2D) AngleTo(o Vector2D) float64 {
	return math.Atan2(v.Cross(o), v.Dot(o))
}

func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsOnAxis reports whether v lies on the given axis, i.e. the other
// component is zero.
func (v Vector2D) IsOnAxis(axis Axis) (bool, error) {
	if err := axis.validate(); err != nil {
		return false, err
	}
	if axis == AxisX {
		return v.Y == 0, nil
	}
	return v.X == 0, nil
}

func (v Vector2D) Component(axis Axis) (float64, error) {
	if err := axis.validate(); err != nil {
		return 0, err
	}
	if axis == AxisX {
		return v.X, nil
	}
	return v.Y, nil
}

func (v Vector2D) WithComponent(axis Axis, value float64) (Vector2D, error) {
	if err := axis.validate(); err != nil {
		return Vector2D{}, err
	}
	if axis == AxisX {
		v.X = value
	} else {
		v.Y = value
	}
	return v, nil
}

// ClampMagnitude scales v so that its length lies in [min, max].
func (v Vector2D) ClampMagnitude(min, max float64) (Vector2D, error) {
	if min < 0 || min >= max {
		return Vector2D{}, fmt.Errorf("clamp magnitude [%g, %g]: %w", min, max, ErrInvalidRange)
	}
	mag := v.Magnitude()
	switch {
	case mag > max:
		return v.Scale(max / mag), nil
	case mag < min:
		if mag == 0 {
			return Vector2D{}, fmt.Errorf("clamp zero vector up to %g: %w", min, ErrDivisionByZero)
		}
		return v.Scale(min / mag), nil
	}
	return v, nil
}

// Equals compares within DefaultEpsilon.
func (v Vector2D) Equals(o Vector2D) bool {
	return v.EqualsEpsilon(o, DefaultEpsilon)
}

// EqualsEpsilon compares per axis with a tolerance scaled by the operand
// magnitude: |a-b| <= eps * max(1, |a|, |b|).
func (v Vector2D) EqualsEpsilon(o Vector2D, eps float64) bool {
	return approxEqual(v.X, o.X, eps) && approxEqual(v.Y, o.Y, eps)
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

func (v Vector2D) isFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func approxEqual(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
