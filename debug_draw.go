package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pong/loop"
	"github.com/milk9111/pong/physics"
)

// mirrorSpace copies the world into a chipmunk space so cp.DrawSpace can
// outline it. Static bodies go on the space's static body at absolute
// coordinates; everything else gets a kinematic body at its position.
func mirrorSpace(w *physics.World) *cp.Space {
	space := cp.NewSpace()
	w.Each(func(_ physics.BodyID, b *physics.Body) bool {
		body := space.StaticBody
		origin := b.Position
		if !b.IsStatic() {
			body = space.AddBody(cp.NewKinematicBody())
			body.SetPosition(cp.Vector{X: b.Position.X, Y: b.Position.Y})
			body.SetVelocity(b.Velocity.X, b.Velocity.Y)
			origin = physics.Vector2D{}
		}

		var shape *cp.Shape
		switch s := b.Shape.(type) {
		case physics.Circle:
			shape = cp.NewCircle(body, s.Radius, cp.Vector{X: origin.X, Y: origin.Y})
		case physics.Rectangle:
			shape = cp.NewBox2(body, cp.BB{L: origin.X, B: origin.Y, R: origin.X + s.Width, T: origin.Y + s.Height}, 0)
		case physics.LineSegment:
			a, e := s.Points(origin)
			shape = cp.NewSegment(body, cp.Vector{X: a.X, Y: a.Y}, cp.Vector{X: e.X, Y: e.Y}, 0)
		default:
			return true
		}
		shape.SetSensor(b.Sensor)
		space.AddShape(shape)
		return true
	})
	return space
}

// drawDebug outlines the collision shapes and prints loop counters.
func drawDebug(screen *ebiten.Image, w *physics.World, stats loop.Stats, digest uint64) {
	cp.DrawSpace(mirrorSpace(w), &chipmunkDrawer{screen: screen})
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\nframes: %d  steps: %d  skips: %d  clamped: %d\nstate: %016x",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		stats.Frames, stats.Steps, stats.Skips, stats.Clamped,
		digest,
	))
}

type chipmunkDrawer struct {
	screen *ebiten.Image
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		ebitenutil.DrawLine(d.screen, prev.X, prev.Y, cur.X, cur.Y, c)
		prev = cur
	}
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, fcolorToRGBA(outline))
	if radius > 0 {
		d.DrawCircle(a, 0, radius, outline, fill, data)
		d.DrawCircle(b, 0, radius, outline, fill, data)
	}
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		a := verts[i]
		b := verts[(i+1)%count]
		ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, c)
	}
}

// DrawDot marks velocity heads.
func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	l := size / 2
	ebitenutil.DrawLine(d.screen, pos.X-l, pos.Y, pos.X+l, pos.Y, c)
	ebitenutil.DrawLine(d.screen, pos.X, pos.Y-l, pos.X, pos.Y+l, c)
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
