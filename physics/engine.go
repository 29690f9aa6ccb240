package physics

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Engine runs one simulation tick at a time over a World.
type Engine struct {
	world    *World
	detector *Detector
	resolver Resolver
	events   EventQueue
	logger   *zap.Logger

	speedWarning bool
	warned       map[BodyID]bool
	steps        uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSpeedWarning logs once per body when a step moves it further than its
// collision thickness, the distance at which discrete detection can miss a
// contact and let it tunnel.
func WithSpeedWarning() Option {
	return func(e *Engine) {
		e.speedWarning = true
	}
}

// NewEngine validates the world before the first step. A malformed scene is
// rejected here rather than mid-tick.
func NewEngine(w *World, opts ...Option) (*Engine, error) {
	if w == nil {
		return nil, fmt.Errorf("new engine: nil world: %w", ErrInvalidRange)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	e := &Engine{
		world:    w,
		detector: NewDetector(8),
		logger:   zap.NewNop(),
		warned:   make(map[BodyID]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) World() *World {
	return e.world
}

// Steps returns how many steps completed.
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Events returns the contact events published by the last successful step.
func (e *Engine) Events() *EventQueue {
	return &e.events
}

// Step advances the world by dt seconds: forces, integration, detection,
// resolution. If detection or validation fails no collision is resolved.
func (e *Engine) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return fmt.Errorf("step dt=%g: %w", dt, ErrInvalidRange)
	}
	e.events.flush()

	e.applyForces()
	e.integrateAll(dt)

	collisions, err := e.detector.Detect(e.world)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	for _, c := range collisions {
		if err := e.resolver.Validate(c); err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}
	for _, c := range collisions {
		e.resolver.Resolve(c)
		e.events.Push(ContactEvent{A: c.A, B: c.B, Normal: c.Normal, Contact: c.Contact, Sensor: c.Sensor()})
	}

	e.steps++
	return nil
}

func (e *Engine) applyForces() {
	if e.world.Gravity.IsZero() {
		return
	}
	for _, b := range e.world.bodies {
		if b.IsStatic() {
			continue
		}
		b.ApplyForce(e.world.Gravity)
	}
}

func (e *Engine) integrateAll(dt float64) {
	for i, b := range e.world.bodies {
		b.Integrate(dt)
		if e.speedWarning && !b.IsStatic() {
			e.checkSpeed(e.world.ids[i], b, dt)
		}
	}
}

func (e *Engine) checkSpeed(id BodyID, b *Body, dt float64) {
	limit := thickness(b.Shape)
	if limit == 0 || e.warned[id] {
		return
	}
	travel := b.Velocity.Magnitude() * dt
	if travel <= limit {
		return
	}
	e.warned[id] = true
	e.logger.Warn("body may tunnel through thin colliders",
		zap.Stringer("body", id),
		zap.Float64("travel", travel),
		zap.Float64("limit", limit),
		zap.Float64("dt", dt),
	)
}

// SafeSpeed is the largest speed at which a body of the given shape cannot
// skip past a segment in one step of dt seconds.
func SafeSpeed(s Shape, dt float64) float64 {
	if dt <= 0 {
		return math.Inf(1)
	}
	return thickness(s) / dt
}
