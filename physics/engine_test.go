package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const boxSize = 400

// boxWorld is a closed 400x400 court with a single ball of radius 10.
func boxWorld(t *testing.T, pos, vel Vector2D) (*World, BodyID) {
	t.Helper()
	w := NewWorld(Vector2D{})
	mustAdd(t, w, wall(Vector2D{}, Vector2D{X: boxSize}))
	mustAdd(t, w, wall(Vector2D{Y: boxSize}, Vector2D{X: boxSize, Y: boxSize}))
	mustAdd(t, w, wall(Vector2D{}, Vector2D{Y: boxSize}))
	mustAdd(t, w, wall(Vector2D{X: boxSize}, Vector2D{X: boxSize, Y: boxSize}))
	id := mustAdd(t, w, ball(pos, vel))
	return w, id
}

func TestEngineKeepsBallInsideBox(t *testing.T) {
	w, id := boxWorld(t, Vector2D{X: 50, Y: 50}, Vector2D{X: 100, Y: 100})
	e, err := NewEngine(w)
	require.NoError(t, err)
	b, _ := w.Body(id)

	const radius, tol = 10, 1e-9
	bounces := 0
	for i := 0; i < 3000; i++ {
		require.NoError(t, e.Step(0.016))
		bounces += e.Events().Len()
		require.GreaterOrEqual(t, b.Position.Y, radius-tol, "step %d", i)
		require.LessOrEqual(t, b.Position.Y, boxSize-radius+tol, "step %d", i)
		require.GreaterOrEqual(t, b.Position.X, radius-tol, "step %d", i)
		require.LessOrEqual(t, b.Position.X, boxSize-radius+tol, "step %d", i)
	}
	assert.Greater(t, bounces, 0)
	assert.InDelta(t, 100*math.Sqrt2, b.Velocity.Magnitude(), 1e-6, "elastic walls keep the speed")
	assert.Equal(t, uint64(3000), e.Steps())
}

func TestEngineWallsNeverMove(t *testing.T) {
	w, _ := boxWorld(t, Vector2D{X: 200, Y: 15}, Vector2D{X: 30, Y: -300})
	e, err := NewEngine(w)
	require.NoError(t, err)

	before := w.Snapshot()
	for i := 0; i < 60; i++ {
		require.NoError(t, e.Step(0.016))
	}
	after := w.Snapshot()
	for i := 0; i < 4; i++ {
		assert.Equal(t, before.Bodies[i].Position, after.Bodies[i].Position)
		assert.Equal(t, before.Bodies[i].Velocity, after.Bodies[i].Velocity)
	}
}

func TestEngineStepRejectsBadDelta(t *testing.T) {
	w, _ := boxWorld(t, Vector2D{X: 50, Y: 50}, Vector2D{})
	e, err := NewEngine(w)
	require.NoError(t, err)

	for _, dt := range []float64{-0.001, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, e.Step(dt), ErrInvalidRange, "dt=%g", dt)
	}
	assert.Zero(t, e.Steps())
	require.NoError(t, e.Step(0), "zero dt is a no-op step")
}

func TestNewEngineValidatesWorld(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrInvalidRange)

	w, id := boxWorld(t, Vector2D{X: 50, Y: 50}, Vector2D{})
	b, _ := w.Body(id)
	b.Restitution = 3
	_, err = NewEngine(w)
	assert.ErrorIs(t, err, ErrInvalidRange)

	b.Restitution = 1
	w.Gravity = Vector2D{Y: math.Inf(1)}
	_, err = NewEngine(w)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestEngineAppliesGravityToDynamicBodies(t *testing.T) {
	w := NewWorld(Vector2D{Y: 100})
	dyn := mustAdd(t, w, ball(Vector2D{}, Vector2D{}))
	static := mustAdd(t, w, BodyOptions{Position: Vector2D{X: 500}, Shape: Circle{Radius: 1}})
	e, err := NewEngine(w)
	require.NoError(t, err)

	require.NoError(t, e.Step(0.5))
	b, _ := w.Body(dyn)
	assert.Equal(t, Vector2D{Y: 50}, b.Velocity)
	assert.Equal(t, Vector2D{Y: 25}, b.Position)

	s, _ := w.Body(static)
	assert.Equal(t, Vector2D{X: 500}, s.Position)
}

func TestEngineFailedStepResolvesNothing(t *testing.T) {
	w := NewWorld(Vector2D{})
	mustAdd(t, w, wall(Vector2D{}, Vector2D{X: 100}))
	ballID := mustAdd(t, w, ball(Vector2D{X: 50, Y: 5}, Vector2D{Y: -10}))
	mustAdd(t, w, ball(Vector2D{X: 300}, Vector2D{}))
	badID := mustAdd(t, w, ball(Vector2D{X: 305}, Vector2D{}))
	e, err := NewEngine(w)
	require.NoError(t, err)

	bad, _ := w.Body(badID)
	bad.Shape = bogusShape{}

	require.ErrorIs(t, e.Step(0.1), ErrInvalidRange)
	b, _ := w.Body(ballID)
	assert.Equal(t, Vector2D{Y: -10}, b.Velocity, "the ball/wall contact was found but not resolved")
	assert.InDelta(t, 4, b.Position.Y, 1e-12, "integration ran, correction did not")
	assert.Zero(t, e.Events().Len())
	assert.Zero(t, e.Steps())
}

func TestEngineEvents(t *testing.T) {
	w := NewWorld(Vector2D{})
	wallID := mustAdd(t, w, wall(Vector2D{}, Vector2D{X: 100}))
	goal := wall(Vector2D{Y: 100}, Vector2D{X: 100, Y: 100})
	goal.Sensor = true
	goalID := mustAdd(t, w, goal)
	ballID := mustAdd(t, w, ball(Vector2D{X: 50, Y: 11}, Vector2D{Y: -100}))
	e, err := NewEngine(w)
	require.NoError(t, err)

	require.NoError(t, e.Step(0.016))
	events := e.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, wallID, events[0].A)
	assert.Equal(t, ballID, events[0].B)
	assert.False(t, events[0].Sensor)
	assert.Nil(t, e.Events().Drain(), "drained")

	b, _ := w.Body(ballID)
	b.MoveTo(Vector2D{X: 50, Y: 95})
	b.SetVelocity(Vector2D{})
	require.NoError(t, e.Step(0.016))
	events = e.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, goalID, events[0].A)
	assert.True(t, events[0].Sensor)
	assert.Equal(t, Vector2D{X: 50, Y: 95}, b.Position, "sensors do not push")

	b.MoveTo(Vector2D{X: 50, Y: 50})
	require.NoError(t, e.Step(0.016))
	assert.Zero(t, e.Events().Len(), "events do not carry over")
}

func TestEngineSpeedWarning(t *testing.T) {
	run := func(opts ...Option) *observer.ObservedLogs {
		core, logs := observer.New(zapcore.WarnLevel)
		w := NewWorld(Vector2D{})
		mustAdd(t, w, ball(Vector2D{}, Vector2D{X: 1000}))
		e, err := NewEngine(w, append([]Option{WithLogger(zap.New(core))}, opts...)...)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			require.NoError(t, e.Step(0.016))
		}
		return logs
	}

	logs := run(WithSpeedWarning())
	require.Equal(t, 1, logs.Len(), "warned once per body")
	entry := logs.All()[0]
	assert.Equal(t, "body may tunnel through thin colliders", entry.Message)
	assert.InDelta(t, 16, entry.ContextMap()["travel"], 1e-9)

	assert.Zero(t, run().Len())
}

func TestSnapshotDigestIsDeterministic(t *testing.T) {
	simulate := func(dts []float64) Snapshot {
		w, _ := boxWorld(t, Vector2D{X: 120, Y: 77}, Vector2D{X: 230, Y: -170})
		mustAdd(t, w, ball(Vector2D{X: 300, Y: 300}, Vector2D{X: -90, Y: 40}))
		e, err := NewEngine(w)
		require.NoError(t, err)
		for _, dt := range dts {
			require.NoError(t, e.Step(dt))
		}
		return e.Snapshot()
	}

	dts := make([]float64, 600)
	for i := range dts {
		dts[i] = 0.016 + float64(i%3)*0.001
	}
	a, b := simulate(dts), simulate(dts)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, uint64(600), a.Step)

	dts[10] = 0.015
	assert.NotEqual(t, a.Digest(), simulate(dts).Digest())
}
