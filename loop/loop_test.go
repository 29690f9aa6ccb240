package loop

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/milk9111/pong/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	dts  []float64
	fail error
	// failAt is the 1-based step that returns fail.
	failAt int
}

func (r *recorder) Step(dt float64) error {
	r.dts = append(r.dts, dt)
	if r.fail != nil && len(r.dts) == r.failAt {
		return r.fail
	}
	return nil
}

func newLoop(t *testing.T, s Stepper, opts Options) *Loop {
	t.Helper()
	l, err := New(s, opts)
	require.NoError(t, err)
	return l
}

func TestNewDefaults(t *testing.T) {
	l := newLoop(t, &recorder{}, Options{})
	assert.InDelta(t, 1000.0/60, l.IntervalMS(), 1e-12)

	for _, opts := range []Options{
		{IntervalMS: -1},
		{IntervalMS: math.NaN()},
		{MaxDeltaMS: -5},
		{MaxDeltaMS: math.Inf(1)},
	} {
		_, err := New(&recorder{}, opts)
		assert.ErrorIs(t, err, physics.ErrInvalidRange, "%+v", opts)
	}
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, physics.ErrInvalidRange)
}

func TestFirstFrameOnlyRecords(t *testing.T) {
	r := &recorder{}
	l := newLoop(t, r, Options{})

	stepped, err := l.Frame(5000)
	require.NoError(t, err)
	assert.False(t, stepped)
	assert.Empty(t, r.dts)
}

func TestFrameDeltas(t *testing.T) {
	cases := []struct {
		name   string
		frames []float64
		want   []float64
	}{
		{"exact_interval", []float64{0, 20, 40}, []float64{0.02, 0.02}},
		{"below_interval_skipped", []float64{0, 10, 15, 30}, []float64{0.03}},
		{"clamped_to_max_delta", []float64{0, 500}, []float64{0.1}},
		{"same_timestamp", []float64{0, 0, 0}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &recorder{}
			l := newLoop(t, r, Options{IntervalMS: 16})
			for _, ts := range c.frames {
				_, err := l.Frame(ts)
				require.NoError(t, err)
			}
			require.Len(t, r.dts, len(c.want))
			for i := range c.want {
				assert.InDelta(t, c.want[i], r.dts[i], 1e-12)
			}
		})
	}
}

func TestDenseTimestampsStepLess(t *testing.T) {
	run := func(spacing float64) int {
		r := &recorder{}
		l := newLoop(t, r, Options{})
		for ts := 0.0; ts <= 1000; ts += spacing {
			_, err := l.Frame(ts)
			require.NoError(t, err)
		}
		return len(r.dts)
	}

	// spaced below the interval, frames are dropped rather than queued
	assert.Less(t, run(10), 1000/10)
	assert.InDelta(t, 60, run(10), 2)
	assert.InDelta(t, 60, run(1000.0/60), 2)
}

func TestSixtyHertzHostDoesNotAlias(t *testing.T) {
	// a host a hair faster than the target would step every other frame if
	// the reference time were reset to the frame timestamp
	r := &recorder{}
	l := newLoop(t, r, Options{})
	frame := 1000.0/60 - 0.01
	for i := 0; i <= 600; i++ {
		_, err := l.Frame(float64(i) * frame)
		require.NoError(t, err)
	}
	assert.Greater(t, len(r.dts), 590)
	for _, dt := range r.dts[1:] {
		assert.InDelta(t, frame/1000, dt, 1e-9, "dt is the time between consecutive frames")
	}
}

func TestBackwardsTimestamp(t *testing.T) {
	r := &recorder{}
	l := newLoop(t, r, Options{})
	_, err := l.Frame(100)
	require.NoError(t, err)

	_, err = l.Frame(99)
	require.ErrorIs(t, err, physics.ErrInvalidRange)

	_, err = l.Frame(math.NaN())
	require.ErrorIs(t, err, physics.ErrInvalidRange)

	stepped, err := l.Frame(200)
	require.NoError(t, err, "a rejected frame does not stop the loop")
	assert.True(t, stepped)
}

func TestStepErrorStopsLoop(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{fail: boom, failAt: 2}
	l := newLoop(t, r, Options{IntervalMS: 10})

	for _, ts := range []float64{0, 10} {
		_, err := l.Frame(ts)
		require.NoError(t, err)
	}
	_, err := l.Frame(20)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrStopped)

	_, err = l.Frame(30)
	require.ErrorIs(t, err, ErrStopped)
	require.ErrorIs(t, err, boom)
	assert.Len(t, r.dts, 2)

	stopped, cause := l.Stopped()
	assert.True(t, stopped)
	assert.Equal(t, boom, cause)

	l.Restart()
	_, err = l.Frame(1000)
	require.NoError(t, err)
	stepped, err := l.Frame(1010)
	require.NoError(t, err)
	assert.True(t, stepped)
}

func TestStopAndRebase(t *testing.T) {
	r := &recorder{}
	l := newLoop(t, r, Options{IntervalMS: 10})
	_, err := l.Frame(0)
	require.NoError(t, err)

	l.Rebase()
	stepped, err := l.Frame(5000)
	require.NoError(t, err)
	assert.False(t, stepped, "rebased frame only records")

	l.Stop()
	_, err = l.Frame(6000)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Empty(t, r.dts)

	s := l.Stats()
	assert.Equal(t, uint64(2), s.Frames)
	assert.Zero(t, s.Steps)
}

func TestStats(t *testing.T) {
	l := newLoop(t, &recorder{}, Options{IntervalMS: 10, MaxDeltaMS: 50})
	for _, ts := range []float64{0, 5, 10, 200} {
		_, err := l.Frame(ts)
		require.NoError(t, err)
	}
	assert.Equal(t, Stats{Frames: 4, Steps: 2, Skips: 1, Clamped: 1}, l.Stats())
}

// tickingClock advances by step on every reading.
type tickingClock struct {
	*ManualClock
	step time.Duration
}

func (c tickingClock) Now() time.Time {
	c.Advance(c.step)
	return c.ManualClock.Now()
}

func TestRunStopsOnStepError(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{fail: boom, failAt: 3}
	l := newLoop(t, r, Options{})
	clock := tickingClock{ManualClock: NewManualClock(time.Unix(0, 0)), step: 20 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, clock, l, time.Millisecond)
	require.ErrorIs(t, err, boom)
	require.Len(t, r.dts, 3)
	for _, dt := range r.dts {
		assert.InDelta(t, 0.02, dt, 1e-9)
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	l := newLoop(t, &recorder{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Run(ctx, nil, l, time.Millisecond))

	assert.ErrorIs(t, Run(context.Background(), nil, l, 0), physics.ErrInvalidRange)
}

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500.0, Millis(start, c.Now()))
	c.Set(start)
	assert.Zero(t, Millis(start, c.Now()))
}
