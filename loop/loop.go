package loop

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/pong/common"
	"github.com/milk9111/pong/physics"
	"go.uber.org/zap"
)

// ErrStopped is returned by Frame once the loop has been stopped, either by
// Stop or by a failing step.
var ErrStopped = errors.New("loop: stopped")

// Stepper advances a simulation by dt seconds.
type Stepper interface {
	Step(dt float64) error
}

// StepperFunc adapts a function to Stepper.
type StepperFunc func(dt float64) error

func (f StepperFunc) Step(dt float64) error {
	return f(dt)
}

type Options struct {
	// IntervalMS is the minimum time between steps. Zero means 1000/TargetFPS.
	IntervalMS float64
	// MaxDeltaMS caps the dt handed to the stepper. Zero means common.MaxDeltaMS.
	MaxDeltaMS float64
	Logger     *zap.Logger
}

// Stats counts what the loop did with the frames it was given.
type Stats struct {
	Frames  uint64
	Steps   uint64
	Skips   uint64
	Clamped uint64
}

// Loop throttles a host frame callback down to a fixed stepping cadence.
// Frames arriving before the interval has elapsed are dropped, never queued.
// A Loop is driven from one goroutine.
type Loop struct {
	stepper  Stepper
	interval float64
	maxDelta float64
	logger   *zap.Logger

	started bool
	// last is the throttle reference, prev the latest accepted timestamp and
	// stepped the timestamp of the latest step.
	last    float64
	prev    float64
	stepped float64
	stopped bool
	err     error
	stats   Stats
}

// New returns a loop that drives s. Intervals and deltas are milliseconds.
func New(s Stepper, opts Options) (*Loop, error) {
	if s == nil {
		return nil, fmt.Errorf("loop: nil stepper: %w", physics.ErrInvalidRange)
	}
	interval := opts.IntervalMS
	if interval == 0 {
		interval = 1000.0 / common.TargetFPS
	}
	maxDelta := opts.MaxDeltaMS
	if maxDelta == 0 {
		maxDelta = common.MaxDeltaMS
	}
	if !(interval > 0) || math.IsInf(interval, 0) {
		return nil, fmt.Errorf("loop: interval %gms: %w", interval, physics.ErrInvalidRange)
	}
	if !(maxDelta > 0) || math.IsInf(maxDelta, 0) {
		return nil, fmt.Errorf("loop: max delta %gms: %w", maxDelta, physics.ErrInvalidRange)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		stepper:  s,
		interval: interval,
		maxDelta: maxDelta,
		logger:   logger,
	}, nil
}

// Frame is called by the host with a monotonic timestamp in milliseconds.
// It reports whether a step ran.
//
// The first frame only records the timestamp. Later frames step once at least
// one interval has passed since the reference time, with dt the time since the
// previous step capped at MaxDelta. The reference then moves forward by whole
// intervals so a host running slightly faster than the target rate does not
// drop to half of it.
func (l *Loop) Frame(timestampMS float64) (bool, error) {
	if l.stopped {
		if l.err != nil {
			return false, fmt.Errorf("%w: %w", ErrStopped, l.err)
		}
		return false, ErrStopped
	}
	if math.IsNaN(timestampMS) || math.IsInf(timestampMS, 0) {
		return false, fmt.Errorf("loop: timestamp %g: %w", timestampMS, physics.ErrInvalidRange)
	}
	if !l.started {
		l.started = true
		l.last, l.prev, l.stepped = timestampMS, timestampMS, timestampMS
		l.stats.Frames++
		return false, nil
	}
	if timestampMS < l.prev {
		return false, fmt.Errorf("loop: timestamp %g before %g: %w", timestampMS, l.prev, physics.ErrInvalidRange)
	}
	l.prev = timestampMS
	l.stats.Frames++

	elapsed := timestampMS - l.last
	if elapsed < l.interval {
		l.stats.Skips++
		return false, nil
	}

	delta := timestampMS - l.stepped
	if delta > l.maxDelta {
		l.stats.Clamped++
		l.logger.Debug("frame delta clamped",
			zap.Float64("delta_ms", delta),
			zap.Float64("max_ms", l.maxDelta),
		)
		delta = l.maxDelta
	}
	if err := l.stepper.Step(delta / 1000); err != nil {
		l.stopped, l.err = true, err
		l.logger.Error("step failed, loop stopped", zap.Error(err), zap.Uint64("steps", l.stats.Steps))
		return false, fmt.Errorf("loop: step: %w", err)
	}
	l.last = timestampMS - math.Mod(elapsed, l.interval)
	l.stepped = timestampMS
	l.stats.Steps++
	return true, nil
}

// Stop ends scheduling. Later frames return ErrStopped.
func (l *Loop) Stop() {
	l.stopped = true
}

// Stopped reports whether the loop stopped, and the step error that stopped
// it if any.
func (l *Loop) Stopped() (bool, error) {
	return l.stopped, l.err
}

// Rebase forgets the reference time so the next frame only records its
// timestamp. Hosts call it after a pause so the paused time is not stepped.
func (l *Loop) Rebase() {
	l.started = false
}

// Restart clears a stop and rebases. Used after the simulation was rebuilt.
func (l *Loop) Restart() {
	l.stopped, l.err = false, nil
	l.Rebase()
}

func (l *Loop) Stats() Stats {
	return l.stats
}

// IntervalMS returns the stepping interval in milliseconds.
func (l *Loop) IntervalMS() float64 {
	return l.interval
}
