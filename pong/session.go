package pong

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/milk9111/pong/loop"
	"github.com/milk9111/pong/physics"
	"github.com/milk9111/pong/scene"
	"go.uber.org/zap"
)

// SessionOptions describe what a host wants to run.
type SessionOptions struct {
	Scene string
	// CPU lists the sides played by the script. The others get keyboard
	// controllers.
	CPU    []Side
	Script string
	// Follow plays the CPU sides with FollowController instead of the script.
	Follow bool
	// Seed fixes serve angles when non-zero.
	Seed         uint64
	SpeedWarning bool
	Logger       *zap.Logger
	// AfterStep runs on the stepping goroutine after every successful step.
	AfterStep func(*Session)
}

// Session ties a built scene to the loop that drives it. Scenes with a ball,
// paddles and goals are played as a Match. Anything else is simulated as is.
type Session struct {
	Scene  *scene.Scene
	Match  *Match
	Engine *physics.Engine
	Loop   *loop.Loop
	Keys   [2]*KeyboardController

	opts   SessionOptions
	logger *zap.Logger
}

func NewSession(opts SessionOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Script == "" {
		opts.Script = DefaultScript
	}

	s, err := scene.LoadAndBuild(opts.Scene)
	if err != nil {
		return nil, err
	}
	sess := &Session{Scene: s, opts: opts, logger: logger}

	var engineOpts []physics.Option
	if opts.SpeedWarning {
		engineOpts = append(engineOpts, physics.WithSpeedWarning())
	}

	var stepper loop.Stepper
	if IsCourt(s) {
		rules, err := LoadRules(opts.Scene)
		if err != nil {
			return nil, err
		}
		matchOpts := []Option{WithLogger(logger), WithEngineOptions(engineOpts...)}
		if opts.Seed != 0 {
			matchOpts = append(matchOpts, WithSeed(opts.Seed))
		}
		for _, side := range sides {
			c, err := sess.controller(side)
			if err != nil {
				return nil, err
			}
			matchOpts = append(matchOpts, WithController(side, c))
		}
		m, err := NewMatch(s, rules, matchOpts...)
		if err != nil {
			return nil, err
		}
		sess.Match, sess.Engine, stepper = m, m.Engine(), m
	} else {
		engine, err := physics.NewEngine(s.World, append([]physics.Option{physics.WithLogger(logger)}, engineOpts...)...)
		if err != nil {
			return nil, err
		}
		sess.Engine, stepper = engine, engine
	}

	if opts.AfterStep != nil {
		inner := stepper
		stepper = loop.StepperFunc(func(dt float64) error {
			if err := inner.Step(dt); err != nil {
				return err
			}
			opts.AfterStep(sess)
			return nil
		})
	}

	sess.Loop, err = loop.New(stepper, loop.Options{
		IntervalMS: s.Spec.Loop.IntervalMS,
		MaxDeltaMS: s.Spec.Loop.MaxDeltaMS,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("session ready",
		zap.String("scene", s.Spec.Name),
		zap.Bool("match", sess.Match != nil),
		zap.Int("bodies", s.World.Len()),
		zap.Float64("interval_ms", sess.Loop.IntervalMS()),
	)
	return sess, nil
}

func (s *Session) controller(side Side) (Controller, error) {
	if slices.Contains(s.opts.CPU, side) {
		if s.opts.Follow {
			return FollowController{}, nil
		}
		return LoadScriptController(s.opts.Script)
	}
	s.Keys[side] = &KeyboardController{}
	return s.Keys[side], nil
}

// Options returns what the session was built from, for rebuilding it.
func (s *Session) Options() SessionOptions {
	return s.opts
}

// ReloadScript recompiles the CPU script for every scripted side. On a
// compile error the running controllers are kept.
func (s *Session) ReloadScript() error {
	if s.Match == nil || s.opts.Follow {
		return nil
	}
	for _, side := range s.opts.CPU {
		c, err := LoadScriptController(s.opts.Script)
		if err != nil {
			return err
		}
		if err := s.Match.SetController(side, c); err != nil {
			return err
		}
	}
	s.logger.Info("script reloaded", zap.String("script", s.opts.Script))
	return nil
}

// Snapshot copies the world for readers on other goroutines.
func (s *Session) Snapshot() physics.Snapshot {
	return s.Engine.Snapshot()
}

// IsCourt reports whether a scene names every body a match needs.
func IsCourt(s *scene.Scene) bool {
	names := []string{BallName}
	for _, side := range sides {
		names = append(names, paddleName(side), goalName(side))
	}
	for _, name := range names {
		if _, err := s.ID(name); err != nil {
			return false
		}
	}
	return true
}

var ErrInvalidSides = errors.New("pong: invalid sides")

// ParseSides reads "left", "right", "both" or "none".
func ParseSides(s string) ([]Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return []Side{Left}, nil
	case "right":
		return []Side{Right}, nil
	case "both":
		return []Side{Left, Right}, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("%q: %w", s, ErrInvalidSides)
}
