package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milk9111/pong/loop"
	"github.com/milk9111/pong/physics"
	"github.com/milk9111/pong/pong"
	"github.com/milk9111/pong/scene"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	session   pong.SessionOptions
	clock     loop.Clock
	tick      time.Duration
	report    time.Duration
	untilOver bool
	watch     bool
}

// state is what the stepping goroutine publishes after each step.
type state struct {
	world physics.Snapshot
	match *pong.State
}

// run keeps a session going until ctx is done, rebuilding it whenever the
// scene file changes.
func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	var watcher *scene.Watcher
	if cfg.watch {
		w, err := scene.NewWatcher(scene.DiskDir, pong.ScriptDir)
		if err != nil {
			logger.Info("hot reload disabled", zap.Error(err))
		} else {
			watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	for {
		rebuild, err := runSession(ctx, cfg, watcher, logger)
		if err != nil {
			return err
		}
		if !rebuild {
			return nil
		}
		logger.Info("scene changed, rebuilding")
	}
}

// runSession steps one session until ctx is done, the match is over (when
// asked to stop there) or the scene changes. It reports whether the caller
// should rebuild.
func runSession(ctx context.Context, cfg config, watcher *scene.Watcher, logger *zap.Logger) (bool, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make(chan state, 1)
	scriptChanged := make(chan struct{}, 1)
	var overOnce sync.Once

	opts := cfg.session
	opts.AfterStep = func(s *pong.Session) {
		select {
		case <-scriptChanged:
			if err := s.ReloadScript(); err != nil {
				logger.Error("script reload failed", zap.Error(err))
			}
		default:
		}
		publish(states, s)
		if cfg.untilOver && s.Match != nil && s.Match.Phase() == pong.Over {
			overOnce.Do(cancel)
		}
	}
	sess, err := pong.NewSession(opts)
	if err != nil {
		return false, err
	}

	var rebuild atomic.Bool
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return loop.Run(gctx, cfg.clock, sess.Loop, cfg.tick)
	})
	g.Go(func() error {
		return reportStates(gctx, states, cfg.report, logger)
	})
	if watcher != nil {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case path, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if scene.IsScene(path, opts.Scene) {
						rebuild.Store(true)
						cancel()
						return nil
					}
					if pong.ScriptName(path) != "" {
						select {
						case scriptChanged <- struct{}{}:
						default:
						}
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Warn("watcher", zap.Error(err))
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("session %s: %w", sess.Scene.Spec.Name, err)
	}

	// every goroutine is done, the session can be read directly
	stats := sess.Loop.Stats()
	fields := []zap.Field{
		zap.Uint64("frames", stats.Frames),
		zap.Uint64("steps", stats.Steps),
		zap.Uint64("skips", stats.Skips),
		zap.Uint64("clamped", stats.Clamped),
		zap.String("digest", fmt.Sprintf("%016x", sess.Snapshot().Digest())),
	}
	if sess.Match != nil {
		l, r := sess.Match.Score()
		fields = append(fields, zap.Int("left", l), zap.Int("right", r), zap.Stringer("phase", sess.Match.Phase()))
	}
	logger.Info("session finished", fields...)
	return rebuild.Load(), nil
}

// publish replaces whatever state is waiting with the latest one.
func publish(states chan state, s *pong.Session) {
	st := state{world: s.Snapshot()}
	if s.Match != nil {
		ms := s.Match.Snapshot()
		st.match = &ms
	}
	select {
	case <-states:
	default:
	}
	states <- st
}

func reportStates(ctx context.Context, states <-chan state, every time.Duration, logger *zap.Logger) error {
	if every <= 0 {
		return nil
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var latest *state
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-states:
			latest = &st
		case <-ticker.C:
			if latest == nil {
				continue
			}
			logger.Info("state", stateFields(*latest)...)
		}
	}
}

func stateFields(st state) []zap.Field {
	fields := []zap.Field{
		zap.Uint64("step", st.world.Step),
		zap.String("digest", fmt.Sprintf("%016x", st.world.Digest())),
	}
	if st.match != nil {
		fields = append(fields,
			zap.Int("left", st.match.Score[pong.Left]),
			zap.Int("right", st.match.Score[pong.Right]),
			zap.Stringer("phase", st.match.Phase),
			zap.Int("rally", st.match.Rally),
		)
	}
	return fields
}
