package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/milk9111/pong/physics"
)

// Run drives l from a ticker until ctx is done or a frame fails. It plays
// the role a render callback plays for windowed hosts: every tick is one
// frame, and the loop decides whether it steps.
func Run(ctx context.Context, clock Clock, l *Loop, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("loop: tick %s: %w", every, physics.ErrInvalidRange)
	}
	if clock == nil {
		clock = SystemClock{}
	}

	origin := clock.Now()
	if _, err := l.Frame(0); err != nil {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.Frame(Millis(origin, clock.Now())); err != nil {
				return err
			}
		}
	}
}
