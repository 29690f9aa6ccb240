// Command pongsim runs a scene without a window. A ticker stands in for the
// render callback, the state digest is logged periodically and edits to
// scenes or scripts under the repository are picked up while it runs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milk9111/pong/logging"
	"github.com/milk9111/pong/pong"
	"go.uber.org/zap"
)

func main() {
	sceneName := flag.String("scene", "pong", "scene name in scene/scenes (basename, .yaml optional)")
	cpu := flag.String("cpu", "both", "sides played by the CPU script: left, right, both or none")
	script := flag.String("script", pong.DefaultScript, "CPU script name in pong/scripts")
	follow := flag.Bool("follow", false, "play the CPU sides with the built-in ball follower instead of the script")
	seed := flag.Uint64("seed", 0, "serve seed, 0 for a random match")
	tick := flag.Duration("tick", 4*time.Millisecond, "how often the loop is offered a frame")
	report := flag.Duration("report", time.Second, "how often the state digest is logged")
	duration := flag.Duration("duration", 0, "stop after this long, 0 to run until interrupted")
	untilOver := flag.Bool("until-over", false, "stop when the match has a winner")
	watch := flag.Bool("watch", true, "rebuild when scene or script files change")
	logLevel := flag.String("log", "info", "log level: debug, info, warn or error")
	dev := flag.Bool("dev", false, "human readable logs")
	flag.Parse()

	logger, err := logging.New(logging.Options{Level: *logLevel, Development: *dev})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	sides, err := pong.ParseSides(*cpu)
	if err != nil {
		logger.Fatal("bad -cpu flag", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	cfg := config{
		session: pong.SessionOptions{
			Scene:        *sceneName,
			CPU:          sides,
			Script:       *script,
			Follow:       *follow,
			Seed:         *seed,
			SpeedWarning: true,
			Logger:       logger,
		},
		tick:      *tick,
		report:    *report,
		untilOver: *untilOver,
		watch:     *watch,
	}
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
