package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/pong/common"
	"github.com/milk9111/pong/logging"
	"github.com/milk9111/pong/pong"
	"go.uber.org/zap"
)

func main() {
	sceneName := flag.String("scene", "pong", "scene name in scene/scenes (basename, .yaml optional)")
	cpu := flag.String("cpu", "right", "sides played by the CPU script: left, right, both or none")
	script := flag.String("script", pong.DefaultScript, "CPU script name in pong/scripts")
	follow := flag.Bool("follow", false, "play the CPU sides with the built-in ball follower instead of the script")
	seed := flag.Uint64("seed", 0, "serve seed, 0 for a random match")
	debug := flag.Bool("debug", false, "start with the collision overlay")
	logLevel := flag.String("log", "info", "log level: debug, info, warn or error")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	logger, err := logging.New(logging.Options{Level: *logLevel, Development: true})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	sides, err := pong.ParseSides(*cpu)
	if err != nil {
		logger.Fatal("bad -cpu flag", zap.Error(err))
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	game, err := NewGame(pong.SessionOptions{
		Scene:        *sceneName,
		CPU:          sides,
		Script:       *script,
		Follow:       *follow,
		Seed:         *seed,
		SpeedWarning: true,
		Logger:       logger,
	}, *debug, logger)
	if err != nil {
		logger.Fatal("setup failed", zap.Error(err))
	}
	defer func() { _ = game.Close() }()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("pong")
	ebiten.SetTPS(common.TargetFPS * 2)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", zap.Error(err))
	}
}
