package main

import (
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/pong/loop"
	"github.com/milk9111/pong/pong"
	"github.com/milk9111/pong/scene"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// Game is the ebiten host. Update is the frame callback: it feeds input to
// the keyboard controllers and hands a millisecond timestamp to the loop,
// which decides whether the simulation steps.
type Game struct {
	opts    pong.SessionOptions
	logger  *zap.Logger
	session *pong.Session
	watcher *scene.Watcher

	input  *Input
	ui     *ebitenui.UI
	face   ebtext.Face
	clock  loop.Clock
	start  time.Time

	paused bool
	debug  bool
	// err is the step error that stopped the loop, shown until a restart.
	err error
}

func NewGame(opts pong.SessionOptions, debug bool, logger *zap.Logger) (*Game, error) {
	session, err := pong.NewSession(opts)
	if err != nil {
		return nil, err
	}
	g := &Game{
		opts:    opts,
		logger:  logger,
		session: session,
		input:   NewInput(),
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
		clock:   loop.SystemClock{},
		debug:   debug,
	}
	g.start = g.clock.Now()
	g.buildUI()

	watcher, err := scene.NewWatcher(scene.DiskDir, pong.ScriptDir)
	if err != nil {
		// running outside the repository: no sources to watch
		logger.Info("hot reload disabled", zap.Error(err))
	} else {
		g.watcher = watcher
	}
	return g, nil
}

func (g *Game) Update() error {
	g.input.Update()
	if g.input.Quit {
		return ebiten.Termination
	}
	g.pollWatcher()

	if g.input.PausePressed {
		g.setPaused(!g.paused)
	}
	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.ResetPressed {
		g.restart()
	}

	if g.paused {
		g.ui.Update()
		return nil
	}
	for side, keys := range g.session.Keys {
		if keys != nil {
			keys.SetAxis(g.input.Axis[side])
		}
	}
	if g.err != nil {
		return nil
	}
	if _, err := g.session.Loop.Frame(g.now()); err != nil {
		g.err = err
		g.logger.Error("simulation stopped", zap.Error(err))
	}
	return nil
}

func (g *Game) now() float64 {
	return loop.Millis(g.start, g.clock.Now())
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	s := g.session.Scene
	w, h := s.Court()

	drawScene(screen, s)
	if m := g.session.Match; m != nil {
		drawScore(screen, g.face, m, w)
	}
	if g.debug {
		drawDebug(screen, s.World, g.session.Loop.Stats(), g.session.Snapshot().Digest())
	}
	if g.err != nil {
		drawError(screen, g.face, g.err, w, h)
	}
	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.session.Scene.Court()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// setPaused rebases the loop on resume so the paused time is not stepped.
func (g *Game) setPaused(paused bool) {
	if g.paused == paused {
		return
	}
	g.paused = paused
	if !paused {
		g.session.Loop.Rebase()
	}
}

// restart rebuilds the session from the scene on disk, keeping the current
// one if the scene no longer builds.
func (g *Game) restart() {
	session, err := pong.NewSession(g.opts)
	if err != nil {
		g.logger.Error("restart failed", zap.Error(err))
		return
	}
	g.session = session
	g.err = nil
	g.buildUI()
}

// buildUI sizes the pause menu to the current court.
func (g *Game) buildUI() {
	w, h := g.session.Scene.Court()
	g.ui = NewPauseUI(g, g.face, int(w), int(h))
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case path, ok := <-g.watcher.Events:
		if !ok {
			g.watcher = nil
			return
		}
		switch {
		case scene.IsScene(path, g.opts.Scene):
			g.logger.Info("scene changed", zap.String("path", path))
			g.restart()
		case pong.ScriptName(path) != "":
			if err := g.session.ReloadScript(); err != nil {
				g.logger.Error("script reload failed", zap.Error(err))
			}
		}
	case err := <-g.watcher.Errors:
		if err != nil {
			g.logger.Warn("watcher", zap.Error(err))
		}
	default:
	}
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}
