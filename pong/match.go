package pong

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/milk9111/pong/common"
	"github.com/milk9111/pong/physics"
	"github.com/milk9111/pong/scene"
	"go.uber.org/zap"
)

var (
	ErrMatchOver   = errors.New("pong: match over")
	ErrInvalidSide = errors.New("pong: invalid side")
	ErrBadScene    = errors.New("pong: scene is not a pong court")
)

type Side int

const (
	Left Side = iota
	Right
)

var sides = [...]Side{Left, Right}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

func (s Side) Opponent() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) valid() bool {
	return s == Left || s == Right
}

// sign is the x direction of a ball travelling toward s.
func (s Side) sign() float64 {
	if s == Left {
		return -1
	}
	return 1
}

type Phase int

const (
	Serving Phase = iota
	Playing
	Over
)

func (p Phase) String() string {
	switch p {
	case Serving:
		return "serving"
	case Playing:
		return "playing"
	case Over:
		return "over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// BallName is the body a pong scene must name "ball". Paddles and goals are
// "<side>_paddle" and "<side>_goal".
const BallName = "ball"

func paddleName(s Side) string { return s.String() + "_paddle" }
func goalName(s Side) string   { return s.String() + "_goal" }

type Option func(*Match)

func WithLogger(l *zap.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSeed fixes the serve angles. Without it the seed comes from the match id.
func WithSeed(seed uint64) Option {
	return func(m *Match) {
		m.seed = seed
		m.seeded = true
	}
}

func WithEngineOptions(opts ...physics.Option) Option {
	return func(m *Match) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

func WithController(side Side, c Controller) Option {
	return func(m *Match) {
		if side.valid() {
			m.controllers[side] = c
		}
	}
}

type paddle struct {
	id   physics.BodyID
	home physics.Vector2D
	// offset is the top of the paddle relative to its position.
	offset float64
	length float64
}

// State is a copy of a match between ticks.
type State struct {
	Match  uuid.UUID
	Score  [2]int
	Phase  Phase
	Winner Side
	Rally  int
	World  physics.Snapshot
}

// Match plays pong rules over a scene: controllers move the paddles, the
// engine steps the world and goal sensor contacts score points.
type Match struct {
	ID uuid.UUID

	scene      *scene.Scene
	engine     *physics.Engine
	engineOpts []physics.Option
	rules      Rules
	logger     *zap.Logger
	scheduler  *Scheduler
	seed       uint64
	seeded     bool
	rng        *rand.Rand

	ball        physics.BodyID
	ballHome    physics.Vector2D
	ballRadius  float64
	paddles     [2]paddle
	goals       [2]physics.BodyID
	controllers [2]Controller
	courtW      float64
	courtH      float64

	score    [2]int
	phase    Phase
	receiver Side
	serveIn  float64
	winner   Side
	rally    int
}

func NewMatch(s *scene.Scene, rules Rules, opts ...Option) (*Match, error) {
	if s == nil {
		return nil, fmt.Errorf("new match: nil scene: %w", ErrBadScene)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}

	m := &Match{
		ID:     uuid.New(),
		scene:  s,
		rules:  rules,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.seeded {
		m.seed = binary.LittleEndian.Uint64(m.ID[:8])
	}
	m.rng = rand.New(rand.NewPCG(m.seed, m.seed^0x9e3779b97f4a7c15))
	m.logger = m.logger.With(zap.String("match", m.ID.String()))
	m.courtW, m.courtH = s.Court()

	if err := m.bind(); err != nil {
		return nil, fmt.Errorf("new match: scene %s: %w", s.Spec.Name, err)
	}

	engineOpts := append([]physics.Option{physics.WithLogger(m.logger)}, m.engineOpts...)
	engine, err := physics.NewEngine(s.World, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	m.engine = engine
	m.scheduler = NewScheduler(
		SystemFunc(controlSystem),
		SystemFunc(serveSystem),
		SystemFunc(physicsSystem),
		SystemFunc(scoreSystem),
	)

	if err := m.Reset(); err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	m.logger.Info("match created",
		zap.String("scene", s.Spec.Name),
		zap.Int("win_score", rules.WinScore),
		zap.Uint64("seed", m.seed),
	)
	return m, nil
}

// bind resolves the named bodies and checks they can play their part.
func (m *Match) bind() error {
	id, ball, err := m.scene.Body(BallName)
	if err != nil {
		return err
	}
	circle, ok := ball.Shape.(physics.Circle)
	if !ok || ball.IsStatic() || ball.Sensor {
		return fmt.Errorf("ball must be a dynamic circle: %w", ErrBadScene)
	}
	m.ball, m.ballHome, m.ballRadius = id, ball.Position, circle.Radius

	for _, side := range sides {
		id, b, err := m.scene.Body(paddleName(side))
		if err != nil {
			return err
		}
		if !b.IsStatic() || b.Sensor {
			return fmt.Errorf("%s: must be static: %w", paddleName(side), ErrBadScene)
		}
		bb := b.Bounds()
		p := paddle{id: id, home: b.Position, offset: bb.Min.Y - b.Position.Y, length: bb.Max.Y - bb.Min.Y}
		if p.length >= m.courtH {
			return fmt.Errorf("%s: length %g does not fit court height %g: %w", paddleName(side), p.length, m.courtH, ErrBadScene)
		}
		m.paddles[side] = p

		gid, goal, err := m.scene.Body(goalName(side))
		if err != nil {
			return err
		}
		if !goal.Sensor {
			return fmt.Errorf("%s: must be a sensor: %w", goalName(side), ErrBadScene)
		}
		m.goals[side] = gid
	}
	return nil
}

// Step runs one tick: controls, serve timer, physics, scoring.
func (m *Match) Step(dt float64) error {
	if !finite(dt) || dt < 0 {
		return fmt.Errorf("match step dt=%g: %w", dt, physics.ErrInvalidRange)
	}
	if err := m.scheduler.Update(m, dt); err != nil {
		return fmt.Errorf("match %s: %w", m.ID, err)
	}
	return nil
}

func controlSystem(m *Match, dt float64) error {
	for _, side := range sides {
		c := m.controllers[side]
		if c == nil {
			continue
		}
		view, err := m.View(side)
		if err != nil {
			return err
		}
		axis, err := c.Direction(view)
		if err != nil {
			return fmt.Errorf("%s controller: %w", side, err)
		}
		if err := m.MovePaddle(side, axis, dt); err != nil {
			return err
		}
	}
	return nil
}

func serveSystem(m *Match, dt float64) error {
	if m.phase != Serving {
		return nil
	}
	m.serveIn -= dt
	if m.serveIn > 0 {
		return nil
	}
	return m.Serve(m.receiver)
}

func physicsSystem(m *Match, dt float64) error {
	return m.engine.Step(dt)
}

func scoreSystem(m *Match, _ float64) error {
	events := m.engine.Events().Drain()
	if m.phase != Playing {
		return nil
	}
	for _, evt := range events {
		other, ok := evt.Other(m.ball)
		if !ok {
			continue
		}
		switch other {
		case m.paddles[Left].id, m.paddles[Right].id:
			m.rally++
		case m.goals[Left]:
			return m.point(Right)
		case m.goals[Right]:
			return m.point(Left)
		}
	}

	// a ball past the court edge without touching a goal line still counts
	b, err := m.body(m.ball)
	if err != nil {
		return err
	}
	switch {
	case b.Position.X < -m.ballRadius:
		return m.point(Right)
	case b.Position.X > m.courtW+m.ballRadius:
		return m.point(Left)
	}
	return nil
}

func (m *Match) point(scorer Side) error {
	m.score[scorer]++
	m.logger.Info("point",
		zap.Stringer("scorer", scorer),
		zap.Int("left", m.score[Left]),
		zap.Int("right", m.score[Right]),
		zap.Int("rally", m.rally),
	)
	if err := m.resetBall(); err != nil {
		return err
	}
	if m.score[scorer] >= m.rules.WinScore {
		m.phase = Over
		m.winner = scorer
		m.logger.Info("match over", zap.Stringer("winner", scorer))
		return nil
	}
	m.phase = Serving
	m.receiver = scorer.Opponent()
	m.serveIn = m.rules.ServeDelayMS / 1000
	return nil
}

// Serve launches the ball from the center toward a side at a random angle
// within the serve spread.
func (m *Match) Serve(toward Side) error {
	if !toward.valid() {
		return fmt.Errorf("serve %s: %w", toward, ErrInvalidSide)
	}
	if m.phase == Over {
		return ErrMatchOver
	}
	b, err := m.body(m.ball)
	if err != nil {
		return err
	}
	spread := m.rules.ServeAngleDeg * math.Pi / 180
	angle := (m.rng.Float64()*2 - 1) * spread
	v := physics.Vector2D{X: math.Cos(angle) * toward.sign(), Y: math.Sin(angle)}.Scale(m.rules.ServeSpeed)
	b.MoveTo(m.ballHome)
	b.SetVelocity(v)

	m.phase = Playing
	m.serveIn = 0
	m.rally = 0
	m.logger.Debug("serve", zap.Stringer("toward", toward), zap.Stringer("velocity", v))
	return nil
}

// MovePaddle moves a paddle by axis * PaddleSpeed * dt, where -1 is up and 1
// is down, keeping it inside the court. The paddle velocity is set to the
// distance actually covered so contacts pick up spin from it.
func (m *Match) MovePaddle(side Side, axis, dt float64) error {
	if !side.valid() {
		return fmt.Errorf("move paddle %s: %w", side, ErrInvalidSide)
	}
	if !finite(axis) || !finite(dt) || dt < 0 {
		return fmt.Errorf("move paddle axis=%g dt=%g: %w", axis, dt, physics.ErrInvalidRange)
	}
	axis, err := common.Clamp(axis, -1, 1)
	if err != nil {
		return err
	}

	p := m.paddles[side]
	b, err := m.body(p.id)
	if err != nil {
		return err
	}
	top := b.Position.Y + p.offset
	next, err := common.Clamp(top+axis*m.rules.PaddleSpeed*dt, 0, m.courtH-p.length)
	if err != nil {
		return fmt.Errorf("move %s paddle: %w", side, err)
	}
	b.MoveTo(physics.Vector2D{X: b.Position.X, Y: next - p.offset})

	var vy float64
	if dt > 0 {
		vy = (next - top) / dt
	}
	b.SetVelocityY(vy)
	return nil
}

// View is what a controller sees of the court from one side.
type View struct {
	Side         Side
	Phase        Phase
	Ball         physics.Vector2D
	BallVelocity physics.Vector2D
	// Paddle is the paddle center.
	Paddle       physics.Vector2D
	PaddleLength float64
	CourtWidth   float64
	CourtHeight  float64
}

func (m *Match) View(side Side) (View, error) {
	if !side.valid() {
		return View{}, fmt.Errorf("view %s: %w", side, ErrInvalidSide)
	}
	ball, err := m.body(m.ball)
	if err != nil {
		return View{}, err
	}
	p, err := m.body(m.paddles[side].id)
	if err != nil {
		return View{}, err
	}
	return View{
		Side:         side,
		Phase:        m.phase,
		Ball:         ball.Center(),
		BallVelocity: ball.Velocity,
		Paddle:       p.Center(),
		PaddleLength: m.paddles[side].length,
		CourtWidth:   m.courtW,
		CourtHeight:  m.courtH,
	}, nil
}

// SetController replaces a side's controller. Nil leaves the paddle where it is.
func (m *Match) SetController(side Side, c Controller) error {
	if !side.valid() {
		return fmt.Errorf("set controller %s: %w", side, ErrInvalidSide)
	}
	m.controllers[side] = c
	return nil
}

// Reset clears the score and puts the ball and paddles back for a new serve.
func (m *Match) Reset() error {
	for _, side := range sides {
		b, err := m.body(m.paddles[side].id)
		if err != nil {
			return err
		}
		b.MoveTo(m.paddles[side].home)
		b.SetVelocity(physics.Vector2D{})
	}
	if err := m.resetBall(); err != nil {
		return err
	}
	m.score = [2]int{}
	m.phase = Serving
	m.receiver = Side(m.rng.IntN(2))
	m.serveIn = m.rules.ServeDelayMS / 1000
	m.winner = Left
	m.rally = 0
	return nil
}

func (m *Match) resetBall() error {
	b, err := m.body(m.ball)
	if err != nil {
		return err
	}
	b.MoveTo(m.ballHome)
	b.SetVelocity(physics.Vector2D{})
	return nil
}

func (m *Match) body(id physics.BodyID) (*physics.Body, error) {
	return m.scene.World.Lookup(id)
}

// Score returns the left and right score.
func (m *Match) Score() (int, int) {
	return m.score[Left], m.score[Right]
}

func (m *Match) Phase() Phase {
	return m.phase
}

// Winner reports the winning side once the match is over.
func (m *Match) Winner() (Side, bool) {
	return m.winner, m.phase == Over
}

// Rally counts paddle hits since the last serve.
func (m *Match) Rally() int {
	return m.rally
}

func (m *Match) Rules() Rules {
	return m.rules
}

func (m *Match) Seed() uint64 {
	return m.seed
}

func (m *Match) Scene() *scene.Scene {
	return m.scene
}

func (m *Match) Engine() *physics.Engine {
	return m.engine
}

func (m *Match) Snapshot() State {
	return State{
		Match:  m.ID,
		Score:  m.score,
		Phase:  m.phase,
		Winner: m.winner,
		Rally:  m.rally,
		World:  m.engine.Snapshot(),
	}
}
