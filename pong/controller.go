package pong

import (
	"errors"
	"fmt"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/pong/common"
)

// Controller decides which way a paddle moves: -1 up, 1 down, 0 stay.
// Values outside [-1, 1] are clamped by the match.
type Controller interface {
	Direction(v View) (float64, error)
}

type ControllerFunc func(v View) (float64, error)

func (f ControllerFunc) Direction(v View) (float64, error) {
	return f(v)
}

// KeyboardController reports whatever axis the host last set from input.
type KeyboardController struct {
	axis float64
}

func (k *KeyboardController) SetAxis(axis float64) {
	k.axis = axis
}

func (k *KeyboardController) Direction(View) (float64, error) {
	return k.axis, nil
}

// FollowController chases the ball while it approaches and drifts back to
// the middle otherwise.
type FollowController struct {
	// DeadZone is the fraction of the paddle length within which the paddle
	// holds still. Zero means a quarter.
	DeadZone float64
}

func (f FollowController) Direction(v View) (float64, error) {
	if v.PaddleLength <= 0 {
		return 0, nil
	}
	target := v.CourtHeight / 2
	if approaching(v) {
		target = v.Ball.Y
	}
	dead := f.DeadZone
	if dead == 0 {
		dead = 0.25
	}
	diff := target - v.Paddle.Y
	if math.Abs(diff) <= dead*v.PaddleLength {
		return 0, nil
	}
	return common.Clamp(diff/(v.PaddleLength/2), -1, 1)
}

func approaching(v View) bool {
	return v.Phase == Playing && v.BallVelocity.X*v.Side.sign() > 0
}

var ErrScriptResult = errors.New("pong: script result")

// ScriptController runs a tengo script once per tick. The script sees
// ball_position, ball_velocity and paddle_position as maps with x and y,
// plus paddle_length, court_width, court_height and side ("left" or
// "right"), and must define direction as a number.
type ScriptController struct {
	name     string
	compiled *tengo.Compiled
}

var scriptInputs = []string{
	"ball_position",
	"ball_velocity",
	"paddle_position",
	"paddle_length",
	"court_width",
	"court_height",
	"side",
	"playing",
}

func NewScriptController(name string, src []byte) (*ScriptController, error) {
	script := tengo.NewScript(src)
	for _, in := range scriptInputs {
		if err := script.Add(in, nil); err != nil {
			return nil, err
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return &ScriptController{name: name, compiled: compiled}, nil
}

// LoadScriptController compiles a script from LoadScript.
func LoadScriptController(name string) (*ScriptController, error) {
	src, err := LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return NewScriptController(name, src)
}

func (s *ScriptController) Name() string {
	return s.name
}

func (s *ScriptController) Direction(v View) (float64, error) {
	inputs := map[string]tengo.Object{
		"ball_position":   vectorObject(v.Ball.X, v.Ball.Y),
		"ball_velocity":   vectorObject(v.BallVelocity.X, v.BallVelocity.Y),
		"paddle_position": vectorObject(v.Paddle.X, v.Paddle.Y),
		"paddle_length":   &tengo.Float{Value: v.PaddleLength},
		"court_width":     &tengo.Float{Value: v.CourtWidth},
		"court_height":    &tengo.Float{Value: v.CourtHeight},
		"side":            &tengo.String{Value: v.Side.String()},
		"playing":         boolObject(v.Phase == Playing),
	}
	for name, obj := range inputs {
		if err := s.compiled.Set(name, obj); err != nil {
			return 0, fmt.Errorf("script %s: %w", s.name, err)
		}
	}
	if err := s.compiled.Run(); err != nil {
		return 0, fmt.Errorf("script %s: %w", s.name, err)
	}
	if !s.compiled.IsDefined("direction") {
		return 0, fmt.Errorf("script %s: direction not set: %w", s.name, ErrScriptResult)
	}

	var dir float64
	switch obj := s.compiled.Get("direction").Object().(type) {
	case *tengo.Float:
		dir = obj.Value
	case *tengo.Int:
		dir = float64(obj.Value)
	default:
		return 0, fmt.Errorf("script %s: direction is %s: %w", s.name, obj.TypeName(), ErrScriptResult)
	}
	if !finite(dir) {
		return 0, fmt.Errorf("script %s: direction %g: %w", s.name, dir, ErrScriptResult)
	}
	return dir, nil
}

func vectorObject(x, y float64) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: x},
		"y": &tengo.Float{Value: y},
	}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
