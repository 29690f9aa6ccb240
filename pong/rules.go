package pong

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/pong/scene"
)

var ErrInvalidRules = errors.New("pong: invalid rules")

// Rules are read from the rules section of a scene file.
type Rules struct {
	ServeSpeed    float64 `yaml:"serve_speed"`
	ServeAngleDeg float64 `yaml:"serve_angle_deg"`
	PaddleSpeed   float64 `yaml:"paddle_speed"`
	WinScore      int     `yaml:"win_score"`
	ServeDelayMS  float64 `yaml:"serve_delay_ms"`
}

func DefaultRules() Rules {
	return Rules{
		ServeSpeed:    300,
		ServeAngleDeg: 30,
		PaddleSpeed:   420,
		WinScore:      7,
		ServeDelayMS:  800,
	}
}

func (r Rules) Validate() error {
	switch {
	case !finitePositive(r.ServeSpeed):
		return fmt.Errorf("serve_speed %g: %w", r.ServeSpeed, ErrInvalidRules)
	case !finite(r.ServeAngleDeg) || r.ServeAngleDeg < 0 || r.ServeAngleDeg >= 90:
		return fmt.Errorf("serve_angle_deg %g: %w", r.ServeAngleDeg, ErrInvalidRules)
	case !finitePositive(r.PaddleSpeed):
		return fmt.Errorf("paddle_speed %g: %w", r.PaddleSpeed, ErrInvalidRules)
	case r.WinScore < 1:
		return fmt.Errorf("win_score %d: %w", r.WinScore, ErrInvalidRules)
	case !finite(r.ServeDelayMS) || r.ServeDelayMS < 0:
		return fmt.Errorf("serve_delay_ms %g: %w", r.ServeDelayMS, ErrInvalidRules)
	}
	return nil
}

// withDefaults fills zero fields from DefaultRules. An explicit zero serve
// delay cannot be told apart from a missing one and also gets the default.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.ServeSpeed == 0 {
		r.ServeSpeed = d.ServeSpeed
	}
	if r.ServeAngleDeg == 0 {
		r.ServeAngleDeg = d.ServeAngleDeg
	}
	if r.PaddleSpeed == 0 {
		r.PaddleSpeed = d.PaddleSpeed
	}
	if r.WinScore == 0 {
		r.WinScore = d.WinScore
	}
	if r.ServeDelayMS == 0 {
		r.ServeDelayMS = d.ServeDelayMS
	}
	return r
}

type rulesFile struct {
	Rules *Rules `yaml:"rules"`
}

// LoadRules reads the rules section of a scene. A scene without one plays by
// DefaultRules.
func LoadRules(sceneName string) (Rules, error) {
	file, err := scene.LoadSpec[rulesFile](sceneName)
	if err != nil {
		return Rules{}, err
	}
	if file.Rules == nil {
		return DefaultRules(), nil
	}
	r := file.Rules.withDefaults()
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("scene %s: %w", sceneName, err)
	}
	return r, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finitePositive(f float64) bool {
	return finite(f) && f > 0
}
