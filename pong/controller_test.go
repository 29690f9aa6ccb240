package pong

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/pong/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leftView(ballY, ballVX float64, phase Phase) View {
	return View{
		Side:         Left,
		Phase:        phase,
		Ball:         physics.Vector2D{X: 300, Y: ballY},
		BallVelocity: physics.Vector2D{X: ballVX, Y: 0},
		Paddle:       physics.Vector2D{X: 40, Y: 300},
		PaddleLength: 100,
		CourtWidth:   800,
		CourtHeight:  600,
	}
}

var followCases = []struct {
	name string
	view View
	want float64
}{
	{"chases_ball_above", leftView(200, -300, Playing), -1},
	{"chases_ball_below", leftView(340, -300, Playing), 0.8},
	{"holds_inside_dead_zone", leftView(320, -300, Playing), 0},
	{"ignores_ball_going_away", leftView(50, 300, Playing), 0},
	{"ignores_ball_while_serving", leftView(50, 0, Serving), 0},
	{"drifts_back_to_middle", func() View {
		v := leftView(50, 300, Playing)
		v.Paddle.Y = 100
		return v
	}(), 1},
}

func TestFollowController(t *testing.T) {
	for _, c := range followCases {
		t.Run(c.name, func(t *testing.T) {
			got, err := FollowController{}.Direction(c.view)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-12)
		})
	}

	got, err := FollowController{DeadZone: 0.5}.Direction(leftView(340, -300, Playing))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCPUScriptMatchesFollowController(t *testing.T) {
	cpu, err := LoadScriptController(DefaultScript)
	require.NoError(t, err)
	assert.Equal(t, DefaultScript, cpu.Name())

	for _, c := range followCases {
		t.Run(c.name, func(t *testing.T) {
			got, err := cpu.Direction(c.view)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-12)
		})
	}

	right := leftView(200, 300, Playing)
	right.Side = Right
	right.Paddle.X = 760
	got, err := cpu.Direction(right)
	require.NoError(t, err)
	assert.Equal(t, -1.0, got, "right side chases a ball moving right")
}

func TestScriptControllerErrors(t *testing.T) {
	_, err := NewScriptController("broken", []byte("direction := "))
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken")

	cases := []struct {
		name   string
		src    string
		result bool
	}{
		{"no_direction", "x := 1", true},
		{"string_direction", `direction := "up"`, true},
		{"runtime_error", "d := 0\ndirection := 1 / d", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := NewScriptController(c.name, []byte(c.src))
			require.NoError(t, err)
			_, err = s.Direction(leftView(300, 0, Playing))
			require.Error(t, err)
			if c.result {
				assert.ErrorIs(t, err, ErrScriptResult)
			}
		})
	}

	s, err := NewScriptController("int", []byte("direction := side == \"left\" ? -1 : 1"))
	require.NoError(t, err)
	got, err := s.Direction(leftView(300, 0, Playing))
	require.NoError(t, err)
	assert.Equal(t, -1.0, got)
}

func TestLoadScript(t *testing.T) {
	embedded, err := LoadScript("cpu")
	require.NoError(t, err)
	same, err := LoadScript("scripts/cpu.tengo")
	require.NoError(t, err)
	assert.Equal(t, embedded, same)

	_, err = LoadScriptController("missing")
	assert.Error(t, err)

	dir := t.TempDir()
	prev := ScriptDir
	ScriptDir = dir
	t.Cleanup(func() { ScriptDir = prev })
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpu.tengo"), []byte("direction := 0.5"), 0o644))

	cpu, err := LoadScriptController("cpu")
	require.NoError(t, err)
	got, err := cpu.Direction(View{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)
}

func TestScriptName(t *testing.T) {
	assert.Equal(t, "cpu", ScriptName(filepath.Join("pong", "scripts", "cpu.tengo")))
	assert.Empty(t, ScriptName("pong.yaml"))
}

func TestKeyboardController(t *testing.T) {
	k := &KeyboardController{}
	got, err := k.Direction(View{})
	require.NoError(t, err)
	assert.Zero(t, got)

	k.SetAxis(-1)
	got, err = k.Direction(View{})
	require.NoError(t, err)
	assert.Equal(t, -1.0, got)
}
