package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/pong/pong"
)

const stickDeadZone = 0.3

// Input holds the keyboard and gamepad state for one frame.
type Input struct {
	// Axis is the paddle direction per side: -1 up, 0 none, +1 down.
	Axis [2]float64

	PausePressed bool
	ResetPressed bool
	DebugPressed bool
	Quit         bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls W/S for the left paddle and the arrow keys for the right one.
// The first two gamepads drive the left and right paddle with their left
// stick.
func (i *Input) Update() {
	i.Quit = inpututil.IsKeyJustPressed(ebiten.KeyF12)

	i.Axis[pong.Left] = keyAxis(ebiten.KeyW, ebiten.KeyS)
	i.Axis[pong.Right] = keyAxis(ebiten.KeyArrowUp, ebiten.KeyArrowDown)

	pause := inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP)
	ids := ebiten.AppendGamepadIDs(nil)
	for n, gid := range ids {
		if n > 1 {
			break
		}
		side := pong.Side(n)
		y := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
		if y < -stickDeadZone || y > stickDeadZone {
			i.Axis[side] = y
		}
		if inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight) {
			pause = true
		}
	}

	i.PausePressed = pause
	i.ResetPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF3)
}

func keyAxis(up, down ebiten.Key) float64 {
	var axis float64
	if ebiten.IsKeyPressed(up) {
		axis--
	}
	if ebiten.IsKeyPressed(down) {
		axis++
	}
	return axis
}
