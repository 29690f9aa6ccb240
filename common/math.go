package common

import (
	"errors"
	"fmt"
)

const (
	BaseWidth  = 800
	BaseHeight = 600

	TargetFPS  = 60
	MaxDeltaMS = 100
)

var ErrInvalidBounds = errors.New("common: min must be below max")

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) (float64, error) {
	if !(lo < hi) {
		return v, fmt.Errorf("clamp [%g, %g]: %w", lo, hi, ErrInvalidBounds)
	}
	if v < lo {
		return lo, nil
	}
	if v > hi {
		return hi, nil
	}
	return v, nil
}
