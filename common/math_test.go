package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -3, 0, 10, 0},
		{"above", 12, 0, 10, 10},
		{"on_edge", 10, 0, 10, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Clamp(c.v, c.lo, c.hi)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	_, err := Clamp(1, 5, 5)
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = Clamp(1, 6, 5)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, 0.0, Lerp(0, 10, 0))
	assert.Equal(t, 10.0, Lerp(0, 10, 1))
}
