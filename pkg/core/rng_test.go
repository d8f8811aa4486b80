package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGIsDeterministic(t *testing.T) {
	a, b := NewRNG(42), NewRNG(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	assert.NotEqual(t, NewRNG(1).Float64(), NewRNG(2).Float64())
}

func TestFillDensityBounds(t *testing.T) {
	buf := make([]uint8, 64)
	FillDensity(NewRNG(7), buf, 0)
	assert.Equal(t, make([]uint8, 64), buf)

	FillDensity(NewRNG(7), buf, 1)
	for _, v := range buf {
		assert.Equal(t, uint8(1), v)
	}
	assert.Equal(t, 0, NewRNG(3).IntN(0))
}
