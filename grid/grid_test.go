package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFillsNodata(t *testing.T) {
	g := New[float64](3, 4, -9999, -1)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			assert.Equal(t, -9999.0, g.Get(r, c))
		}
	}
}

func TestGetOutOfBoundsReturnsNodataIn(t *testing.T) {
	g := New[float64](2, 2, -9999, -1)
	require.NoError(t, g.Set(0, 0, 5))

	assert.Equal(t, -9999.0, g.Get(-1, 0))
	assert.Equal(t, -9999.0, g.Get(0, -1))
	assert.Equal(t, -9999.0, g.Get(2, 0))
	assert.Equal(t, -9999.0, g.Get(0, 2))
	assert.Equal(t, 5.0, g.Get(0, 0))
}

func TestSetOutOfBoundsErrors(t *testing.T) {
	g := New[float64](2, 2, -9999, -1)
	assert.Error(t, g.Set(2, 0, 1))
	assert.Error(t, g.Set(0, -1, 1))
}

func TestSetRow(t *testing.T) {
	g := New[int64](2, 3, -1, -1)
	require.NoError(t, g.SetRow(1, []int64{7, 8, 9}))
	assert.Equal(t, int64(7), g.Get(1, 0))
	assert.Equal(t, int64(8), g.Get(1, 1))
	assert.Equal(t, int64(9), g.Get(1, 2))

	assert.Error(t, g.SetRow(1, []int64{1, 2}))
	assert.Error(t, g.SetRow(5, []int64{1, 2, 3}))
}
