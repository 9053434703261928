package input

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone2pc/internal/logger"
)

func TestMoveByWithinBounds(t *testing.T) {
	p := NewVirtualPointer(100, 100, 1920, 1080)
	a := NewActuator(p, logger.Noop())

	x, y, err := a.MoveBy(10, 0)
	require.NoError(t, err)
	assert.Equal(t, 110, x)
	assert.Equal(t, 100, y)
	assert.Equal(t, [][2]int{{110, 100}}, p.Moves())
}

func TestMoveByRoundsToNearestPixel(t *testing.T) {
	p := NewVirtualPointer(100, 100, 1920, 1080)
	a := NewActuator(p, logger.Noop())

	x, y, err := a.MoveBy(0.6, -0.6)
	require.NoError(t, err)
	assert.Equal(t, 101, x)
	assert.Equal(t, 99, y)

	x, y, err = a.MoveBy(0.4, -0.4)
	require.NoError(t, err)
	assert.Equal(t, 101, x)
	assert.Equal(t, 99, y)
}

func TestMoveByClampsAtOrigin(t *testing.T) {
	p := NewVirtualPointer(0, 0, 800, 600)
	a := NewActuator(p, logger.Noop())

	x, y, err := a.MoveBy(-50, -50)
	require.NoError(t, err)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

func TestMoveByClampsAtFarEdge(t *testing.T) {
	p := NewVirtualPointer(790, 590, 800, 600)
	a := NewActuator(p, logger.Noop())

	x, y, err := a.MoveBy(1e6, 1e6)
	require.NoError(t, err)
	assert.Equal(t, 799, x)
	assert.Equal(t, 599, y)
}

func TestMoveByNeverLeavesScreen(t *testing.T) {
	deltas := []float64{
		0, 0.49, 0.5, -0.5, 1, -1, 799.5, -799.5, 1e9, -1e9,
		math.MaxFloat64, -math.MaxFloat64, math.Inf(1), math.Inf(-1), math.NaN(),
	}
	starts := [][2]int{{0, 0}, {399, 299}, {799, 599}, {0, 599}, {799, 0}}

	for _, start := range starts {
		for _, dx := range deltas {
			for _, dy := range deltas {
				p := NewVirtualPointer(start[0], start[1], 800, 600)
				x, y, err := NewActuator(p, logger.Noop()).MoveBy(dx, dy)
				require.NoError(t, err)
				assert.True(t, x >= 0 && x <= 799, "x=%d for start %v dx=%v", x, start, dx)
				assert.True(t, y >= 0 && y <= 599, "y=%d for start %v dy=%v", y, start, dy)
			}
		}
	}
}

func TestMoveByRereadsScreenSize(t *testing.T) {
	p := NewVirtualPointer(1000, 700, 1920, 1080)
	a := NewActuator(p, logger.Noop())

	p.SetScreenSize(800, 600)
	x, y, err := a.MoveBy(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 799, x)
	assert.Equal(t, 599, y)
}

func TestMoveByLogsAndReturnsFailures(t *testing.T) {
	boom := errors.New("boom")
	p := NewVirtualPointer(10, 10, 100, 100)
	p.SetError(boom)
	log := logger.NewBufferLogger()
	a := NewActuator(p, log)

	_, _, err := a.MoveBy(1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, log.Contains("error", "read cursor position"))
	assert.Empty(t, p.Moves())
}

func TestMoveByRejectsEmptyScreen(t *testing.T) {
	p := NewVirtualPointer(0, 0, 0, 0)
	_, _, err := NewActuator(p, nil).MoveBy(1, 1)
	assert.ErrorIs(t, err, ErrNoDisplay)
	assert.Empty(t, p.Moves())
}

type failingMovePointer struct {
	*VirtualPointer
}

func (failingMovePointer) MoveTo(x, y int) error { return errors.New("denied") }

func TestMoveByMoveFailure(t *testing.T) {
	log := logger.NewBufferLogger()
	a := NewActuator(failingMovePointer{NewVirtualPointer(5, 5, 10, 10)}, log)
	_, _, err := a.MoveBy(1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move cursor to (6,6)")
	assert.True(t, log.HasLevel("error"))
}

func TestClampAxis(t *testing.T) {
	tests := []struct {
		v    float64
		size int
		want int
	}{
		{0, 10, 0},
		{-0.4, 10, 0},
		{-3, 10, 0},
		{4.5, 10, 5},
		{8.6, 10, 9},
		{9.4, 10, 9},
		{9.5, 10, 9},
		{100, 10, 9},
		{0.5, 1, 0},
		{math.NaN(), 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampAxis(tt.v, tt.size), "ClampAxis(%v, %d)", tt.v, tt.size)
	}
}
