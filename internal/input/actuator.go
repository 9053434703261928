package input

import (
	"fmt"
	"math"

	"phone2pc/internal/logger"
)

// Actuator turns filtered deltas into absolute, on-screen cursor moves.
type Actuator struct {
	pointer Pointer
	log     logger.Logger
}

// NewActuator creates an actuator driving p.
func NewActuator(p Pointer, log logger.Logger) *Actuator {
	if log == nil {
		log = logger.Noop()
	}
	return &Actuator{pointer: p, log: log}
}

// MoveBy moves the cursor by (dx, dy), rounded to whole pixels and clamped to
// [0, W-1] x [0, H-1]. Screen bounds are read on every call so a resolution
// change takes effect immediately. Failures are logged and returned; they are
// never fatal to the caller.
func (a *Actuator) MoveBy(dx, dy float64) (int, int, error) {
	cx, cy, err := a.pointer.Position()
	if err != nil {
		return a.fail(fmt.Errorf("read cursor position: %w", err))
	}
	w, h, err := a.pointer.ScreenSize()
	if err != nil {
		return a.fail(fmt.Errorf("read screen size: %w", err))
	}
	if w <= 0 || h <= 0 {
		return a.fail(fmt.Errorf("screen %dx%d: %w", w, h, ErrNoDisplay))
	}

	nx := ClampAxis(float64(cx)+dx, w)
	ny := ClampAxis(float64(cy)+dy, h)
	if err := a.pointer.MoveTo(nx, ny); err != nil {
		return a.fail(fmt.Errorf("move cursor to (%d,%d): %w", nx, ny, err))
	}
	return nx, ny, nil
}

func (a *Actuator) fail(err error) (int, int, error) {
	a.log.Error("%v", err)
	return 0, 0, err
}

// ClampAxis rounds v to the nearest pixel and clamps it into [0, size-1].
func ClampAxis(v float64, size int) int {
	limit := float64(size - 1)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	r := math.Round(v)
	if r > limit {
		return size - 1
	}
	return int(r)
}
