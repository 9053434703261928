// Package filter smooths raw motion deltas before they reach the cursor.
package filter

import (
	"math"
	"sync"
)

// Bounds for the tunable parameters. Setters clamp into these ranges.
const (
	MinSensitivity = 0.1
	MaxSensitivity = 5.0
	MinSmoothing   = 0.0
	MaxSmoothing   = 1.0

	DefaultSensitivity = 1.0
	DefaultSmoothing   = 0.7
)

// State is a copy of the filter's internal state.
type State struct {
	SmoothedDX      float64
	SmoothedDY      float64
	SmoothingFactor float64
	Sensitivity     float64
}

// MotionFilter is a first-order exponential low-pass filter with a linear
// sensitivity gain applied before smoothing:
//
//	d' = d * sensitivity
//	smoothed = f*smoothed + (1-f)*d'
//
// State is never reset between samples, so an outlier decays geometrically.
// f = 0 passes the scaled delta through; f = 1 freezes the output.
type MotionFilter struct {
	mu          sync.Mutex
	smoothedDX  float64
	smoothedDY  float64
	smoothing   float64
	sensitivity float64
}

// New creates a filter with the given parameters, clamped into range.
func New(sensitivity, smoothing float64) *MotionFilter {
	f := &MotionFilter{
		sensitivity: DefaultSensitivity,
		smoothing:   DefaultSmoothing,
	}
	f.SetSensitivity(sensitivity)
	f.SetSmoothing(smoothing)
	return f
}

// Apply feeds one raw sample through the filter and returns the filtered delta.
func (f *MotionFilter) Apply(dx, dy float64) (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dx *= f.sensitivity
	dy *= f.sensitivity
	f.smoothedDX = f.smoothing*f.smoothedDX + (1-f.smoothing)*dx
	f.smoothedDY = f.smoothing*f.smoothedDY + (1-f.smoothing)*dy
	return f.smoothedDX, f.smoothedDY
}

// SetSensitivity stores v clamped to [MinSensitivity, MaxSensitivity] and
// returns the stored value. NaN leaves the current value unchanged.
func (f *MotionFilter) SetSensitivity(v float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !math.IsNaN(v) {
		f.sensitivity = clamp(v, MinSensitivity, MaxSensitivity)
	}
	return f.sensitivity
}

// SetSmoothing stores v clamped to [MinSmoothing, MaxSmoothing] and returns
// the stored value. NaN leaves the current value unchanged.
func (f *MotionFilter) SetSmoothing(v float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !math.IsNaN(v) {
		f.smoothing = clamp(v, MinSmoothing, MaxSmoothing)
	}
	return f.smoothing
}

// Sensitivity returns the current gain.
func (f *MotionFilter) Sensitivity() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sensitivity
}

// Smoothing returns the current smoothing factor.
func (f *MotionFilter) Smoothing() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.smoothing
}

// State returns a snapshot of the filter.
func (f *MotionFilter) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		SmoothedDX:      f.smoothedDX,
		SmoothedDY:      f.smoothedDY,
		SmoothingFactor: f.smoothing,
		Sensitivity:     f.sensitivity,
	}
}

// Reset zeroes the smoothed delta. Parameters are kept.
func (f *MotionFilter) Reset() {
	f.mu.Lock()
	f.smoothedDX, f.smoothedDY = 0, 0
	f.mu.Unlock()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
