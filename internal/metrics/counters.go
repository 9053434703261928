// Package metrics holds the motion counters shared between the ingestion
// loop and the status reporter.
package metrics

import (
	"sync"
	"time"
)

// latencyWeight is the weight of the newest gap in the latency EMA.
const latencyWeight = 0.1

// Counters tracks motion throughput and the average gap between motion
// samples. The ingestion loop writes, the status reporter reads and resets
// the count, so every access goes through mu.
type Counters struct {
	mu          sync.Mutex
	motionCount uint64
	avgLatency  float64 // seconds
	lastMotion  time.Time
}

// Snapshot is a consistent copy of the counters.
type Snapshot struct {
	MotionCount       uint64
	AvgLatencySeconds float64
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordMotion counts one motion sample arriving at at. Every gap after the
// first sample feeds the latency EMA (0.9 old, 0.1 new).
func (c *Counters) RecordMotion(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.motionCount++
	if !c.lastMotion.IsZero() {
		gap := at.Sub(c.lastMotion).Seconds()
		if gap < 0 {
			gap = 0
		}
		c.avgLatency = c.avgLatency*(1-latencyWeight) + gap*latencyWeight
	}
	c.lastMotion = at
}

// Snapshot returns the current values without resetting anything.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{MotionCount: c.motionCount, AvgLatencySeconds: c.avgLatency}
}

// TakeCount returns the values and zeroes the motion count in one step.
// The latency average is kept.
func (c *Counters) TakeCount() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{MotionCount: c.motionCount, AvgLatencySeconds: c.avgLatency}
	c.motionCount = 0
	return s
}
