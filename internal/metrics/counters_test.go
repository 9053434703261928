package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordMotionLatencyEMA(t *testing.T) {
	c := NewCounters()
	base := time.Unix(1700000000, 0)

	c.RecordMotion(base)
	s := c.Snapshot()
	assert.Equal(t, uint64(1), s.MotionCount)
	assert.Zero(t, s.AvgLatencySeconds)

	c.RecordMotion(base.Add(100 * time.Millisecond))
	assert.InDelta(t, 0.01, c.Snapshot().AvgLatencySeconds, 1e-12)

	c.RecordMotion(base.Add(200 * time.Millisecond))
	// 0.01*0.9 + 0.1*0.1
	assert.InDelta(t, 0.019, c.Snapshot().AvgLatencySeconds, 1e-12)
	assert.Equal(t, uint64(3), c.Snapshot().MotionCount)
}

func TestRecordMotionConvergesToSteadyGap(t *testing.T) {
	c := NewCounters()
	at := time.Unix(0, 0)
	for i := 0; i < 500; i++ {
		c.RecordMotion(at)
		at = at.Add(20 * time.Millisecond)
	}
	assert.InDelta(t, 0.020, c.Snapshot().AvgLatencySeconds, 1e-6)
}

func TestTakeCountKeepsLatency(t *testing.T) {
	c := NewCounters()
	at := time.Unix(0, 0)
	c.RecordMotion(at)
	c.RecordMotion(at.Add(time.Second))

	s := c.TakeCount()
	assert.Equal(t, uint64(2), s.MotionCount)
	assert.InDelta(t, 0.1, s.AvgLatencySeconds, 1e-12)

	after := c.Snapshot()
	assert.Zero(t, after.MotionCount)
	assert.InDelta(t, 0.1, after.AvgLatencySeconds, 1e-12)

	// The gap across a reset still counts.
	c.RecordMotion(at.Add(2 * time.Second))
	assert.InDelta(t, 0.19, c.Snapshot().AvgLatencySeconds, 1e-12)
}

func TestClockGoingBackwardsIsClamped(t *testing.T) {
	c := NewCounters()
	at := time.Unix(100, 0)
	c.RecordMotion(at)
	c.RecordMotion(at.Add(-time.Second))
	assert.Zero(t, c.Snapshot().AvgLatencySeconds)
}

func TestConcurrentRecordAndTake(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	var taken uint64
	var mu sync.Mutex

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				c.RecordMotion(time.Now())
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			s := c.TakeCount()
			mu.Lock()
			taken += s.MotionCount
			mu.Unlock()
		}
	}()
	wg.Wait()

	taken += c.TakeCount().MotionCount
	assert.Equal(t, uint64(1000), taken)
}
