// Package status periodically summarizes ingestion throughput and latency.
package status

import (
	"context"
	"fmt"
	"time"

	"phone2pc/internal/logger"
	"phone2pc/internal/metrics"
)

// DefaultInterval is the reporting period.
const DefaultInterval = 5 * time.Second

// ClientCounter is the part of the session registry the reporter reads.
type ClientCounter interface {
	Size() int
}

// Report is one reporting tick.
type Report struct {
	Time             time.Time `json:"time"`
	ConnectedClients int       `json:"connected_clients"`
	FPS              float64   `json:"fps"`
	LatencyMS        float64   `json:"latency_ms"`
	Message          string    `json:"message"`
}

// Reporter logs a status line every interval and hands each Report to
// OnReport when set.
type Reporter struct {
	interval time.Duration
	clients  ClientCounter
	counters *metrics.Counters
	log      logger.Logger
	now      func() time.Time

	// OnReport is called from the reporter goroutine after each tick.
	OnReport func(Report)
}

// NewReporter creates a reporter. A non-positive interval falls back to
// DefaultInterval.
func NewReporter(interval time.Duration, clients ClientCounter, counters *metrics.Counters, log logger.Logger) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Reporter{
		interval: interval,
		clients:  clients,
		counters: counters,
		log:      log,
		now:      time.Now,
	}
}

// Interval returns the reporting period.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// Run reports every interval until ctx is done. It always returns nil.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick produces one report. With clients connected it derives FPS from the
// motion count and resets the count; without clients the counters are left
// alone.
func (r *Reporter) Tick() Report {
	rep := Report{Time: r.now(), ConnectedClients: r.clients.Size()}

	if rep.ConnectedClients > 0 {
		snap := r.counters.TakeCount()
		rep.FPS = float64(snap.MotionCount) / r.interval.Seconds()
		rep.LatencyMS = snap.AvgLatencySeconds * 1000
		rep.Message = fmt.Sprintf("Status: %d client(s) connected, FPS: %.1f, Latency: %.1fms",
			rep.ConnectedClients, rep.FPS, rep.LatencyMS)
	} else {
		rep.Message = "Status: No clients connected"
	}

	r.log.Info("%s", rep.Message)
	if r.OnReport != nil {
		r.OnReport(rep)
	}
	return rep
}
