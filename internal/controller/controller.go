// Package controller wires the receiver, decoder, filter, actuator and
// status reporter into one running service.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"phone2pc/internal/filter"
	"phone2pc/internal/input"
	"phone2pc/internal/logger"
	"phone2pc/internal/metrics"
	"phone2pc/internal/network"
	"phone2pc/internal/protocol"
	"phone2pc/internal/session"
	"phone2pc/internal/status"
)

// Options configures a Controller. Sensitivity and Smoothing are clamped like
// the runtime setters; a zero Port binds an ephemeral port.
type Options struct {
	Host           string
	Port           int
	Sensitivity    float64
	Smoothing      float64
	StatusInterval time.Duration
	ReadTimeout    time.Duration
	ReadBuffer     int

	// SocketFactory overrides how the UDP socket is bound.
	SocketFactory network.UDPSocketFactory
	// OnReport receives every status report.
	OnReport func(status.Report)
	// Now stamps motion arrivals. Defaults to time.Now.
	Now func() time.Time
}

// Snapshot is the read-only status view served by the API.
type Snapshot struct {
	ConnectedClients int      `json:"connected_clients"`
	ClientIPs        []string `json:"client_ips"`
	Sensitivity      float64  `json:"sensitivity"`
	SmoothingFactor  float64  `json:"smoothing_factor"`
	AvgLatencyMS     float64  `json:"avg_latency_ms"`
	IsRunning        bool     `json:"is_running"`
}

// Controller owns all per-process state. Packets are handled one at a time
// on the ingestion goroutine; the reporter, API and tray only touch the
// mutex-guarded registry, filter settings and counters.
type Controller struct {
	log      logger.Logger
	now      func() time.Time
	receiver *network.UDPReceiver
	registry *session.Registry
	filter   *filter.MotionFilter
	actuator *input.Actuator
	counters *metrics.Counters
	reporter *status.Reporter
}

// New builds a stopped controller driving pointer.
func New(opts Options, pointer input.Pointer, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		log:      log,
		now:      opts.Now,
		registry: session.NewRegistry(),
		filter:   filter.New(opts.Sensitivity, opts.Smoothing),
		actuator: input.NewActuator(pointer, log),
		counters: metrics.NewCounters(),
	}
	c.receiver = network.NewUDPReceiver(network.ReceiverConfig{
		Address:       net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		ReadTimeout:   opts.ReadTimeout,
		ReadBuffer:    opts.ReadBuffer,
		SocketFactory: opts.SocketFactory,
		Logger:        log,
	})
	c.reporter = status.NewReporter(opts.StatusInterval, c.registry, c.counters, log)
	c.reporter.OnReport = opts.OnReport
	return c
}

// Run binds the socket and runs ingestion, status reporting and shutdown
// supervision until ctx is cancelled or the socket fails. A bind or receive
// failure is returned; a cancelled ctx returns nil.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.receiver.Start(); err != nil {
		return err
	}
	c.log.Info("smoothing=%.2f sensitivity=%.2f", c.filter.Smoothing(), c.filter.Sensitivity())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.receiver.Serve(ctx, c.handlePacket)
	})

	g.Go(func() error {
		return c.reporter.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		if err := c.receiver.Stop(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("stop receiver: %w", err)
		}
		return nil
	})

	err := g.Wait()
	c.log.Info("controller stopped")
	return err
}

// handlePacket decodes one datagram and applies it. Nothing here is fatal:
// bad packets and actuation failures are logged and dropped.
func (c *Controller) handlePacket(data []byte, addr *net.UDPAddr) {
	pkt, err := protocol.DecodePacket(data)
	if err != nil {
		c.log.Warn("dropping packet from %s: %v", addr, err)
		return
	}

	ip := session.ClientKey(addr)

	switch pkt.Type {
	case protocol.PacketMotion:
		c.registry.Register(ip)
		fdx, fdy := c.filter.Apply(pkt.DeltaX, pkt.DeltaY)
		// The failure is already logged by the actuator.
		_, _, _ = c.actuator.MoveBy(fdx, fdy)
		c.counters.RecordMotion(c.now())
	case protocol.PacketConnect:
		// A fresh session must not inherit motion left over from the last one.
		if c.registry.Register(ip) && c.registry.Size() == 1 {
			c.filter.Reset()
		}
		c.log.Info("client connected: %s (%s)", ip, pkt.Info)
	case protocol.PacketDisconnect:
		c.registry.Unregister(ip)
		c.log.Info("client disconnected: %s", ip)
	case protocol.PacketHeartbeat:
		if c.registry.Register(ip) {
			c.log.Debug("client %s registered by heartbeat", ip)
		}
	default:
		c.log.Warn("unknown packet type %q from %s", pkt.Tag, addr)
	}
}

// Status returns a consistent-enough view of the current state. Each field
// is read under its own lock.
func (c *Controller) Status() Snapshot {
	settings := c.filter.State()
	return Snapshot{
		ConnectedClients: c.registry.Size(),
		ClientIPs:        c.registry.List(),
		Sensitivity:      settings.Sensitivity,
		SmoothingFactor:  settings.SmoothingFactor,
		AvgLatencyMS:     c.counters.Snapshot().AvgLatencySeconds * 1000,
		IsRunning:        c.receiver.State() == network.Running,
	}
}

// SetSensitivity clamps v to [0.1, 5] and returns the stored value.
func (c *Controller) SetSensitivity(v float64) float64 {
	v = c.filter.SetSensitivity(v)
	c.log.Info("sensitivity set to %.2f", v)
	return v
}

// SetSmoothing clamps v to [0, 1] and returns the stored value.
func (c *Controller) SetSmoothing(v float64) float64 {
	v = c.filter.SetSmoothing(v)
	c.log.Info("smoothing set to %.2f", v)
	return v
}

// Registry exposes the client registry.
func (c *Controller) Registry() *session.Registry {
	return c.registry
}

// LocalAddr returns the bound UDP address, or nil when not running.
func (c *Controller) LocalAddr() net.Addr {
	return c.receiver.LocalAddr()
}
