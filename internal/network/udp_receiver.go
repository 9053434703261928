package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"phone2pc/internal/logger"
	"phone2pc/internal/protocol"
)

// DefaultReadTimeout bounds each receive so the loop can notice shutdown.
const DefaultReadTimeout = time.Second

var (
	ErrAlreadyRunning = errors.New("receiver already running")
	ErrNotRunning     = errors.New("receiver not running")
)

// State is the receiver lifecycle: Stopped -> Running -> Stopped.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// FailedToStartError wraps a bind failure.
type FailedToStartError struct {
	Address string
	inner   error
}

func (e FailedToStartError) Error() string {
	return fmt.Sprintf("udp receiver: failed to listen on %s: %v", e.Address, e.inner)
}

func (e FailedToStartError) Unwrap() error { return e.inner }

// Handler processes one datagram. data is only valid for the duration of the
// call; the receive buffer is reused.
type Handler func(data []byte, addr *net.UDPAddr)

// ReceiverConfig configures a Receiver.
type ReceiverConfig struct {
	Address       string        // "host:port" to bind
	ReadTimeout   time.Duration // receive poll interval, DefaultReadTimeout when zero
	ReadBuffer    int           // SO_RCVBUF in bytes, OS default when zero
	SocketFactory UDPSocketFactory
	Logger        logger.Logger
}

// UDPReceiver owns the bound socket and feeds every datagram to a Handler
// from a single goroutine, so handlers never run concurrently.
type UDPReceiver struct {
	address     string
	readTimeout time.Duration
	readBuffer  int
	factory     UDPSocketFactory
	log         logger.Logger

	mu    sync.Mutex
	conn  UDPSocket
	state State
}

// NewUDPReceiver creates a stopped receiver.
func NewUDPReceiver(cfg ReceiverConfig) *UDPReceiver {
	r := &UDPReceiver{
		address:     cfg.Address,
		readTimeout: cfg.ReadTimeout,
		readBuffer:  cfg.ReadBuffer,
		factory:     cfg.SocketFactory,
		log:         cfg.Logger,
	}
	if r.readTimeout <= 0 {
		r.readTimeout = DefaultReadTimeout
	}
	if r.factory == nil {
		r.factory = SystemSocketFactory{}
	}
	if r.log == nil {
		r.log = logger.Noop()
	}
	return r
}

// Start binds the socket and moves the receiver to Running.
func (r *UDPReceiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Running {
		return ErrAlreadyRunning
	}

	addr, err := net.ResolveUDPAddr("udp", r.address)
	if err != nil {
		return FailedToStartError{Address: r.address, inner: err}
	}
	conn, err := r.factory.ListenUDP("udp", addr)
	if err != nil {
		return FailedToStartError{Address: r.address, inner: err}
	}
	if r.readBuffer > 0 {
		if err := conn.SetReadBuffer(r.readBuffer); err != nil {
			r.log.Warn("failed to set receive buffer to %d bytes: %v", r.readBuffer, err)
		}
	}

	r.conn = conn
	r.state = Running
	r.log.Info("listening on %s", conn.LocalAddr())
	return nil
}

// Serve runs the receive loop until ctx is done or Stop is called, both of
// which return nil. Any other socket failure stops the receiver and is
// returned. Serve closes the socket on exit.
func (r *UDPReceiver) Serve(ctx context.Context, handle Handler) error {
	conn := r.socket()
	if conn == nil {
		return ErrNotRunning
	}
	defer r.Stop()

	// One spare byte so oversized datagrams reach the decoder and get rejected
	// instead of being silently truncated to a valid-looking payload.
	buf := make([]byte, protocol.MaxPacketSize+1)

	for {
		if ctx.Err() != nil {
			r.log.Info("stopping: %v", ctx.Err())
			return nil
		}

		if err := conn.SetReadDeadline(time.Now().Add(r.readTimeout)); err != nil {
			if r.closed(err) {
				return nil
			}
			return fmt.Errorf("udp receiver: set read deadline: %w", err)
		}

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if r.closed(err) {
				return nil
			}
			r.log.Error("receive failed: %v", err)
			return fmt.Errorf("udp receiver: read: %w", err)
		}

		handle(buf[:n], addr)
	}
}

// closed reports whether err is the expected result of Stop.
func (r *UDPReceiver) closed(err error) bool {
	return errors.Is(err, net.ErrClosed) || r.State() == Stopped
}

// Stop closes the socket and moves the receiver to Stopped. It is safe to
// call more than once and from any goroutine.
func (r *UDPReceiver) Stop() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	wasRunning := r.state == Running
	r.state = Stopped
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	if wasRunning {
		r.log.Info("stopped")
	}
	return conn.Close()
}

// State returns the current lifecycle state.
func (r *UDPReceiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LocalAddr returns the bound address, or nil when stopped.
func (r *UDPReceiver) LocalAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

func (r *UDPReceiver) socket() UDPSocket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}
