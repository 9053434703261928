package network

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"phone2pc/internal/protocol"
)

// DefaultHeartbeatInterval matches the phone app's keep-alive rate.
const DefaultHeartbeatInterval = time.Second

// UDPSender is the phone side of the protocol: it writes text datagrams to
// one receiver. It is used by `phone2pc send` and by loopback tests.
type UDPSender struct {
	conn      *net.UDPConn
	target    string
	done      chan struct{}
	closeOnce sync.Once
	sent      atomic.Uint64
}

// DialSender resolves target ("host:port") and opens a connected UDP socket.
func DialSender(target string) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &UDPSender{
		conn:   conn,
		target: target,
		done:   make(chan struct{}),
	}, nil
}

// Connect announces the sender.
func (s *UDPSender) Connect(info string) error {
	return s.send(protocol.EncodeConnect(info))
}

// Motion sends one motion sample.
func (s *UDPSender) Motion(dx, dy float64) error {
	return s.send(protocol.EncodeMotion(dx, dy))
}

// Heartbeat sends a keep-alive carrying the current Unix time in milliseconds.
func (s *UDPSender) Heartbeat() error {
	return s.send(protocol.EncodeHeartbeat(strconv.FormatInt(time.Now().UnixMilli(), 10)))
}

// Disconnect tells the receiver to forget this sender.
func (s *UDPSender) Disconnect(info string) error {
	return s.send(protocol.EncodeDisconnect(info))
}

// SendRaw writes an arbitrary payload, for exercising the decoder.
func (s *UDPSender) SendRaw(data []byte) error {
	return s.send(data)
}

// StartHeartbeat sends a heartbeat every interval until Close.
func (s *UDPSender) StartHeartbeat(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// UDP writes to an unreachable port can fail transiently; the
				// next tick simply tries again.
				_ = s.Heartbeat()
			case <-s.done:
				return
			}
		}
	}()
}

// Sent returns the number of datagrams written.
func (s *UDPSender) Sent() uint64 {
	return s.sent.Load()
}

// LocalAddr returns the sender's local address.
func (s *UDPSender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Close stops the heartbeat and closes the socket. It does not send a
// disconnect; call Disconnect first for a clean goodbye.
func (s *UDPSender) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *UDPSender) send(data []byte) error {
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send to %s: %w", s.target, err)
	}
	s.sent.Add(1)
	return nil
}
