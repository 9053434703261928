package network

import (
	"net"
	"sync"
	"time"
)

// mockPacket is one scripted datagram.
type mockPacket struct {
	data []byte
	addr *net.UDPAddr
}

// mockSocket replays scripted packets, then reports timeouts until closed.
type mockSocket struct {
	mu         sync.Mutex
	packets    []mockPacket
	readErr    error // returned once all packets are consumed
	closed     bool
	readBuffer int
	deadlines  int
	closedCh   chan struct{}
}

func newMockSocket(packets ...mockPacket) *mockSocket {
	return &mockSocket{packets: packets, closedCh: make(chan struct{})}
}

func (m *mockSocket) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, nil, net.ErrClosed
	}
	if len(m.packets) > 0 {
		pkt := m.packets[0]
		m.packets = m.packets[1:]
		m.mu.Unlock()
		return copy(b, pkt.data), pkt.addr, nil
	}
	if m.readErr != nil {
		err := m.readErr
		m.mu.Unlock()
		return 0, nil, err
	}
	m.mu.Unlock()

	// Behave like a short read deadline expiring.
	select {
	case <-m.closedCh:
		return 0, nil, net.ErrClosed
	case <-time.After(5 * time.Millisecond):
	}
	return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: timeoutError{}}
}

func (m *mockSocket) SetReadBuffer(bytes int) error {
	m.mu.Lock()
	m.readBuffer = bytes
	m.mu.Unlock()
	return nil
}

func (m *mockSocket) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return net.ErrClosed
	}
	m.deadlines++
	return nil
}

func (m *mockSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.closedCh)
	}
	return nil
}

func (m *mockSocket) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}
}

func (m *mockSocket) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type mockFactory struct {
	socket *mockSocket
	err    error
	calls  []*net.UDPAddr
}

func (f *mockFactory) ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error) {
	f.calls = append(f.calls, laddr)
	if f.err != nil {
		return nil, f.err
	}
	return f.socket, nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
