package network

import (
	"net"
	"time"
)

// UDPSocket is the subset of *net.UDPConn the receiver needs. It lets the
// ingestion loop run against a scripted socket in tests.
type UDPSocket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	SetReadBuffer(bytes int) error
	SetReadDeadline(t time.Time) error
	Close() error
	LocalAddr() net.Addr
}

// UDPSocketFactory creates bound UDP sockets.
type UDPSocketFactory interface {
	ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error)
}

// SystemSocketFactory binds real sockets with net.ListenUDP.
type SystemSocketFactory struct{}

// ListenUDP binds laddr. *net.UDPConn already satisfies UDPSocket.
func (SystemSocketFactory) ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error) {
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
