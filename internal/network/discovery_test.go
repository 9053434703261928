package network

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(rawURL[len("http://"):])
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestCheckHostFindsReceiver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"service":  "phone2pc",
			"udp_port": 5000,
		})
	}))
	defer srv.Close()

	ip, port := splitHostPort(t, srv.URL)
	host, ok := CheckHost(context.Background(), ip, port)
	require.True(t, ok)
	assert.Equal(t, DiscoveredHost{IP: ip, APIPort: port, UDPPort: 5000}, host)
}

func TestCheckHostRejectsOtherServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	ip, port := splitHostPort(t, srv.URL)
	_, ok := CheckHost(context.Background(), ip, port)
	assert.False(t, ok)
}

func TestCheckHostNothingListening(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	_, ok := CheckHost(context.Background(), "127.0.0.1", port)
	assert.False(t, ok)
}

func TestGetLocalIPsAreIPv4(t *testing.T) {
	ips, err := GetLocalIPs()
	require.NoError(t, err)
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		require.NotNil(t, parsed)
		assert.NotNil(t, parsed.To4())
		assert.False(t, parsed.IsLoopback())
	}
}
