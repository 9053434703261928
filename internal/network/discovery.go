// Package network provides the UDP receive loop, a protocol sender and LAN
// discovery helpers.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DiscoveredHost represents a phone2pc receiver found on the network
type DiscoveredHost struct {
	IP      string `json:"ip"`
	APIPort int    `json:"api_port"`
	UDPPort int    `json:"udp_port"`
}

// GetLocalIP returns the primary local IP address
func GetLocalIP() (string, error) {
	// No packet is sent; dialing UDP only selects the outbound interface.
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// GetLocalIPs returns all available local IPv4 addresses
func GetLocalIPs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue // interface down
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue // loopback interface
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			ip = ip.To4()
			if ip == nil {
				continue // not an ipv4 address
			}
			ips = append(ips, ip.String())
		}
	}
	return ips, nil
}

// ScanLAN queries every address of the local /24 for a phone2pc status API
// listening on apiPort.
func ScanLAN(ctx context.Context, apiPort int) ([]DiscoveredHost, error) {
	localIP, err := GetLocalIP()
	if err != nil {
		return nil, fmt.Errorf("failed to get local IP: %w", err)
	}

	parts := strings.Split(localIP, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid IP address format: %s", localIP)
	}
	subnet := strings.Join(parts[:3], ".")

	var hosts []DiscoveredHost
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 1; i <= 254; i++ {
		wg.Add(1)
		go func(hostNum int) {
			defer wg.Done()
			ip := fmt.Sprintf("%s.%d", subnet, hostNum)
			if host, ok := CheckHost(ctx, ip, apiPort); ok {
				mu.Lock()
				hosts = append(hosts, host)
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return hosts, nil
}

// CheckHost checks whether ip:apiPort answers /health like a phone2pc receiver.
func CheckHost(ctx context.Context, ip string, apiPort int) (DiscoveredHost, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	healthURL := fmt.Sprintf("http://%s/health", net.JoinHostPort(ip, fmt.Sprint(apiPort)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return DiscoveredHost{}, false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return DiscoveredHost{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DiscoveredHost{}, false
	}

	var health struct {
		Service string `json:"service"`
		UDPPort int    `json:"udp_port"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil || health.Service != "phone2pc" {
		return DiscoveredHost{}, false
	}

	return DiscoveredHost{IP: ip, APIPort: apiPort, UDPPort: health.UDPPort}, true
}
