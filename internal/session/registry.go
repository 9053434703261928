// Package session tracks which phones are currently talking to the receiver.
package session

import (
	"net"
	"sort"
	"sync"
)

// Registry is the set of known client IPs. Entries are added on first
// contact and removed only by an explicit disconnect; there is no idle
// expiry. The set is bounded by the number of real devices, so there is no
// eviction either.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]struct{})}
}

// Register adds ip and reports whether it was not already present.
func (r *Registry) Register(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[ip]; ok {
		return false
	}
	r.clients[ip] = struct{}{}
	return true
}

// Unregister removes ip and reports whether it was present.
func (r *Registry) Unregister(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[ip]; !ok {
		return false
	}
	delete(r.clients, ip)
	return true
}

// Contains reports whether ip is registered.
func (r *Registry) Contains(ip string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[ip]
	return ok
}

// Size returns the number of registered clients.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// List returns the registered IPs in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	ips := make([]string, 0, len(r.clients))
	for ip := range r.clients {
		ips = append(ips, ip)
	}
	r.mu.RUnlock()
	sort.Strings(ips)
	return ips
}

// ClientKey returns the registry key for a sender address: its IP without
// the port, so a phone that rebinds its socket is still the same client.
func ClientKey(addr *net.UDPAddr) string {
	if addr == nil {
		return ""
	}
	if v4 := addr.IP.To4(); v4 != nil {
		return v4.String()
	}
	return addr.IP.String()
}
