//go:build !windows

package osutils

import "phone2pc/internal/logger"

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// EnsureFirewallRule is a stub for non-Windows platforms
func EnsureFirewallRule(port int, log logger.Logger) error {
	if log != nil {
		log.Info("automatic rule management is only supported on Windows; make sure UDP port %d is reachable", port)
	}
	return nil
}
