// Package osutils holds OS-specific helpers: admin detection and the
// Windows inbound firewall rule for the UDP port.
package osutils

import (
	"fmt"
	"strconv"
	"strings"
)

// RuleName is the display name of the inbound firewall rule.
const RuleName = "phone2pc UDP"

// firewallScript returns the PowerShell command that replaces the rule with
// one allowing inbound UDP on port.
func firewallScript(port int) string {
	return fmt.Sprintf(
		"Remove-NetFirewallRule -DisplayName '%s' -ErrorAction SilentlyContinue; New-NetFirewallRule -DisplayName '%s' -Direction Inbound -LocalPort %d -Protocol UDP -Action Allow -Profile Private,Domain",
		RuleName, RuleName, port,
	)
}

// ruleMatches reports whether `netsh advfirewall firewall show rule` output
// describes an allow rule for UDP port.
func ruleMatches(output string, port int) bool {
	if !strings.Contains(output, RuleName) {
		return false
	}
	var portOK, udpOK, allowOK bool
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "LocalPort":
			portOK = value == strconv.Itoa(port)
		case "Protocol":
			udpOK = strings.EqualFold(value, "UDP")
		case "Action":
			allowOK = strings.EqualFold(value, "Allow")
		}
	}
	return portOK && udpOK && allowOK
}
