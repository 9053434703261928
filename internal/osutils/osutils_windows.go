//go:build windows

package osutils

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"

	"phone2pc/internal/logger"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err = windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// EnsureFirewallRule makes sure inbound UDP on port is allowed. When the rule
// is missing or stale it is recreated, elevating through UAC if needed.
func EnsureFirewallRule(port int, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}
	log.Info("checking rule '%s' for UDP port %d", RuleName, port)

	output, err := exec.Command("netsh", "advfirewall", "firewall", "show", "rule", "name="+RuleName).CombinedOutput()
	if err == nil && ruleMatches(string(output), port) {
		log.Info("rule '%s' already allows UDP port %d", RuleName, port)
		return nil
	}

	script := firewallScript(port)

	if !IsAdmin() {
		log.Info("process is not elevated, requesting UAC elevation")

		verbPtr, _ := syscall.UTF16PtrFromString("runas")
		exePtr, _ := syscall.UTF16PtrFromString("powershell.exe")
		argPtr, _ := syscall.UTF16PtrFromString(fmt.Sprintf("-NoProfile -WindowStyle Hidden -Command \"%s\"", script))

		var showCmd int32 = 0 // SW_HIDE
		if err := windows.ShellExecute(0, verbPtr, exePtr, argPtr, nil, showCmd); err != nil {
			return fmt.Errorf("launch elevated powershell: %w", err)
		}
		log.Info("UAC prompt requested, check the taskbar")
		return nil
	}

	if output, err := exec.Command("powershell", "-NoProfile", "-Command", script).CombinedOutput(); err != nil {
		return fmt.Errorf("create firewall rule: %w (output: %s)", err, output)
	}
	log.Info("rule '%s' created for UDP port %d", RuleName, port)
	return nil
}
