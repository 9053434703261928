//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	smCXScreen = 0
	smCYScreen = 1
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procSetCursorPos     = user32.NewProc("SetCursorPos")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

// point mirrors the Win32 POINT struct
type point struct {
	X, Y int32
}

// win32Pointer drives the cursor through user32.dll.
type win32Pointer struct{}

// NewSystemPointer returns the Win32 pointer backend.
func NewSystemPointer() (Pointer, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
	}
	return win32Pointer{}, nil
}

func (win32Pointer) Position() (int, int, error) {
	var pt point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos: %w", err)
	}
	return int(pt.X), int(pt.Y), nil
}

// ScreenSize returns the primary display size.
func (win32Pointer) ScreenSize() (int, int, error) {
	w, _, _ := procGetSystemMetrics.Call(smCXScreen)
	h, _, _ := procGetSystemMetrics.Call(smCYScreen)
	return int(int32(w)), int(int32(h)), nil
}

func (win32Pointer) MoveTo(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}
