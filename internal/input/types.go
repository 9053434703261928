// Package input moves the host cursor in response to filtered motion.
package input

import "errors"

var (
	// ErrUnsupportedPlatform is returned when the OS has no pointer backend
	ErrUnsupportedPlatform = errors.New("cursor control not supported on this platform")

	// ErrToolNotFound is returned when the required external tool is not found
	ErrToolNotFound = errors.New("required tool not found")

	// ErrCommandFailed is returned when the external command fails
	ErrCommandFailed = errors.New("command execution failed")

	// ErrNoDisplay is returned when the reported screen has no area
	ErrNoDisplay = errors.New("no usable display")
)

// Pointer is the host's pointing-device subsystem: read the cursor, read the
// primary screen size, warp the cursor to an absolute position.
type Pointer interface {
	Position() (x, y int, err error)
	ScreenSize() (width, height int, err error)
	MoveTo(x, y int) error
}
