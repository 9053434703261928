//go:build linux

package input

import (
	"fmt"
	"os/exec"
	"strconv"
)

// xdotoolPointer drives the X11 cursor through the xdotool binary.
type xdotoolPointer struct {
	toolPath string
}

// NewSystemPointer returns the X11 pointer backend. xdotool must be in PATH.
func NewSystemPointer() (Pointer, error) {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, fmt.Errorf("%w: xdotool (install it with your package manager)", ErrToolNotFound)
	}
	return &xdotoolPointer{toolPath: path}, nil
}

func (p *xdotoolPointer) Position() (int, int, error) {
	output, err := exec.Command(p.toolPath, "getmouselocation", "--shell").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return parseMouseLocation(string(output))
}

func (p *xdotoolPointer) ScreenSize() (int, int, error) {
	output, err := exec.Command(p.toolPath, "getdisplaygeometry").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return parseDisplayGeometry(string(output))
}

func (p *xdotoolPointer) MoveTo(x, y int) error {
	cmd := exec.Command(p.toolPath, "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return nil
}
