//go:build darwin

package input

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

CGPoint getCurrentMousePosition() {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint cursor = CGEventGetLocation(event);
    CFRelease(event);
    return cursor;
}

size_t mainDisplayWidth() {
    return CGDisplayPixelsWide(CGMainDisplayID());
}

size_t mainDisplayHeight() {
    return CGDisplayPixelsHigh(CGMainDisplayID());
}

// Post a mouse-moved event so applications see the move, not just a warp.
void moveMouseTo(CGFloat x, CGFloat y) {
    CGPoint target = CGPointMake(x, y);
    CGEventRef event = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, target, kCGMouseButtonLeft);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}
*/
import "C"

import (
	"errors"
	"log"
)

// quartzPointer drives the cursor through CoreGraphics.
type quartzPointer struct{}

// NewSystemPointer returns the CoreGraphics pointer backend.
func NewSystemPointer() (Pointer, error) {
	if !bool(C.hasAccessibilityPermissions()) {
		// Moves are silently dropped until the user grants access.
		log.Println("Input: accessibility permission missing; grant it in System Settings > Privacy & Security > Accessibility")
	}
	return quartzPointer{}, nil
}

func (quartzPointer) Position() (int, int, error) {
	pos := C.getCurrentMousePosition()
	return int(pos.x), int(pos.y), nil
}

func (quartzPointer) ScreenSize() (int, int, error) {
	w := int(C.mainDisplayWidth())
	h := int(C.mainDisplayHeight())
	if w == 0 || h == 0 {
		return 0, 0, errors.New("CGMainDisplayID reported an empty display")
	}
	return w, h, nil
}

func (quartzPointer) MoveTo(x, y int) error {
	C.moveMouseTo(C.CGFloat(x), C.CGFloat(y))
	return nil
}
