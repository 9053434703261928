//go:build !windows && !darwin && !linux

package input

// NewSystemPointer reports that this platform has no pointer backend.
// Use `serve --dry-run` to run the pipeline against a virtual cursor.
func NewSystemPointer() (Pointer, error) {
	return nil, ErrUnsupportedPlatform
}
