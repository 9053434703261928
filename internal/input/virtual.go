package input

import "sync"

// VirtualPointer is an in-memory Pointer. It backs `serve --dry-run` on
// headless machines and the tests.
type VirtualPointer struct {
	mu     sync.Mutex
	x, y   int
	width  int
	height int
	moves  [][2]int
	err    error
}

// NewVirtualPointer creates a pointer at (x, y) on a width x height screen.
func NewVirtualPointer(x, y, width, height int) *VirtualPointer {
	return &VirtualPointer{x: x, y: y, width: width, height: height}
}

// Position returns the current virtual cursor position.
func (p *VirtualPointer) Position() (int, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, 0, p.err
	}
	return p.x, p.y, nil
}

// ScreenSize returns the virtual screen size.
func (p *VirtualPointer) ScreenSize() (int, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, 0, p.err
	}
	return p.width, p.height, nil
}

// MoveTo records the move and updates the position. Out-of-range targets are
// stored as given so tests can catch a caller that skipped clamping.
func (p *VirtualPointer) MoveTo(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.x, p.y = x, y
	p.moves = append(p.moves, [2]int{x, y})
	return nil
}

// SetScreenSize changes the virtual resolution.
func (p *VirtualPointer) SetScreenSize(width, height int) {
	p.mu.Lock()
	p.width, p.height = width, height
	p.mu.Unlock()
}

// SetError makes every subsequent call fail with err (nil clears it).
func (p *VirtualPointer) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Moves returns every target passed to MoveTo, oldest first.
func (p *VirtualPointer) Moves() [][2]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][2]int, len(p.moves))
	copy(out, p.moves)
	return out
}
