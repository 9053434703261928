// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"fmt"
	"math"

	"github.com/getlantern/systray"

	"phone2pc/internal/controller"
	"phone2pc/internal/status"
)

// Step is the amount one menu click changes sensitivity or smoothing by.
const Step = 0.1

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Disabled bool
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the system tray icon and menu
type Tray struct {
	items   []*MenuItem
	onReady func()
	onExit  func()
	readyCh chan struct{}
	quitCh  chan struct{}
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	t := &Tray{
		items:   make([]*MenuItem, 0),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}

	t.onReady = func() {
		systray.SetTitle(title)
		systray.SetTooltip(tooltip)
		systray.SetIcon(getIcon())
		close(t.readyCh)
	}

	t.onExit = func() {
		close(t.quitCh)
	}

	return t
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title string, callback func()) int {
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	})
	return id
}

// AddLabel adds a disabled item used to display a value
func (t *Tray) AddLabel(title string) int {
	id := t.AddMenuItem(title, nil)
	t.items[id].Disabled = true
	return id
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil) // nil indicates separator
}

// SetItemTitle changes the text of a menu item
func (t *Tray) SetItemTitle(id int, title string) {
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return
	}
	t.items[id].Title = title
	if t.ready() && t.items[id].item != nil {
		t.items[id].item.SetTitle(title)
	}
}

// SetTitle changes the text next to the tray icon once the tray is up
func (t *Tray) SetTitle(title string) {
	if t.ready() {
		systray.SetTitle(title)
	}
}

// SetTooltip changes the icon tooltip once the tray is up
func (t *Tray) SetTooltip(tooltip string) {
	if t.ready() {
		systray.SetTooltip(tooltip)
	}
}

func (t *Tray) ready() bool {
	select {
	case <-t.readyCh:
		return true
	default:
		return false
	}
}

// Run starts the tray event loop (blocks). On macOS it must be called from
// the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.onExit)
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	t.onReady()

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}

		item := systray.AddMenuItem(menuItem.Title, "")
		menuItem.item = item
		if menuItem.Disabled {
			item.Disable()
		}

		if menuItem.Callback != nil {
			go func(mi *MenuItem) {
				for {
					select {
					case <-mi.item.ClickedCh:
						mi.Callback()
					case <-t.quitCh:
						return
					}
				}
			}(menuItem)
		}
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

// Settings is what the status tray reads and adjusts.
type Settings interface {
	Status() controller.Snapshot
	SetSensitivity(v float64) float64
	SetSmoothing(v float64) float64
}

// StatusTray is the phone2pc tray: client count in the title, and menu
// items nudging sensitivity and smoothing.
type StatusTray struct {
	*Tray
	settings      Settings
	sensitivityID int
	smoothingID   int
}

// NewStatusTray builds the tray menu. quit is called from the Quit item.
func NewStatusTray(settings Settings, quit func()) *StatusTray {
	st := &StatusTray{
		Tray:     New(Title(0), "phone2pc"),
		settings: settings,
	}

	st.sensitivityID = st.AddLabel("")
	st.AddMenuItem("Sensitivity +0.1", func() { st.adjustSensitivity(Step) })
	st.AddMenuItem("Sensitivity -0.1", func() { st.adjustSensitivity(-Step) })
	st.AddSeparator()
	st.smoothingID = st.AddLabel("")
	st.AddMenuItem("Smoothing +0.1", func() { st.adjustSmoothing(Step) })
	st.AddMenuItem("Smoothing -0.1", func() { st.adjustSmoothing(-Step) })
	st.AddSeparator()
	st.AddMenuItem("Quit", quit)

	st.refreshLabels()
	return st
}

// ShowReport updates the title and tooltip from a status report.
func (st *StatusTray) ShowReport(r status.Report) {
	st.SetTitle(Title(r.ConnectedClients))
	st.SetTooltip(r.Message)
}

func (st *StatusTray) adjustSensitivity(delta float64) {
	st.settings.SetSensitivity(nudge(st.settings.Status().Sensitivity, delta))
	st.refreshLabels()
}

func (st *StatusTray) adjustSmoothing(delta float64) {
	st.settings.SetSmoothing(nudge(st.settings.Status().SmoothingFactor, delta))
	st.refreshLabels()
}

func (st *StatusTray) refreshLabels() {
	snap := st.settings.Status()
	st.SetItemTitle(st.sensitivityID, fmt.Sprintf("Sensitivity: %.1f", snap.Sensitivity))
	st.SetItemTitle(st.smoothingID, fmt.Sprintf("Smoothing: %.1f", snap.SmoothingFactor))
}

// Title is the tray title for n connected clients.
func Title(n int) string {
	return fmt.Sprintf("P2PC %d", n)
}

// nudge adds delta and rounds to one decimal so repeated clicks land on
// 0.1 steps.
func nudge(v, delta float64) float64 {
	return math.Round((v+delta)*10) / 10
}

// getIcon returns a placeholder icon (valid 16x16 ICO)
func getIcon() []byte {
	icon := make([]byte, 1118)
	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00, // 1024 pixels + 40 header + 32 mask
		0x16, 0x00, 0x00, 0x00, // Offset
	})
	// DIB Header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // Size
		0x10, 0x00, 0x00, 0x00, // Width
		0x20, 0x00, 0x00, 0x00, // Height (16 * 2 for icon)
		0x01, 0x00, // Planes
		0x20, 0x00, // BPP
		0x00, 0x00, 0x00, 0x00, // Compression
		0x00, 0x04, 0x00, 0x00, // Image Size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	// Pixels and mask stay 0 for transparency
	return icon
}
