package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone2pc/internal/controller"
	"phone2pc/internal/filter"
	"phone2pc/internal/status"
)

type fakeSettings struct {
	f *filter.MotionFilter
}

func (s *fakeSettings) Status() controller.Snapshot {
	st := s.f.State()
	return controller.Snapshot{Sensitivity: st.Sensitivity, SmoothingFactor: st.SmoothingFactor}
}

func (s *fakeSettings) SetSensitivity(v float64) float64 { return s.f.SetSensitivity(v) }
func (s *fakeSettings) SetSmoothing(v float64) float64   { return s.f.SetSmoothing(v) }

func click(t *testing.T, st *StatusTray, title string) {
	t.Helper()
	for _, item := range st.items {
		if item != nil && item.Title == title {
			require.NotNil(t, item.Callback, title)
			item.Callback()
			return
		}
	}
	t.Fatalf("no menu item %q", title)
}

func titles(st *StatusTray) []string {
	var out []string
	for _, item := range st.items {
		if item == nil {
			out = append(out, "---")
			continue
		}
		out = append(out, item.Title)
	}
	return out
}

func TestMenuLayout(t *testing.T) {
	st := NewStatusTray(&fakeSettings{f: filter.New(1.0, 0.7)}, func() {})
	assert.Equal(t, []string{
		"Sensitivity: 1.0",
		"Sensitivity +0.1",
		"Sensitivity -0.1",
		"---",
		"Smoothing: 0.7",
		"Smoothing +0.1",
		"Smoothing -0.1",
		"---",
		"Quit",
	}, titles(st))
	assert.True(t, st.items[st.sensitivityID].Disabled)
}

func TestSensitivityItemsStepAndClamp(t *testing.T) {
	settings := &fakeSettings{f: filter.New(4.8, 0.7)}
	st := NewStatusTray(settings, func() {})

	click(t, st, "Sensitivity +0.1")
	assert.Equal(t, 4.9, settings.f.Sensitivity())
	click(t, st, "Sensitivity +0.1")
	click(t, st, "Sensitivity +0.1")
	assert.Equal(t, filter.MaxSensitivity, settings.f.Sensitivity())
	assert.Equal(t, "Sensitivity: 5.0", st.items[st.sensitivityID].Title)

	settings.f.SetSensitivity(0.2)
	click(t, st, "Sensitivity -0.1")
	click(t, st, "Sensitivity -0.1")
	assert.Equal(t, filter.MinSensitivity, settings.f.Sensitivity())
}

func TestSmoothingItemsStep(t *testing.T) {
	settings := &fakeSettings{f: filter.New(1.0, 0.7)}
	st := NewStatusTray(settings, func() {})

	for i := 0; i < 3; i++ {
		click(t, st, "Smoothing -0.1")
	}
	assert.Equal(t, 0.4, settings.f.Smoothing())
	assert.Equal(t, "Smoothing: 0.4", st.items[st.smoothingID].Title)

	for i := 0; i < 10; i++ {
		click(t, st, "Smoothing +0.1")
	}
	assert.Equal(t, 1.0, settings.f.Smoothing())
}

func TestQuitItem(t *testing.T) {
	quit := false
	st := NewStatusTray(&fakeSettings{f: filter.New(1, 0)}, func() { quit = true })
	click(t, st, "Quit")
	assert.True(t, quit)
}

func TestShowReportBeforeReadyIsSafe(t *testing.T) {
	st := NewStatusTray(&fakeSettings{f: filter.New(1, 0)}, func() {})
	st.ShowReport(status.Report{ConnectedClients: 2, Message: "Status: 2 client(s) connected"})
	assert.False(t, st.ready())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "P2PC 0", Title(0))
	assert.Equal(t, "P2PC 3", Title(3))
}

func TestNudge(t *testing.T) {
	v := 0.7
	for i := 0; i < 3; i++ {
		v = nudge(v, -Step)
	}
	assert.Equal(t, 0.4, v)
	assert.Equal(t, 1.1, nudge(1.0, Step))
}
