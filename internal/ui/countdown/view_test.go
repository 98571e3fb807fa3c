package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/core/model"
	"podium/internal/core/timer"
	"podium/internal/ui/animation"

	"fyne.io/fyne/v2/test"
)

func newTestView(t *testing.T) *View {
	t.Helper()
	test.NewTempApp(t)
	view := New(Options{
		EmptyTitle: "No Active Timer",
		EmptyHint:  "Select a time slot in the main window to begin",
		Animation:  animation.Config{FlashOn: time.Millisecond, FlashOff: time.Millisecond},
	})
	t.Cleanup(view.Close)
	return view
}

func TestViewEmptyState(t *testing.T) {
	view := newTestView(t)

	assert.Equal(t, "No Active Timer", view.title.Text)
	assert.Equal(t, "Select a time slot in the main window to begin", view.status.Text)
	assert.False(t, view.clock.Visible())
	assert.False(t, view.progress.Visible())
	assert.True(t, view.Empty())
}

func TestViewRendersSlot(t *testing.T) {
	view := newTestView(t)
	slot := model.TimeSlot{ID: "a", Title: "Keynote", Duration: 3700}

	view.SetSlot(slot, true, timer.Display{Remaining: 3700})

	assert.Equal(t, "Keynote", view.title.Text)
	assert.Equal(t, "01:01:40", view.clock.Text)
	assert.True(t, view.clock.Visible())
	assert.False(t, view.Empty())
	assert.Empty(t, view.status.Text)

	view.Handle(timer.Event{Type: timer.EventTick, Display: timer.Display{Remaining: 65, Progress: 98.2, Live: true}})
	assert.Equal(t, "01:05", view.clock.Text)
	assert.InDelta(t, 98.2, view.progress.Value, 0.001)

	view.Render(timer.Display{Remaining: 40, Paused: true})
	assert.Equal(t, "Paused", view.status.Text)
}

func TestViewWarningAndCompletion(t *testing.T) {
	view := newTestView(t)
	view.SetSlot(model.TimeSlot{ID: "a", Title: "Talk", Duration: 100}, true, timer.Display{Remaining: 100})

	view.Handle(timer.Event{Type: timer.EventWarning, Pulse: time.Hour, Display: timer.Display{Remaining: 50, Progress: 50}})
	require.Eventually(t, view.Warning, time.Second, time.Millisecond)

	view.Handle(timer.Event{Type: timer.EventWarningCleared})
	assert.False(t, view.Warning())

	view.Handle(timer.Event{Type: timer.EventCompleted, Display: timer.Display{Progress: 100}})
	assert.Equal(t, "Time Up!", view.status.Text)
	assert.Equal(t, "00:00", view.clock.Text)
	assert.True(t, view.Warning())

	view.Handle(timer.Event{Type: timer.EventWarningCleared})
	assert.True(t, view.Warning())

	view.SetSlot(model.TimeSlot{ID: "a", Title: "Talk", Duration: 100}, true, timer.Display{Remaining: 100, Live: true})
	assert.False(t, view.Warning())
	assert.Empty(t, view.status.Text)
}
