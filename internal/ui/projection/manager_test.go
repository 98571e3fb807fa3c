package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/core/slots"
	"podium/internal/core/timer"
	"podium/internal/platform/platformtest"
	"podium/internal/storage"

	"fyne.io/fyne/v2/test"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, hub *storage.MemoryHub, clock *platformtest.Clock) *Manager {
	t.Helper()
	app := test.NewTempApp(t)
	config := timer.Config{Clock: clock}
	config.SampleInterval = time.Hour
	manager := NewManager(app, Config{Fullscreen: false, Opacity: 0.9}, config, func() (storage.KV, error) {
		return hub.Open(), nil
	})
	t.Cleanup(func() { _ = manager.CloseSecondarySurface() })
	return manager
}

func TestOpenFocusesExistingWindow(t *testing.T) {
	hub := storage.NewMemoryHub()
	manager := newTestManager(t, hub, platformtest.NewClock(epoch))
	var states []bool
	manager.SetOnStateChange(func(open bool) { states = append(states, open) })

	require.NoError(t, manager.OpenSecondarySurface())
	first := manager.window
	require.NoError(t, manager.OpenSecondarySurface())

	assert.True(t, manager.IsOpen())
	assert.Same(t, first, manager.window)
	assert.Equal(t, []bool{true}, states)

	require.NoError(t, manager.CloseSecondarySurface())
	assert.False(t, manager.IsOpen())
	assert.Equal(t, []bool{true, false}, states)
	require.NoError(t, manager.CloseSecondarySurface())
}

func TestOpenReportsBackendFailure(t *testing.T) {
	app := test.NewTempApp(t)
	failure := errors.New("disk gone")
	manager := NewManager(app, Config{}, timer.Config{}, func() (storage.KV, error) {
		return nil, failure
	})

	err := manager.OpenSecondarySurface()
	assert.ErrorIs(t, err, failure)
	assert.False(t, manager.IsOpen())
}

func TestWindowShowsEmptyState(t *testing.T) {
	manager := newTestManager(t, storage.NewMemoryHub(), platformtest.NewClock(epoch))
	require.NoError(t, manager.OpenSecondarySurface())

	assert.True(t, manager.window.restart.Disabled())
}

func TestWindowShowsEmptyStateForFreshSlot(t *testing.T) {
	hub := storage.NewMemoryHub()
	clock := platformtest.NewClock(epoch)
	manager := newTestManager(t, hub, clock)

	mainKV := hub.Open()
	defer mainKV.Close()
	main := slots.New(mainKV, slots.Options{Clock: clock, IDs: &platformtest.SequentialIDs{}})
	defer main.Close()

	slot, err := main.Create("Keynote", 120)
	require.NoError(t, err)
	main.Start(slot.ID)
	main.Reset(slot.ID)

	require.NoError(t, manager.OpenSecondarySurface())
	window := manager.window
	_, ok := window.store.Current()
	require.True(t, ok)
	assert.True(t, window.view.Empty())
	assert.True(t, window.restart.Disabled())
}

func TestWindowFollowsMainStore(t *testing.T) {
	hub := storage.NewMemoryHub()
	clock := platformtest.NewClock(epoch)
	manager := newTestManager(t, hub, clock)

	mainKV := hub.Open()
	defer mainKV.Close()
	main := slots.New(mainKV, slots.Options{Clock: clock, IDs: &platformtest.SequentialIDs{}})
	defer main.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slot, err := main.Create("Keynote", 120)
	require.NoError(t, err)
	main.Start(slot.ID)

	require.NoError(t, manager.OpenSecondarySurface())
	window := manager.window
	current, ok := window.store.Current()
	require.True(t, ok)
	assert.Equal(t, "Keynote", current.Title)
	assert.True(t, window.engine.Sampling())
	assert.False(t, window.restart.Disabled())

	clock.Advance(20 * time.Second)
	test.Tap(window.restart)

	restarted, _ := window.store.Slot(slot.ID)
	assert.Equal(t, clock.Now().UnixMilli(), *restarted.StartTime)

	go main.Watch(ctx)
	require.Eventually(t, func() bool {
		got, _ := main.Slot(slot.ID)
		return got.StartTime != nil && *got.StartTime == clock.Now().UnixMilli()
	}, time.Second, 5*time.Millisecond)
}

func TestOpacityToAlpha(t *testing.T) {
	assert.Equal(t, uint8(255), opacityToAlpha(1))
	assert.Equal(t, uint8(0), opacityToAlpha(-1))
	assert.Equal(t, uint8(255), opacityToAlpha(3))
	assert.Equal(t, uint8(178), opacityToAlpha(0.7))
}
