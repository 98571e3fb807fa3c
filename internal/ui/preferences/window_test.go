package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyne.io/fyne/v2/test"
)

func TestSaveCollectsSettings(t *testing.T) {
	app := test.NewTempApp(t)
	var saved []Settings
	prefs := New(app, DefaultSettings(), func(settings Settings) {
		saved = append(saved, settings)
	})

	prefs.fullscreen.SetChecked(false)
	prefs.notify.SetChecked(false)
	prefs.opacity.SetValue(0.8)
	prefs.interval.SetText("250")
	prefs.storePath.SetText(" /tmp/podium.db ")
	prefs.handleSave()

	require.Len(t, saved, 1)
	assert.False(t, saved[0].ProjectionFullscreen)
	assert.False(t, saved[0].NotifyOnComplete)
	assert.InDelta(t, 0.8, saved[0].ProjectionOpacity, 0.001)
	assert.Equal(t, 250*time.Millisecond, saved[0].SampleInterval)
	assert.Equal(t, "/tmp/podium.db", saved[0].StorePath)
}

func TestSaveKeepsIntervalOnBadInput(t *testing.T) {
	app := test.NewTempApp(t)
	var saved Settings
	prefs := New(app, DefaultSettings(), func(settings Settings) { saved = settings })

	prefs.interval.SetText("5")
	prefs.handleSave()
	assert.Equal(t, 100*time.Millisecond, saved.SampleInterval)

	prefs.interval.SetText("fast")
	prefs.handleSave()
	assert.Equal(t, 100*time.Millisecond, saved.SampleInterval)
	assert.Equal(t, "100", prefs.interval.Text)
}

func TestTimerConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.SampleInterval = 200 * time.Millisecond

	config := settings.TimerConfig()
	assert.Equal(t, 200*time.Millisecond, config.SampleInterval)
	assert.Len(t, config.Thresholds, 3)
}
