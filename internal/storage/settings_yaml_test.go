package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/ui/preferences"
)

func TestLoadSettingsFileMissingReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podium", "settings.yaml")
	want := preferences.Settings{
		ProjectionFullscreen: false,
		ProjectionOpacity:    0.85,
		NotifyOnComplete:     false,
		SampleInterval:       250 * time.Millisecond,
		StorePath:            "/tmp/podium.db",
	}

	require.NoError(t, SaveSettingsFile(path, want))
	got, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSettingsFileIgnoresOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := "projection_opacity: 0.2\nsample_interval_ms: 5\nnotify_on_complete: false\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.ProjectionOpacity, settings.ProjectionOpacity)
	assert.Equal(t, defaults.SampleInterval, settings.SampleInterval)
	assert.True(t, settings.ProjectionFullscreen)
	assert.False(t, settings.NotifyOnComplete)
}

func TestLoadSettingsFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projection_opacity: [oops"), 0o644))

	settings, err := LoadSettingsFile(path)
	assert.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}
