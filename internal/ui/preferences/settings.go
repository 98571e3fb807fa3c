package preferences

import (
	"time"

	"podium/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	ProjectionFullscreen bool
	ProjectionOpacity    float64
	NotifyOnComplete     bool
	SampleInterval       time.Duration

	// StorePath overrides the slot database location when non-empty.
	StorePath string
}

// DefaultSettings returns default settings for Podium.
func DefaultSettings() Settings {
	return Settings{
		ProjectionFullscreen: true,
		ProjectionOpacity:    1,
		NotifyOnComplete:     true,
		SampleInterval:       100 * time.Millisecond,
	}
}

// TimerConfig converts settings to the timer engine configuration.
func (settings Settings) TimerConfig() model.TimerConfig {
	config := model.DefaultTimerConfig()
	if settings.SampleInterval > 0 {
		config.SampleInterval = settings.SampleInterval
	}
	return config
}
