package model

import "time"

// WarningThreshold is a percentage of elapsed duration that triggers a warning pulse.
type WarningThreshold struct {
	Percent float64
	Pulse   time.Duration
}

// TimerConfig contains runtime settings for the timer engine.
type TimerConfig struct {
	SampleInterval time.Duration
	Thresholds     []WarningThreshold
	// BandWidth is the width in percentage points of the window in which a
	// threshold may fire.
	BandWidth float64
}

// DefaultThresholds returns the 50/75/90 percent warnings.
func DefaultThresholds() []WarningThreshold {
	return []WarningThreshold{
		{Percent: 50, Pulse: 3 * time.Second},
		{Percent: 75, Pulse: 5 * time.Second},
		{Percent: 90, Pulse: 10 * time.Second},
	}
}

// DefaultTimerConfig returns the standard sampling configuration.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		SampleInterval: 100 * time.Millisecond,
		Thresholds:     DefaultThresholds(),
		BandWidth:      0.5,
	}
}
