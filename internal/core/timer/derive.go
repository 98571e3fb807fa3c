package timer

import (
	"fmt"
	"time"

	"podium/internal/core/model"
)

// Display is the countdown state shown for a slot at one instant.
type Display struct {
	Remaining int64
	Progress  float64
	// Live is true when the countdown advances with the wall clock.
	Live      bool
	Paused    bool
	Completed bool
}

// Derive computes what to show for slot at now. It never mutates the slot and
// never accumulates ticks: a running countdown is always recomputed from the
// stored end timestamp.
func Derive(slot model.TimeSlot, now time.Time) Display {
	display := Display{
		Paused:    slot.IsPaused,
		Completed: slot.IsCompleted,
	}

	switch {
	case slot.IsPaused && slot.RemainingTime != nil:
		display.Remaining = *slot.RemainingTime
	case slot.IsCompleted:
		display.Remaining = 0
	case slot.StartTime == nil || slot.EndTime == nil:
		display.Remaining = slot.Duration
	default:
		display.Remaining = model.RemainingAt(*slot.EndTime, now.UnixMilli())
		display.Live = true
	}

	display.Progress = Progress(slot.Duration, display.Remaining)
	return display
}

// Progress returns the elapsed percentage of duration, 0 when duration is 0.
func Progress(duration, remaining int64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(duration-remaining) * 100 / float64(duration)
}

// FormatSeconds renders HH:MM:SS from one hour up and MM:SS below.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
