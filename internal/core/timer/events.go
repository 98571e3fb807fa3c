package timer

import "time"

// EventType defines the type of engine event.
type EventType string

const (
	EventTick           EventType = "tick"
	EventWarning        EventType = "warning"
	EventWarningCleared EventType = "warning_cleared"
	EventCompleted      EventType = "completed"
)

// Event represents an engine update for observers.
type Event struct {
	Type    EventType
	SlotID  string
	Display Display
	// Threshold and Pulse are set on EventWarning.
	Threshold float64
	Pulse     time.Duration
	Warning   bool
}
