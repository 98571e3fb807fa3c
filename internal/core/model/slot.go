package model

import "errors"

// ErrInvariant indicates a slot whose temporal fields contradict each other.
var ErrInvariant = errors.New("slot invariant violated")

// TimeSlot is a named countdown with a fixed total duration.
//
// Timestamps are milliseconds since the Unix epoch and durations are whole
// seconds, matching the persisted record shape.
type TimeSlot struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Duration      int64  `json:"duration"`
	RemainingTime *int64 `json:"remainingTime,omitempty"`
	StartTime     *int64 `json:"startTime,omitempty"`
	EndTime       *int64 `json:"endTime,omitempty"`
	IsPaused      bool   `json:"isPaused"`
	IsCompleted   bool   `json:"isCompleted"`
	CreatedAt     int64  `json:"createdAt"`
}

// Running reports whether the slot has live run anchors and has not completed.
func (slot TimeSlot) Running() bool {
	return slot.StartTime != nil && slot.EndTime != nil && !slot.IsCompleted
}

// Started reports whether the slot has left the fresh state.
func (slot TimeSlot) Started() bool {
	return slot.StartTime != nil || slot.IsPaused || slot.IsCompleted
}

// RunID identifies the slot's current run. It changes on every start and resume.
func (slot TimeSlot) RunID() RunID {
	run := RunID{SlotID: slot.ID}
	if slot.StartTime != nil {
		run.StartTime = *slot.StartTime
	}
	return run
}

// Validate checks the temporal invariants of a slot.
func (slot TimeSlot) Validate() error {
	if slot.StartTime != nil && slot.RemainingTime != nil {
		return errors.Join(ErrInvariant, errors.New("both startTime and remainingTime set"))
	}
	if slot.IsPaused && slot.IsCompleted {
		return errors.Join(ErrInvariant, errors.New("both paused and completed"))
	}
	if (slot.StartTime == nil) != (slot.EndTime == nil) {
		return errors.Join(ErrInvariant, errors.New("startTime and endTime must be set together"))
	}
	if slot.StartTime != nil && slot.Duration <= 0 {
		return errors.Join(ErrInvariant, errors.New("running slot without duration"))
	}
	return nil
}

// Clone returns a deep copy so snapshots never share optional fields.
func (slot TimeSlot) Clone() TimeSlot {
	out := slot
	out.RemainingTime = cloneInt(slot.RemainingTime)
	out.StartTime = cloneInt(slot.StartTime)
	out.EndTime = cloneInt(slot.EndTime)
	return out
}

// RunID is the identity of one contiguous run of a slot.
type RunID struct {
	SlotID    string
	StartTime int64
}

// Int64 returns a pointer to value.
func Int64(value int64) *int64 {
	return &value
}

func cloneInt(value *int64) *int64 {
	if value == nil {
		return nil
	}
	return Int64(*value)
}

// RemainingAt returns the whole seconds left until endMillis at nowMillis,
// never negative.
func RemainingAt(endMillis, nowMillis int64) int64 {
	delta := endMillis - nowMillis
	if delta <= 0 {
		return 0
	}
	return delta / 1000
}
