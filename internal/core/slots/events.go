package slots

import "podium/internal/core/model"

// Origin tells whether a change came from this window or another one.
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginExternal Origin = "external"
)

// Change is a snapshot of the store published after a transition.
type Change struct {
	Origin    Origin
	Slots     []model.TimeSlot
	CurrentID string
}

// Current returns the current slot contained in the snapshot.
func (change Change) Current() (model.TimeSlot, bool) {
	if change.CurrentID == "" {
		return model.TimeSlot{}, false
	}
	for _, slot := range change.Slots {
		if slot.ID == change.CurrentID {
			return slot, true
		}
	}
	return model.TimeSlot{}, false
}
