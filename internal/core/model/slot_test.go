package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		slot    TimeSlot
		wantErr bool
	}{
		{name: "fresh", slot: TimeSlot{Duration: 10}},
		{name: "running", slot: TimeSlot{Duration: 10, StartTime: Int64(1), EndTime: Int64(10_001)}},
		{name: "paused", slot: TimeSlot{Duration: 10, RemainingTime: Int64(4), IsPaused: true}},
		{name: "completed with anchors", slot: TimeSlot{Duration: 10, StartTime: Int64(1), EndTime: Int64(10_001), IsCompleted: true}},
		{name: "start and remaining", slot: TimeSlot{Duration: 10, StartTime: Int64(1), EndTime: Int64(2), RemainingTime: Int64(4)}, wantErr: true},
		{name: "paused and completed", slot: TimeSlot{Duration: 10, IsPaused: true, IsCompleted: true}, wantErr: true},
		{name: "start without end", slot: TimeSlot{Duration: 10, StartTime: Int64(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slot.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvariant)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRemainingAt(t *testing.T) {
	assert.Equal(t, int64(70), RemainingAt(100_000, 30_000))
	assert.Equal(t, int64(69), RemainingAt(100_000, 30_001))
	assert.Equal(t, int64(0), RemainingAt(100_000, 100_000))
	assert.Equal(t, int64(0), RemainingAt(100_000, 200_000))
}

func TestCloneDoesNotShareFields(t *testing.T) {
	slot := TimeSlot{ID: "a", StartTime: Int64(1), EndTime: Int64(2)}
	clone := slot.Clone()
	*clone.StartTime = 99

	assert.Equal(t, int64(1), *slot.StartTime)
}

func TestRunIDChangesWithStartTime(t *testing.T) {
	fresh := TimeSlot{ID: "a"}
	running := TimeSlot{ID: "a", StartTime: Int64(5), EndTime: Int64(6)}

	assert.NotEqual(t, fresh.RunID(), running.RunID())
	assert.Equal(t, RunID{SlotID: "a", StartTime: 5}, running.RunID())
}

func TestRecordShape(t *testing.T) {
	raw := []byte(`{"id":"x","title":"Talk","duration":300,"remainingTime":120,"isPaused":true,"isCompleted":false,"createdAt":1700000000000}`)

	var slot TimeSlot
	require.NoError(t, json.Unmarshal(raw, &slot))
	assert.Equal(t, "Talk", slot.Title)
	require.NotNil(t, slot.RemainingTime)
	assert.Equal(t, int64(120), *slot.RemainingTime)
	assert.Nil(t, slot.StartTime)

	encoded, err := json.Marshal(TimeSlot{ID: "y", Title: "Q", Duration: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"y","title":"Q","duration":5,"isPaused":false,"isCompleted":false,"createdAt":0}`, string(encoded))
}
