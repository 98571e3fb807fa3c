// Package platformtest provides deterministic platform doubles for tests.
package platformtest

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"podium/internal/platform"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*scheduled
}

type scheduled struct {
	clock   *Clock
	at      time.Time
	fn      func()
	stopped bool
}

func (timer *scheduled) Stop() bool {
	timer.clock.mu.Lock()
	defer timer.clock.mu.Unlock()
	wasActive := !timer.stopped
	timer.stopped = true
	return wasActive
}

// NewClock returns a clock fixed at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (clock *Clock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *Clock) AfterFunc(d time.Duration, f func()) platform.Timer {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	timer := &scheduled{clock: clock, at: clock.now.Add(d), fn: f}
	clock.pending = append(clock.pending, timer)
	return timer
}

// Advance moves the clock forward and runs every callback that became due.
func (clock *Clock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	now := clock.now
	var due []*scheduled
	var keep []*scheduled
	for _, timer := range clock.pending {
		if timer.stopped {
			continue
		}
		if !timer.at.After(now) {
			timer.stopped = true
			due = append(due, timer)
			continue
		}
		keep = append(keep, timer)
	}
	clock.pending = keep
	clock.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, timer := range due {
		timer.fn()
	}
}

// Pending returns the number of scheduled callbacks that have not fired.
func (clock *Clock) Pending() int {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	count := 0
	for _, timer := range clock.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}

// SequentialIDs returns "slot-1", "slot-2", ...
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (ids *SequentialIDs) New() string {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	ids.next++
	return "slot-" + strconv.Itoa(ids.next)
}
