// Package session keeps one window's timer engine bound to the current slot
// of that window's store.
package session

import (
	"context"
	"sync"

	"podium/internal/core/model"
	"podium/internal/core/slots"
	"podium/internal/core/timer"
)

// Options configures a Session.
type Options struct {
	// OnComplete runs once per run of the current slot, whether this window's
	// engine or another window reached zero first.
	OnComplete func(model.TimeSlot)
	// OnChange runs after the engine was updated for a store change.
	OnChange func(slots.Change)
}

// Session feeds store changes into an engine and records engine completions
// in the store.
type Session struct {
	store   *slots.Store
	engine  *timer.Engine
	options Options
	changes <-chan slots.Change

	mu          sync.Mutex
	live        model.RunID
	hasLive     bool
	finished    model.RunID
	hasFinished bool
}

// New subscribes to store and installs the completion handler on engine.
func New(store *slots.Store, engine *timer.Engine, options Options) *Session {
	session := &Session{
		store:   store,
		engine:  engine,
		options: options,
		changes: store.Subscribe(32),
	}
	engine.OnComplete(session.complete)
	return session
}

// Run shows the current slot, then follows store changes until ctx is done or
// the store is closed.
func (session *Session) Run(ctx context.Context) {
	session.Sync()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-session.changes:
			if !ok {
				return
			}
			slot, ok := change.Current()
			session.show(slot, ok)
			if ok && slot.IsCompleted && session.wasLive(slot.RunID()) {
				session.finish(slot)
			}
			if session.options.OnChange != nil {
				session.options.OnChange(change)
			}
		}
	}
}

// Sync binds the engine to the store's current slot.
func (session *Session) Sync() {
	slot, ok := session.store.Current()
	session.show(slot, ok)
}

func (session *Session) show(slot model.TimeSlot, ok bool) {
	if !ok {
		session.engine.Stop()
		return
	}
	if slot.Running() {
		session.mu.Lock()
		session.live = slot.RunID()
		session.hasLive = true
		session.mu.Unlock()
	}
	session.engine.Show(slot)
}

func (session *Session) complete(slot model.TimeSlot) {
	session.store.Complete(slot.ID)
	session.finish(slot)
}

func (session *Session) wasLive(run model.RunID) bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.hasLive && session.live == run
}

// finish calls OnComplete unless the run was already reported.
func (session *Session) finish(slot model.TimeSlot) {
	run := slot.RunID()
	session.mu.Lock()
	if session.hasFinished && session.finished == run {
		session.mu.Unlock()
		return
	}
	session.finished = run
	session.hasFinished = true
	session.mu.Unlock()

	if session.options.OnComplete != nil {
		session.options.OnComplete(slot)
	}
}
