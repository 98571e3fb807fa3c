package slots

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"podium/internal/core/model"
	"podium/internal/platform"
	"podium/internal/storage"
)

// Keys under which the collection and the current slot reference are stored.
const (
	SlotsKey   = "timer-app-slots"
	CurrentKey = "current-slot-id"
)

const persistTimeout = 2 * time.Second

var (
	// ErrInvalidTitle rejects an empty slot title.
	ErrInvalidTitle = errors.New("title is required")
	// ErrInvalidDuration rejects a zero or negative duration.
	ErrInvalidDuration = errors.New("duration must be greater than zero")
)

// Options configures a Store.
type Options struct {
	Clock platform.Clock
	IDs   platform.IDGenerator
	// Buffer sizes the subscription to the key-value store.
	Buffer int
}

// Store owns the ordered slot collection of one window and the current slot
// reference. Every transition persists the whole collection.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	clock     platform.Clock
	ids       platform.IDGenerator
	slots     []model.TimeSlot
	currentID string
	observers []chan Change
	external  <-chan storage.Change
	closed    bool
}

// ValidateInput checks form input before it reaches the store.
func ValidateInput(title string, duration int64) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidTitle
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// New rehydrates a Store from kv. Unreadable or malformed state yields an
// empty collection.
func New(kv storage.KV, options Options) *Store {
	if options.Clock == nil {
		options.Clock = platform.SystemClock{}
	}
	if options.IDs == nil {
		options.IDs = platform.UUIDGenerator{}
	}
	if options.Buffer <= 0 {
		options.Buffer = 16
	}

	store := &Store{
		kv:    kv,
		clock: options.Clock,
		ids:   options.IDs,
	}
	store.external = kv.Subscribe(options.Buffer)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if raw, ok, err := kv.Get(ctx, SlotsKey); err != nil {
		log.Printf("slots: load collection: %v", err)
	} else if ok {
		store.slots = decodeSlots(raw)
	}
	if raw, ok, err := kv.Get(ctx, CurrentKey); err != nil {
		log.Printf("slots: load current slot: %v", err)
	} else if ok {
		store.currentID = string(raw)
	}
	return store
}

// Subscribe registers a new observer channel.
func (store *Store) Subscribe(buffer int) <-chan Change {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Change, buffer)
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		close(ch)
		return ch
	}
	store.observers = append(store.observers, ch)
	return ch
}

// Watch applies changes written by other windows until ctx is done.
func (store *Store) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-store.external:
			if !ok {
				return
			}
			store.applyExternal(change)
		}
	}
}

// Close releases observers. The key-value store stays open.
func (store *Store) Close() {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return
	}
	store.closed = true
	for _, ch := range store.observers {
		close(ch)
	}
	store.observers = nil
}

// Slots returns a snapshot of the collection in display order.
func (store *Store) Slots() []model.TimeSlot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return cloneSlots(store.slots)
}

// Slot returns the slot with the given id.
func (store *Store) Slot(id string) (model.TimeSlot, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	index := store.indexLocked(id)
	if index < 0 {
		return model.TimeSlot{}, false
	}
	return store.slots[index].Clone(), true
}

// CurrentID returns the current slot reference, empty when none.
func (store *Store) CurrentID() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.currentID
}

// Current returns the slot the current reference points at, if it exists.
func (store *Store) Current() (model.TimeSlot, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	index := store.indexLocked(store.currentID)
	if index < 0 {
		return model.TimeSlot{}, false
	}
	return store.slots[index].Clone(), true
}

// SetCurrent points the current reference at id.
func (store *Store) SetCurrent(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.currentID == id {
		return
	}
	store.currentID = id
	store.persistCurrentLocked()
	store.emitLocked(Change{Origin: OriginLocal})
}

// ClearCurrent removes the current reference.
func (store *Store) ClearCurrent() {
	store.SetCurrent("")
}

// Create appends a fresh slot.
func (store *Store) Create(title string, duration int64) (model.TimeSlot, error) {
	if err := ValidateInput(title, duration); err != nil {
		return model.TimeSlot{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	slot := model.TimeSlot{
		ID:        store.ids.New(),
		Title:     strings.TrimSpace(title),
		Duration:  duration,
		CreatedAt: store.nowMillis(),
	}
	store.slots = append(store.slots, slot)
	store.persistSlotsLocked()
	store.emitLocked(Change{Origin: OriginLocal})
	return slot.Clone(), nil
}

// Delete removes a slot and clears the current reference if it pointed at it.
func (store *Store) Delete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	index := store.indexLocked(id)
	if index < 0 {
		return
	}

	store.slots = append(store.slots[:index:index], store.slots[index+1:]...)
	store.persistSlotsLocked()
	if store.currentID == id {
		store.currentID = ""
		store.persistCurrentLocked()
	}
	store.emitLocked(Change{Origin: OriginLocal})
}

// Start begins a run from the full duration and makes the slot current.
func (store *Store) Start(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.updateLocked(id, store.startFn()) {
		return
	}
	store.makeCurrentLocked(id)
}

// Pause freezes a running slot, keeping the whole seconds left. Completed
// slots keep their anchors but cannot be paused.
func (store *Store) Pause(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	now := store.nowMillis()
	store.updateLocked(id, func(slot *model.TimeSlot) bool {
		if slot.StartTime == nil || slot.EndTime == nil || slot.IsCompleted {
			return false
		}
		slot.RemainingTime = model.Int64(model.RemainingAt(*slot.EndTime, now))
		slot.IsPaused = true
		slot.StartTime = nil
		slot.EndTime = nil
		return true
	})
}

// Resume starts a new run from the paused remaining time.
func (store *Store) Resume(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	now := store.nowMillis()
	store.updateLocked(id, func(slot *model.TimeSlot) bool {
		if !slot.IsPaused {
			return false
		}
		timeToUse := slot.Duration
		if slot.RemainingTime != nil {
			timeToUse = *slot.RemainingTime
		}
		slot.StartTime = model.Int64(now)
		slot.EndTime = model.Int64(now + timeToUse*1000)
		slot.IsPaused = false
		slot.RemainingTime = nil
		return true
	})
}

// Complete marks a slot as expired. Run anchors are kept for display.
func (store *Store) Complete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.updateLocked(id, func(slot *model.TimeSlot) bool {
		slot.IsCompleted = true
		slot.IsPaused = false
		return true
	})
}

// Reset returns a slot to the fresh state.
func (store *Store) Reset(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.updateLocked(id, resetFn)
}

// Restart resets a slot and immediately starts a fresh run. It is the only
// way out of the completed state.
func (store *Store) Restart(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	start := store.startFn()
	if !store.updateLocked(id, func(slot *model.TimeSlot) bool {
		resetFn(slot)
		return start(slot)
	}) {
		return
	}
	store.makeCurrentLocked(id)
}

func (store *Store) startFn() func(*model.TimeSlot) bool {
	now := store.nowMillis()
	return func(slot *model.TimeSlot) bool {
		slot.StartTime = model.Int64(now)
		slot.EndTime = model.Int64(now + slot.Duration*1000)
		slot.RemainingTime = nil
		slot.IsPaused = false
		return true
	}
}

func resetFn(slot *model.TimeSlot) bool {
	slot.RemainingTime = nil
	slot.StartTime = nil
	slot.EndTime = nil
	slot.IsPaused = false
	slot.IsCompleted = false
	return true
}

// updateLocked applies fn to the slot with the given id, persisting and
// notifying when fn reports a change.
func (store *Store) updateLocked(id string, fn func(*model.TimeSlot) bool) bool {
	index := store.indexLocked(id)
	if index < 0 {
		return false
	}
	slot := store.slots[index].Clone()
	if !fn(&slot) {
		return false
	}
	store.slots[index] = slot
	store.persistSlotsLocked()
	store.emitLocked(Change{Origin: OriginLocal})
	return true
}

func (store *Store) makeCurrentLocked(id string) {
	if store.currentID == id {
		return
	}
	store.currentID = id
	store.persistCurrentLocked()
	store.emitLocked(Change{Origin: OriginLocal})
}

func (store *Store) applyExternal(change storage.Change) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return
	}

	switch change.Key {
	case SlotsKey:
		if change.Deleted {
			return
		}
		store.slots = decodeSlots(change.Value)
		store.emitLocked(Change{Origin: OriginExternal})
	case CurrentKey:
		id := ""
		if !change.Deleted {
			id = string(change.Value)
		}
		if id == store.currentID {
			return
		}
		store.currentID = id
		store.emitLocked(Change{Origin: OriginExternal})
	}
}

func (store *Store) persistSlotsLocked() {
	raw, err := json.Marshal(store.slots)
	if err != nil {
		log.Printf("slots: encode collection: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := store.kv.Set(ctx, SlotsKey, raw); err != nil {
		log.Printf("slots: persist collection: %v", err)
	}
}

func (store *Store) persistCurrentLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if store.currentID == "" {
		err = store.kv.Delete(ctx, CurrentKey)
	} else {
		err = store.kv.Set(ctx, CurrentKey, []byte(store.currentID))
	}
	if err != nil {
		log.Printf("slots: persist current slot: %v", err)
	}
}

func (store *Store) emitLocked(change Change) {
	change.Slots = cloneSlots(store.slots)
	change.CurrentID = store.currentID
	for _, ch := range store.observers {
		select {
		case ch <- change:
		default:
		}
	}
}

func (store *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range store.slots {
		if store.slots[i].ID == id {
			return i
		}
	}
	return -1
}

func (store *Store) nowMillis() int64 {
	return store.clock.Now().UnixMilli()
}

func decodeSlots(raw []byte) []model.TimeSlot {
	var decoded []model.TimeSlot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("slots: decode collection: %v", err)
		return nil
	}
	for _, slot := range decoded {
		if err := slot.Validate(); err != nil {
			log.Printf("slots: stored slot %s: %v", slot.ID, err)
		}
	}
	return decoded
}

func cloneSlots(slots []model.TimeSlot) []model.TimeSlot {
	out := make([]model.TimeSlot, len(slots))
	for i, slot := range slots {
		out[i] = slot.Clone()
	}
	return out
}
