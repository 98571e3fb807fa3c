package timer

import (
	"sync"
	"time"

	"podium/internal/core/model"
	"podium/internal/platform"
)

// Config contains runtime options for Engine.
type Config struct {
	model.TimerConfig
	Clock platform.Clock
}

// Engine samples the countdown of the slot a view is showing, fires warning
// pulses once per run and signals completion once per run.
type Engine struct {
	mu         sync.Mutex
	config     model.TimerConfig
	clock      platform.Clock
	slot       model.TimeSlot
	bound      bool
	display    Display
	run        model.RunID
	fired      []bool
	completed  bool
	warning    bool
	pulseSeq   uint64
	pulseTimer platform.Timer
	events     []chan Event
	stopCh     chan struct{}
	sampling   bool
	onComplete func(model.TimeSlot)
}

// New creates an Engine with the provided configuration.
func New(config Config) *Engine {
	defaults := model.DefaultTimerConfig()
	if config.SampleInterval <= 0 {
		config.SampleInterval = defaults.SampleInterval
	}
	if config.Thresholds == nil {
		config.Thresholds = defaults.Thresholds
	}
	if config.BandWidth <= 0 {
		config.BandWidth = defaults.BandWidth
	}
	if config.Clock == nil {
		config.Clock = platform.SystemClock{}
	}

	return &Engine{
		config: config.TimerConfig,
		clock:  config.Clock,
		fired:  make([]bool, len(config.Thresholds)),
	}
}

// OnComplete sets the completion handler. It runs on the goroutine that
// detected completion, after sampling has already stopped.
func (engine *Engine) OnComplete(handler func(model.TimeSlot)) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.onComplete = handler
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Show binds the engine to slot. A new slot identity or a new start time
// begins a new run with every warning un-fired. Any change to the temporal
// fields cancels the current sampling loop before a new one may start.
func (engine *Engine) Show(slot model.TimeSlot) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	run := slot.RunID()
	if !engine.bound || run != engine.run {
		engine.resetRunLocked(run)
	}
	changed := !engine.bound || !sameTemporal(engine.slot, slot)
	engine.slot = slot.Clone()
	engine.bound = true
	engine.display = Derive(slot, engine.clock.Now())

	if changed {
		engine.stopLoopLocked()
	}
	if engine.display.Live && !engine.completed && !engine.sampling {
		engine.startLoopLocked()
	}

	engine.emitLocked(Event{
		Type:    EventTick,
		SlotID:  slot.ID,
		Display: engine.display,
		Warning: engine.warning,
	})
}

// Stop cancels sampling and forgets the bound slot. The slot itself is not
// touched.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLoopLocked()
	engine.bound = false
	engine.slot = model.TimeSlot{}
	engine.display = Display{}
}

// Close stops the engine and closes observers.
func (engine *Engine) Close() {
	engine.mu.Lock()
	engine.stopLoopLocked()
	if engine.pulseTimer != nil {
		engine.pulseTimer.Stop()
		engine.pulseTimer = nil
	}
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Sample processes one sampling tick at now.
func (engine *Engine) Sample(now time.Time) {
	engine.sample(nil, now)
}

// Display returns the last derived display state.
func (engine *Engine) Display() Display {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.display
}

// Warning reports whether a warning pulse is active.
func (engine *Engine) Warning() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.warning
}

// Fired returns the triggered flag of each threshold for the current run.
func (engine *Engine) Fired() []bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return append([]bool(nil), engine.fired...)
}

// Sampling reports whether a sampling loop is active.
func (engine *Engine) Sampling() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.sampling
}

func (engine *Engine) loop(stopCh chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			engine.sample(stopCh, engine.clock.Now())
		}
	}
}

// sample derives the countdown, fires at most one warning and detects
// completion. Ticks from a cancelled loop are dropped.
func (engine *Engine) sample(from chan struct{}, now time.Time) {
	engine.mu.Lock()
	if from != nil && from != engine.stopCh {
		engine.mu.Unlock()
		return
	}
	if !engine.bound || engine.completed || !engine.slot.Running() {
		engine.mu.Unlock()
		return
	}

	remaining := model.RemainingAt(*engine.slot.EndTime, now.UnixMilli())
	engine.display = Display{
		Remaining: remaining,
		Progress:  Progress(engine.slot.Duration, remaining),
		Live:      true,
	}
	engine.emitLocked(Event{
		Type:    EventTick,
		SlotID:  engine.slot.ID,
		Display: engine.display,
		Warning: engine.warning,
	})
	engine.checkThresholdsLocked()

	if remaining > 0 {
		engine.mu.Unlock()
		return
	}

	engine.stopLoopLocked()
	engine.completed = true
	engine.display.Live = false
	slot := engine.slot.Clone()
	handler := engine.onComplete
	engine.emitLocked(Event{
		Type:    EventCompleted,
		SlotID:  slot.ID,
		Display: engine.display,
		Warning: engine.warning,
	})
	engine.mu.Unlock()

	if handler != nil {
		handler(slot)
	}
}

func (engine *Engine) checkThresholdsLocked() {
	progress := engine.display.Progress
	for index, threshold := range engine.config.Thresholds {
		if progress < threshold.Percent || progress >= threshold.Percent+engine.config.BandWidth {
			continue
		}
		if engine.fired[index] {
			return
		}
		engine.fired[index] = true
		engine.startPulseLocked(threshold.Pulse)
		engine.emitLocked(Event{
			Type:      EventWarning,
			SlotID:    engine.slot.ID,
			Display:   engine.display,
			Threshold: threshold.Percent,
			Pulse:     threshold.Pulse,
			Warning:   true,
		})
		return
	}
}

func (engine *Engine) startPulseLocked(pulse time.Duration) {
	if engine.pulseTimer != nil {
		engine.pulseTimer.Stop()
	}
	engine.pulseSeq++
	seq := engine.pulseSeq
	engine.warning = true
	engine.pulseTimer = engine.clock.AfterFunc(pulse, func() {
		engine.endPulse(seq)
	})
}

func (engine *Engine) endPulse(seq uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if seq != engine.pulseSeq || !engine.warning {
		return
	}
	engine.warning = false
	engine.pulseTimer = nil
	engine.emitLocked(Event{
		Type:    EventWarningCleared,
		SlotID:  engine.slot.ID,
		Display: engine.display,
	})
}

func (engine *Engine) resetRunLocked(run model.RunID) {
	engine.run = run
	engine.completed = false
	for index := range engine.fired {
		engine.fired[index] = false
	}
}

func (engine *Engine) startLoopLocked() {
	stopCh := make(chan struct{})
	engine.stopCh = stopCh
	engine.sampling = true
	go engine.loop(stopCh, engine.config.SampleInterval)
}

func (engine *Engine) stopLoopLocked() {
	if engine.stopCh != nil {
		close(engine.stopCh)
		engine.stopCh = nil
	}
	engine.sampling = false
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func sameTemporal(a, b model.TimeSlot) bool {
	return a.ID == b.ID &&
		equalInt(a.StartTime, b.StartTime) &&
		equalInt(a.EndTime, b.EndTime) &&
		equalInt(a.RemainingTime, b.RemainingTime) &&
		a.IsPaused == b.IsPaused &&
		a.IsCompleted == b.IsCompleted
}

func equalInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
