package animation

import (
	"context"
	"sync"
	"time"
)

// Config contains flash timing values.
type Config struct {
	FlashOn  time.Duration
	FlashOff time.Duration
}

// Engine drives the countdown colour through warning flashes and the alert
// state. apply runs with the engine lock held and must not call back into
// the engine.
type Engine struct {
	mu     sync.Mutex
	config Config
	apply  func(Phase)
	cancel context.CancelFunc
	phase  Phase
}

// New creates a new animation engine.
func New(config Config, apply func(Phase)) *Engine {
	defaults := DefaultConfig()
	if config.FlashOn <= 0 {
		config.FlashOn = defaults.FlashOn
	}
	if config.FlashOff <= 0 {
		config.FlashOff = defaults.FlashOff
	}
	return &Engine{config: config, apply: apply}
}

// Flash alternates between the warning phases for duration, then returns to
// the normal phase. A new Flash replaces a running one.
func (engine *Engine) Flash(ctx context.Context, duration time.Duration) {
	engine.start(ctx, func(runCtx context.Context) {
		deadline := time.Now().Add(duration)
		for time.Now().Before(deadline) {
			engine.set(runCtx, PhaseFlashOn)
			if !sleepWithContext(runCtx, engine.config.FlashOn) {
				return
			}
			engine.set(runCtx, PhaseFlashOff)
			if !sleepWithContext(runCtx, engine.config.FlashOff) {
				return
			}
		}
		engine.set(runCtx, PhaseNormal)
	})
}

// Alert cancels any flash and holds the alert phase.
func (engine *Engine) Alert() {
	engine.hold(PhaseAlert)
}

// Stop cancels any flash and returns to the normal phase.
func (engine *Engine) Stop() {
	engine.hold(PhaseNormal)
}

// Phase returns the last applied phase.
func (engine *Engine) Phase() Phase {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.phase
}

func (engine *Engine) hold(phase Phase) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	engine.applyLocked(phase)
	engine.mu.Unlock()
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

// set applies phase unless ctx was cancelled, so a replaced loop never
// overwrites the phase chosen by its successor.
func (engine *Engine) set(ctx context.Context, phase Phase) {
	engine.mu.Lock()
	if ctx.Err() != nil {
		engine.mu.Unlock()
		return
	}
	engine.applyLocked(phase)
	engine.mu.Unlock()
}

func (engine *Engine) applyLocked(phase Phase) {
	engine.phase = phase
	if engine.apply != nil {
		engine.apply(phase)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
