package projection

import (
	"fmt"

	"podium/internal/core/timer"
	"podium/internal/platform"
	"podium/internal/storage"

	"fyne.io/fyne/v2"
)

var _ platform.Shell = (*Manager)(nil)

// Backend opens a key-value handle for a new projection window.
type Backend func() (storage.KV, error)

// Manager opens and closes the projection window. It must be used from the
// Fyne main goroutine.
type Manager struct {
	app      fyne.App
	config   Config
	timer    timer.Config
	backend  Backend
	window   *Window
	onChange func(open bool)
}

// NewManager creates a manager with no open window.
func NewManager(app fyne.App, config Config, timerConfig timer.Config, backend Backend) *Manager {
	return &Manager{
		app:     app,
		config:  config,
		timer:   timerConfig,
		backend: backend,
	}
}

// SetOnStateChange sets a handler fired when the window opens or closes.
func (manager *Manager) SetOnStateChange(handler func(open bool)) {
	manager.onChange = handler
}

// OpenSecondarySurface opens the projection window, or focuses it when it is
// already open.
func (manager *Manager) OpenSecondarySurface() error {
	if manager.window != nil {
		manager.window.Show()
		return nil
	}

	kv, err := manager.backend()
	if err != nil {
		return fmt.Errorf("open projection store: %w", err)
	}

	window := newWindow(manager.app, manager.config, kv, manager.timer)
	window.onClosed = func() {
		if manager.window == window {
			manager.window = nil
		}
		manager.notify(false)
	}
	manager.window = window
	window.start()
	window.Show()
	manager.notify(true)
	return nil
}

// CloseSecondarySurface closes the projection window if it is open.
func (manager *Manager) CloseSecondarySurface() error {
	if manager.window == nil {
		return nil
	}
	manager.window.close()
	return nil
}

// Toggle opens a closed window and closes an open one.
func (manager *Manager) Toggle() error {
	if manager.IsOpen() {
		return manager.CloseSecondarySurface()
	}
	return manager.OpenSecondarySurface()
}

// IsOpen reports whether the projection window is open.
func (manager *Manager) IsOpen() bool {
	return manager.window != nil
}

// UpdateConfig applies visuals to the open window and to future ones.
func (manager *Manager) UpdateConfig(config Config) {
	manager.config = config
	if manager.window != nil {
		manager.window.UpdateConfig(config)
	}
}

func (manager *Manager) notify(open bool) {
	if manager.onChange != nil {
		manager.onChange(open)
	}
}
