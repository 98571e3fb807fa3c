package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// MenuSetter installs the tray menu. desktop.App satisfies it.
type MenuSetter interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowMain         func()
	OnTogglePause      func()
	OnRestart          func()
	OnToggleProjection func()
	OnPreferences      func()
	OnQuit             func()
}

// Manager handles system tray state.
type Manager struct {
	app            MenuSetter
	callbacks      Callbacks
	statusItem     *fyne.MenuItem
	pauseItem      *fyne.MenuItem
	restartItem    *fyne.MenuItem
	projectionItem *fyne.MenuItem
	statusLabel    string
	paused         bool
	hasCurrent     bool
	projecting     bool
	menu           *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(app MenuSetter, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "no active timer",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		call(manager.callbacks.OnTogglePause)
	})
	manager.restartItem = fyne.NewMenuItem("Restart", func() {
		call(manager.callbacks.OnRestart)
	})
	manager.projectionItem = fyne.NewMenuItem("Open Projection", func() {
		call(manager.callbacks.OnToggleProjection)
	})

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label. Unchanged text does not rebuild the
// menu.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetTimer updates the items that depend on the current slot.
func (manager *Manager) SetTimer(hasCurrent, paused bool) {
	if hasCurrent == manager.hasCurrent && paused == manager.paused {
		return
	}
	manager.hasCurrent = hasCurrent
	manager.paused = paused
	manager.refreshStatus()
}

// SetProjectionOpen updates the projection toggle label.
func (manager *Manager) SetProjectionOpen(open bool) {
	manager.projecting = open
	manager.refreshMenu()
}

// Menu returns the last installed menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	manager.pauseItem.Disabled = !manager.hasCurrent
	manager.restartItem.Disabled = !manager.hasCurrent
	if manager.projecting {
		manager.projectionItem.Label = "Close Projection"
	} else {
		manager.projectionItem.Label = "Open Projection"
	}

	manager.menu = fyne.NewMenu("Podium",
		manager.statusItem,
		fyne.NewMenuItem("Show Podium", func() {
			call(manager.callbacks.OnShowMain)
		}),
		fyne.NewMenuItemSeparator(),
		manager.pauseItem,
		manager.restartItem,
		manager.projectionItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			call(manager.callbacks.OnPreferences)
		}),
		fyne.NewMenuItem("Quit", func() {
			call(manager.callbacks.OnQuit)
		}),
	)
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu)
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
