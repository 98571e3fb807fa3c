package main

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"podium/internal/core/model"
	"podium/internal/core/session"
	"podium/internal/core/slots"
	"podium/internal/core/timer"
	"podium/internal/platform"
	"podium/internal/storage"
	"podium/internal/ui/mainwindow"
	"podium/internal/ui/preferences"
	"podium/internal/ui/projection"
	"podium/internal/ui/tray"
	"podium/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const (
	appName = "Podium"
	appID   = "com.podium.app"
)

func main() {
	role, guard, err := platform.AcquireRole(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustLogo(resources.LogoActive))

	stores := newBackend(settings.StorePath)
	timerConfig := timer.Config{TimerConfig: settings.TimerConfig()}
	projections := projection.NewManager(fyneApp, projectionConfig(settings), timerConfig, stores.open)

	if role == platform.RoleProjection {
		runProjection(fyneApp, projections)
		return
	}
	runMain(fyneApp, settings, stores, timerConfig, projections)
}

// runProjection serves a second process: only the projection window, and the
// process ends when it closes.
func runProjection(fyneApp fyne.App, projections *projection.Manager) {
	projections.SetOnStateChange(func(open bool) {
		if !open {
			fyneApp.Quit()
		}
	})
	if err := projections.OpenSecondarySurface(); err != nil {
		log.Printf("open projection: %v", err)
		return
	}
	fyneApp.Run()
}

func runMain(fyneApp fyne.App, settings preferences.Settings, stores *backend, timerConfig timer.Config, projections *projection.Manager) {
	kv, err := stores.open()
	if err != nil {
		log.Printf("open slot store %s: %v; falling back to memory", stores.path, err)
		stores.useMemory()
		kv, _ = stores.open()
	}

	store := slots.New(kv, slots.Options{})
	engine := timer.New(timerConfig)
	mainWindow := mainwindow.New(fyneApp, store, engine, projections)

	var notifyOnComplete atomic.Bool
	notifyOnComplete.Store(settings.NotifyOnComplete)
	notifier := platform.AppNotifier{App: fyneApp}

	activeIcon := resources.MustLogo(resources.LogoActive)
	pausedIcon := resources.MustLogo(resources.LogoPaused)

	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettings(appName, updated); err != nil {
			log.Printf("save settings: %v", err)
		}
		notifyOnComplete.Store(updated.NotifyOnComplete)
		projections.UpdateConfig(projectionConfig(updated))
	})

	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShowMain:    mainWindow.Show,
			OnTogglePause: mainWindow.TogglePause,
			OnRestart:     mainWindow.RestartCurrent,
			OnToggleProjection: func() {
				if err := projections.Toggle(); err != nil {
					log.Printf("toggle projection: %v", err)
				}
			},
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(activeIcon)
		mainWindow.Window().SetCloseIntercept(mainWindow.Window().Hide)
		projections.SetOnStateChange(trayManager.SetProjectionOpen)
	} else {
		log.Printf("system tray unsupported on this platform")
		mainWindow.Window().SetMaster()
	}

	sess := session.New(store, engine, session.Options{
		OnComplete: func(slot model.TimeSlot) {
			if !notifyOnComplete.Load() {
				return
			}
			title, body := platform.CompletionNotice(slot.Title)
			if err := notifier.Notify(title, body); err != nil {
				log.Printf("notify: %v", err)
			}
		},
		OnChange: func(change slots.Change) {
			mainWindow.HandleChange(change)
			if trayManager == nil {
				return
			}
			fyne.Do(func() {
				handleChange(change, trayManager, desktopApp, activeIcon, pausedIcon)
			})
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go store.Watch(ctx)
	go sess.Run(ctx)
	mainWindow.Follow(ctx)
	if trayManager != nil {
		handleChange(slots.Change{Slots: store.Slots(), CurrentID: store.CurrentID()}, trayManager, desktopApp, activeIcon, pausedIcon)
		events := engine.Subscribe(16)
		go func() {
			for event := range events {
				fyne.Do(func() {
					handleProgress(event, store, trayManager)
				})
			}
		}()
	}

	mainWindow.Show()
	fyneApp.Run()

	cancel()
	_ = projections.CloseSecondarySurface()
	engine.Close()
	store.Close()
	if err := kv.Close(); err != nil {
		log.Printf("close slot store: %v", err)
	}
}

func handleChange(change slots.Change, trayManager *tray.Manager, desktopApp desktop.App, activeIcon, pausedIcon fyne.Resource) {
	current, ok := change.Current()
	trayManager.SetTimer(ok, ok && current.IsPaused)
	switch {
	case !ok:
		trayManager.SetStatus("no active timer")
	case current.IsCompleted:
		trayManager.SetStatus(current.Title + " finished")
	case current.IsPaused:
		trayManager.SetStatus(current.Title + " " + timer.FormatSeconds(timer.Derive(current, time.Now()).Remaining))
	}

	if ok && current.IsPaused {
		desktopApp.SetSystemTrayIcon(pausedIcon)
		return
	}
	desktopApp.SetSystemTrayIcon(activeIcon)
}

func handleProgress(event timer.Event, store *slots.Store, trayManager *tray.Manager) {
	if event.Type != timer.EventTick || !event.Display.Live {
		return
	}
	current, ok := store.Current()
	if !ok || current.ID != event.SlotID {
		return
	}
	trayManager.SetStatus(current.Title + " " + timer.FormatSeconds(event.Display.Remaining))
}

func projectionConfig(settings preferences.Settings) projection.Config {
	return projection.Config{
		Fullscreen: settings.ProjectionFullscreen,
		Opacity:    settings.ProjectionOpacity,
	}
}
