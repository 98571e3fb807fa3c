package projection

import (
	"context"
	"image/color"
	"log"

	"podium/internal/core/session"
	"podium/internal/core/slots"
	"podium/internal/core/timer"
	"podium/internal/storage"
	"podium/internal/ui/countdown"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const emptyHint = "Select a time slot in the main window to begin"

// Config defines projection visuals.
type Config struct {
	Fullscreen bool
	Opacity    float64
}

const (
	windowWidthFraction  = float32(0.5)
	windowHeightFraction = float32(0.5)
	defaultScreenWidth   = float32(1920)
	defaultScreenHeight  = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window is the projection surface. It follows the shared key-value store
// through its own slot store and timer engine.
type Window struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	view       *countdown.View
	restart    *widget.Button

	kv      storage.KV
	store   *slots.Store
	engine  *timer.Engine
	session *session.Session
	cancel  context.CancelFunc
	closed  bool

	onClosed func()
}

func newWindow(app fyne.App, config Config, kv storage.KV, timerConfig timer.Config) *Window {
	window := app.NewWindow("Podium Projection")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: opacityToAlpha(config.Opacity)})
	view := countdown.New(countdown.Options{
		TitleSize:  48,
		TimeSize:   160,
		EmptyTitle: countdown.NoTimerTitle,
		EmptyHint:  emptyHint,
	})

	store := slots.New(kv, slots.Options{Clock: timerConfig.Clock})
	engine := timer.New(timerConfig)

	projection := &Window{
		window:     window,
		config:     config,
		background: background,
		view:       view,
		kv:         kv,
		store:      store,
		engine:     engine,
	}
	projection.session = session.New(store, engine, session.Options{
		OnChange: func(slots.Change) {
			fyne.Do(projection.refresh)
		},
	})

	projection.restart = widget.NewButton("Restart", projection.restartCurrent)
	closeButton := widget.NewButton("Close", window.Close)
	buttons := container.NewHBox(layout.NewSpacer(), projection.restart, closeButton, layout.NewSpacer())

	content := container.NewBorder(nil, container.NewPadded(buttons), nil, nil, view.CanvasObject())
	window.SetContent(container.NewStack(background, content))
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape {
			window.Close()
		}
	})
	window.SetOnClosed(projection.teardown)

	projection.applyWindowMode()
	return projection
}

func (projection *Window) start() {
	ctx, cancel := context.WithCancel(context.Background())
	projection.cancel = cancel
	events := projection.engine.Subscribe(64)

	projection.session.Sync()
	projection.refresh()

	go projection.store.Watch(ctx)
	go projection.view.Follow(ctx, events)
	go projection.session.Run(ctx)
}

// Show displays the window and focuses it.
func (projection *Window) Show() {
	projection.window.Show()
	projection.window.RequestFocus()
}

// UpdateConfig updates projection visuals.
func (projection *Window) UpdateConfig(config Config) {
	projection.config = config
	projection.background.FillColor = color.NRGBA{R: 0, G: 0, B: 0, A: opacityToAlpha(config.Opacity)}
	canvas.Refresh(projection.background)
	projection.applyWindowMode()
}

func (projection *Window) refresh() {
	slot, ok := projection.store.Current()
	projection.view.SetSlot(slot, ok && slot.Started(), projection.engine.Display())
	if projection.view.Empty() {
		projection.restart.Disable()
	} else {
		projection.restart.Enable()
	}
}

func (projection *Window) restartCurrent() {
	if slot, ok := projection.store.Current(); ok {
		projection.store.Restart(slot.ID)
	}
}

// close closes the window and releases its store and engine.
func (projection *Window) close() {
	projection.window.Close()
	projection.teardown()
}

func (projection *Window) teardown() {
	if projection.closed {
		return
	}
	projection.closed = true
	if projection.cancel != nil {
		projection.cancel()
	}
	projection.view.Close()
	projection.engine.Close()
	projection.store.Close()
	if err := projection.kv.Close(); err != nil {
		log.Printf("projection: close store: %v", err)
	}
	if projection.onClosed != nil {
		projection.onClosed()
	}
}

func (projection *Window) applyWindowMode() {
	if projection.config.Fullscreen {
		projection.window.SetFullScreen(true)
		return
	}
	projection.window.SetFullScreen(false)
	projection.resizeToScreenFraction()
}

func (projection *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := projection.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * windowWidthFraction
	height := screenSize.Height * windowHeightFraction
	minSize := projection.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	projection.window.Resize(fyne.NewSize(width, height))
	projection.window.CenterOnScreen()
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
