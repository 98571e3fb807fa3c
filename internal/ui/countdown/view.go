// Package countdown renders a timer engine's events: title, remaining time,
// progress and the warning flash.
package countdown

import (
	"context"

	"podium/internal/core/model"
	"podium/internal/core/timer"
	"podium/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const (
	statusPaused = "Paused"
	statusDone   = "Time Up!"
)

// NoTimerTitle is the usual empty state title.
const NoTimerTitle = "No Active Timer"

// Options defines the view's look.
type Options struct {
	TitleSize float32
	TimeSize  float32
	Palette   animation.Palette
	Animation animation.Config

	// EmptyTitle and EmptyHint are shown when there is no started slot.
	EmptyTitle string
	EmptyHint  string
}

// View is a countdown display. Methods other than Follow must be called on
// the Fyne main goroutine.
type View struct {
	options  Options
	flash    *animation.Engine
	title    *canvas.Text
	clock    *canvas.Text
	status   *canvas.Text
	progress *widget.ProgressBar
	content  *fyne.Container

	ctx       context.Context
	cancel    context.CancelFunc
	hasSlot   bool
	completed bool
}

// New builds a view with no slot.
func New(options Options) *View {
	if options.TitleSize <= 0 {
		options.TitleSize = 24
	}
	if options.TimeSize <= 0 {
		options.TimeSize = 64
	}
	if options.Palette.Normal == nil {
		options.Palette = animation.DefaultPalette()
	}

	title := canvas.NewText("", options.Palette.Normal)
	title.Alignment = fyne.TextAlignCenter
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = options.TitleSize

	clock := canvas.NewText("--:--", options.Palette.Normal)
	clock.Alignment = fyne.TextAlignCenter
	clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clock.TextSize = options.TimeSize

	status := canvas.NewText("", options.Palette.Normal)
	status.Alignment = fyne.TextAlignCenter
	status.TextSize = options.TitleSize * 0.75

	progress := widget.NewProgressBar()
	progress.Min = 0
	progress.Max = 100
	progress.TextFormatter = func() string { return "" }

	ctx, cancel := context.WithCancel(context.Background())
	view := &View{
		options:  options,
		title:    title,
		clock:    clock,
		status:   status,
		progress: progress,
		ctx:      ctx,
		cancel:   cancel,
	}
	view.flash = animation.New(options.Animation, func(phase animation.Phase) {
		fyne.Do(func() {
			view.paint(phase)
		})
	})
	view.content = container.NewVBox(
		layout.NewSpacer(),
		title,
		clock,
		progress,
		status,
		layout.NewSpacer(),
	)
	view.SetSlot(model.TimeSlot{}, false, timer.Display{})
	return view
}

// CanvasObject returns the view's root object.
func (view *View) CanvasObject() fyne.CanvasObject {
	return view.content
}

// SetSlot shows slot, or the empty state when ok is false.
func (view *View) SetSlot(slot model.TimeSlot, ok bool, display timer.Display) {
	view.hasSlot = ok
	if !ok {
		view.flash.Stop()
		view.completed = false
		view.title.Text = view.options.EmptyTitle
		view.clock.Hide()
		view.progress.Hide()
		view.status.Text = view.options.EmptyHint
		view.title.Refresh()
		view.status.Refresh()
		return
	}

	view.title.Text = slot.Title
	view.title.Refresh()
	view.clock.Show()
	view.progress.Show()
	view.Render(display)
}

// Render updates time, progress and status text.
func (view *View) Render(display timer.Display) {
	if !view.hasSlot {
		return
	}
	view.clock.Text = timer.FormatSeconds(display.Remaining)
	view.clock.Refresh()
	view.progress.SetValue(display.Progress)

	switch {
	case display.Completed:
		view.status.Text = statusDone
	case display.Paused:
		view.status.Text = statusPaused
	default:
		view.status.Text = ""
	}
	view.status.Refresh()

	if display.Completed && !view.completed {
		view.flash.Alert()
	}
	if !display.Completed && view.completed {
		view.flash.Stop()
	}
	view.completed = display.Completed
}

// Handle applies one engine event.
func (view *View) Handle(event timer.Event) {
	switch event.Type {
	case timer.EventWarning:
		view.Render(event.Display)
		if !view.completed {
			view.flash.Flash(view.ctx, event.Pulse)
		}
	case timer.EventWarningCleared:
		if !view.completed {
			view.flash.Stop()
		}
	case timer.EventCompleted:
		event.Display.Completed = true
		view.Render(event.Display)
	default:
		view.Render(event.Display)
	}
}

// Follow applies events on the main goroutine until ctx is done or events is
// closed.
func (view *View) Follow(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fyne.Do(func() {
				view.Handle(event)
			})
		}
	}
}

// Empty reports whether the view shows the empty state.
func (view *View) Empty() bool {
	return !view.hasSlot
}

// Warning reports whether the warning visual state is showing.
func (view *View) Warning() bool {
	return view.flash.Phase().Warning()
}

// Close stops the flash animation.
func (view *View) Close() {
	view.cancel()
	view.flash.Stop()
}

func (view *View) paint(phase animation.Phase) {
	textColor := view.options.Palette.Color(phase)
	view.clock.Color = textColor
	view.clock.Refresh()
	if phase == animation.PhaseAlert {
		view.status.Color = textColor
	} else {
		view.status.Color = view.options.Palette.Normal
	}
	view.status.Refresh()
}
