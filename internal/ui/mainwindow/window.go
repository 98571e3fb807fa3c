// Package mainwindow is the slot editor and timer panel window.
package mainwindow

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"strings"

	"podium/internal/core/model"
	"podium/internal/core/slots"
	"podium/internal/core/timer"
	"podium/internal/platform"
	"podium/internal/ui/animation"
	"podium/internal/ui/countdown"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const placeholderText = "Select a time slot to start"

// Window is the main application window.
type Window struct {
	window fyne.Window
	store  *slots.Store
	engine *timer.Engine
	shell  platform.Shell

	titleEntry   *widget.Entry
	hoursEntry   *widget.Entry
	minutesEntry *widget.Entry
	secondsEntry *widget.Entry
	addButton    *widget.Button

	list      *widget.List
	items     []model.TimeSlot
	currentID string

	view          *countdown.View
	panel         *fyne.Container
	placeholder   *widget.Label
	pauseButton   *widget.Button
	restartButton *widget.Button
	resetButton   *widget.Button
	fullButton    *widget.Button
	projectButton *widget.Button

	stage         *countdown.View
	stageRestart  *widget.Button
	stageContent  fyne.CanvasObject
	normalContent fyne.CanvasObject
	projecting    bool
}

// New builds the main window over store and engine. shell opens the
// projection window.
func New(app fyne.App, store *slots.Store, engine *timer.Engine, shell platform.Shell) *Window {
	main := &Window{
		window: app.NewWindow("Podium"),
		store:  store,
		engine: engine,
		shell:  shell,
	}
	if app.Icon() != nil {
		main.window.SetIcon(app.Icon())
	}

	main.normalContent = container.NewHSplit(main.buildEditor(), main.buildPanel())
	main.stageContent = main.buildStage()
	main.window.SetContent(main.normalContent)
	main.window.Resize(fyne.NewSize(900, 560))
	main.window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape && main.projecting {
			main.ExitProjection()
		}
	})

	main.Refresh()
	return main
}

// Window returns the underlying Fyne window.
func (main *Window) Window() fyne.Window {
	return main.window
}

// Show displays the window and focuses it.
func (main *Window) Show() {
	main.window.Show()
	main.window.RequestFocus()
}

// Follow renders engine events in both countdown views until ctx is done.
func (main *Window) Follow(ctx context.Context) {
	go main.view.Follow(ctx, main.engine.Subscribe(64))
	go main.stage.Follow(ctx, main.engine.Subscribe(64))
}

// HandleChange schedules a refresh after a store change. It is safe to call
// from any goroutine.
func (main *Window) HandleChange(slots.Change) {
	fyne.Do(main.Refresh)
}

// Refresh redraws the list and the timer panel from the store.
func (main *Window) Refresh() {
	main.items = main.store.Slots()
	main.currentID = main.store.CurrentID()
	main.list.Refresh()

	current, ok := main.store.Current()
	started := ok && current.Started()
	display := main.engine.Display()
	main.view.SetSlot(current, started, display)
	main.stage.SetSlot(current, started, display)

	if started {
		main.placeholder.Hide()
		main.panel.Show()
	} else {
		main.panel.Hide()
		main.placeholder.Show()
	}

	switch {
	case ok && current.IsPaused:
		main.pauseButton.SetText("Resume")
		main.pauseButton.Enable()
	case ok && current.Running():
		main.pauseButton.SetText("Pause")
		main.pauseButton.Enable()
	default:
		main.pauseButton.SetText("Pause")
		main.pauseButton.Disable()
	}
	setEnabled(main.restartButton, ok)
	setEnabled(main.stageRestart, !main.stage.Empty())
	setEnabled(main.resetButton, started)
	setEnabled(main.fullButton, ok)
	setEnabled(main.projectButton, ok)
}

// TogglePause pauses a running current slot or resumes a paused one.
func (main *Window) TogglePause() {
	current, ok := main.store.Current()
	if !ok {
		return
	}
	if current.IsPaused {
		main.store.Resume(current.ID)
		return
	}
	main.store.Pause(current.ID)
}

// RestartCurrent restarts the current slot.
func (main *Window) RestartCurrent() {
	if current, ok := main.store.Current(); ok {
		main.store.Restart(current.ID)
	}
}

// EnterProjection fills the window with the countdown.
func (main *Window) EnterProjection() {
	if main.projecting {
		return
	}
	if _, ok := main.store.Current(); !ok {
		return
	}
	main.projecting = true
	main.window.SetContent(main.stageContent)
	main.window.SetFullScreen(true)
}

// ExitProjection restores the editor layout.
func (main *Window) ExitProjection() {
	if !main.projecting {
		return
	}
	main.projecting = false
	main.window.SetFullScreen(false)
	main.window.SetContent(main.normalContent)
}

// Projecting reports whether the in-window projection is showing.
func (main *Window) Projecting() bool {
	return main.projecting
}

func (main *Window) buildEditor() fyne.CanvasObject {
	main.titleEntry = widget.NewEntry()
	main.titleEntry.SetPlaceHolder("Opening remarks")
	main.hoursEntry = widget.NewEntry()
	main.hoursEntry.SetPlaceHolder("0")
	main.minutesEntry = widget.NewEntry()
	main.minutesEntry.SetPlaceHolder("0")
	main.secondsEntry = widget.NewEntry()
	main.secondsEntry.SetPlaceHolder("0")

	form := widget.NewForm(
		widget.NewFormItem("Title", main.titleEntry),
		widget.NewFormItem("Hours", main.hoursEntry),
		widget.NewFormItem("Minutes", main.minutesEntry),
		widget.NewFormItem("Seconds", main.secondsEntry),
	)
	main.addButton = widget.NewButton("Add Time Slot", main.submit)
	main.titleEntry.OnSubmitted = func(string) { main.submit() }
	main.secondsEntry.OnSubmitted = func(string) { main.submit() }

	main.list = widget.NewList(
		func() int { return len(main.items) },
		newSlotRow,
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < 0 || id >= len(main.items) {
				return
			}
			main.updateRow(main.items[id], object.(*fyne.Container))
		},
	)

	header := container.NewVBox(
		widget.NewLabelWithStyle("New Time Slot", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		main.addButton,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Time Slots", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	return container.NewBorder(header, nil, nil, nil, main.list)
}

func (main *Window) buildPanel() fyne.CanvasObject {
	main.view = countdown.New(countdown.Options{
		TitleSize: 22,
		TimeSize:  72,
		Palette:   panelPalette(),
	})

	main.pauseButton = widget.NewButton("Pause", main.TogglePause)
	main.restartButton = widget.NewButton("Restart", main.RestartCurrent)
	main.resetButton = widget.NewButton("Reset", func() {
		if current, ok := main.store.Current(); ok {
			main.store.Reset(current.ID)
		}
	})
	main.fullButton = widget.NewButton("Full Screen", main.EnterProjection)
	main.projectButton = widget.NewButton("Project to Window", func() {
		if err := main.shell.OpenSecondarySurface(); err != nil {
			log.Printf("mainwindow: open projection: %v", err)
		}
	})

	controls := container.NewHBox(layout.NewSpacer(), main.pauseButton, main.restartButton, main.resetButton, layout.NewSpacer())
	projection := container.NewHBox(layout.NewSpacer(), main.fullButton, main.projectButton, layout.NewSpacer())
	main.panel = container.NewBorder(nil, container.NewVBox(controls, projection), nil, nil, main.view.CanvasObject())

	main.placeholder = widget.NewLabelWithStyle(placeholderText, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	return container.NewStack(main.panel, container.NewCenter(main.placeholder))
}

func (main *Window) buildStage() fyne.CanvasObject {
	main.stage = countdown.New(countdown.Options{
		TitleSize:  48,
		TimeSize:   180,
		EmptyTitle: countdown.NoTimerTitle,
		EmptyHint:  placeholderText,
	})
	main.stageRestart = widget.NewButton("Restart", main.RestartCurrent)
	exit := widget.NewButton("Exit Full Screen", main.ExitProjection)
	buttons := container.NewHBox(layout.NewSpacer(), main.stageRestart, exit, layout.NewSpacer())

	background := canvas.NewRectangle(color.NRGBA{A: 255})
	content := container.NewBorder(nil, container.NewPadded(buttons), nil, nil, main.stage.CanvasObject())
	return container.NewStack(background, content)
}

func (main *Window) submit() {
	title, duration, err := ParseInput(main.titleEntry.Text, main.hoursEntry.Text, main.minutesEntry.Text, main.secondsEntry.Text)
	if err != nil {
		dialog.ShowError(err, main.window)
		return
	}
	if _, err := main.store.Create(title, duration); err != nil {
		dialog.ShowError(err, main.window)
		return
	}
	main.titleEntry.SetText("")
	main.hoursEntry.SetText("")
	main.minutesEntry.SetText("")
	main.secondsEntry.SetText("")
}

func (main *Window) updateRow(slot model.TimeSlot, row *fyne.Container) {
	title := row.Objects[0].(*widget.Label)
	duration := row.Objects[2].(*widget.Label)
	badge := row.Objects[3].(*widget.Label)
	start := row.Objects[4].(*widget.Button)
	remove := row.Objects[5].(*widget.Button)

	current := slot.ID == main.currentID
	title.SetText(slot.Title)
	title.TextStyle.Bold = current
	title.Refresh()
	duration.SetText(formatDuration(slot.Duration))

	if text := slotBadge(slot, current); text != "" {
		badge.SetText(text)
		badge.Show()
	} else {
		badge.Hide()
	}

	id := slot.ID
	if slot.IsCompleted || current {
		start.Hide()
		start.OnTapped = nil
	} else {
		start.Show()
		start.OnTapped = func() { main.store.Start(id) }
	}
	remove.OnTapped = func() { main.store.Delete(id) }
}

func newSlotRow() fyne.CanvasObject {
	badge := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	badge.Hide()
	return container.NewHBox(
		widget.NewLabel("title"),
		layout.NewSpacer(),
		widget.NewLabel("0s"),
		badge,
		widget.NewButton("Start", nil),
		widget.NewButton("Delete", nil),
	)
}

// formatDuration renders seconds as "1h 2m 3s", leaving out zero parts.
func formatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	secs := seconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}

func slotBadge(slot model.TimeSlot, current bool) string {
	switch {
	case slot.IsCompleted:
		return "Time Up"
	case current:
		return "Running"
	default:
		return ""
	}
}

// panelPalette follows the app theme.
func panelPalette() animation.Palette {
	return animation.Palette{
		Normal:  theme.Color(theme.ColorNameForeground),
		Warning: theme.Color(theme.ColorNameError),
		Dimmed:  theme.Color(theme.ColorNameDisabled),
		Alert:   theme.Color(theme.ColorNameError),
	}
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}
