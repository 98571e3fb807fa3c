package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	fullscreen *widget.Check
	opacity    *widget.Slider
	notify     *widget.Check
	interval   *widget.Entry
	storePath  *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Podium Settings")

	fullscreen := widget.NewCheck("Open projection full screen", nil)
	opacity := widget.NewSlider(0.7, 1)
	opacity.Step = 0.01
	notify := widget.NewCheck("Notify when a timer completes", nil)
	interval := widget.NewEntry()
	storePath := widget.NewEntry()
	storePath.SetPlaceHolder("default location")

	form := container.NewVBox(
		widget.NewLabelWithStyle("Projection", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		fullscreen,
		widget.NewLabel("Background opacity"),
		opacity,
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		notify,
		container.NewHBox(widget.NewLabel("Refresh every"), interval, widget.NewLabel("ms (applies on restart)")),
		widget.NewLabel("Slot database (applies on restart)"),
		storePath,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 380))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		fullscreen: fullscreen,
		opacity:    opacity,
		notify:     notify,
		interval:   interval,
		storePath:  storePath,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.fullscreen.SetChecked(settings.ProjectionFullscreen)
	prefs.opacity.SetValue(settings.ProjectionOpacity)
	prefs.notify.SetChecked(settings.NotifyOnComplete)
	prefs.interval.SetText(fmt.Sprintf("%d", settings.SampleInterval.Milliseconds()))
	prefs.storePath.SetText(settings.StorePath)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	settings.ProjectionFullscreen = prefs.fullscreen.Checked
	settings.ProjectionOpacity = prefs.opacity.Value
	settings.NotifyOnComplete = prefs.notify.Checked
	if millis, ok := parsePositiveInt(prefs.interval.Text); ok && millis >= 50 && millis <= 1000 {
		settings.SampleInterval = time.Duration(millis) * time.Millisecond
	}
	settings.StorePath = strings.TrimSpace(prefs.storePath.Text)

	prefs.UpdateSettings(settings)
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
