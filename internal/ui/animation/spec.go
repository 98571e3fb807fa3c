package animation

import "image/color"

// Phase is one visual state of the countdown text.
type Phase int

const (
	PhaseNormal Phase = iota
	// PhaseFlashOn and PhaseFlashOff alternate while a warning pulse runs.
	PhaseFlashOn
	PhaseFlashOff
	// PhaseAlert is the steady state shown once time is up.
	PhaseAlert
)

// Palette maps phases to text colours.
type Palette struct {
	Normal  color.Color
	Warning color.Color
	Dimmed  color.Color
	Alert   color.Color
}

// Color returns the colour for phase.
func (palette Palette) Color(phase Phase) color.Color {
	switch phase {
	case PhaseFlashOn:
		return palette.Warning
	case PhaseFlashOff:
		return palette.Dimmed
	case PhaseAlert:
		return palette.Alert
	default:
		return palette.Normal
	}
}

// Warning reports whether phase belongs to the warning visual state.
func (phase Phase) Warning() bool {
	return phase != PhaseNormal
}
