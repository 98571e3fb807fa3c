package animation

import (
	"image/color"
	"time"
)

// DefaultConfig returns the flash timing used by both countdown surfaces.
func DefaultConfig() Config {
	return Config{
		FlashOn:  450 * time.Millisecond,
		FlashOff: 250 * time.Millisecond,
	}
}

// DefaultPalette returns colours for a dark projection background.
func DefaultPalette() Palette {
	return Palette{
		Normal:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Warning: color.NRGBA{R: 239, G: 68, B: 68, A: 255},
		Dimmed:  color.NRGBA{R: 127, G: 29, B: 29, A: 255},
		Alert:   color.NRGBA{R: 239, G: 68, B: 68, A: 255},
	}
}
