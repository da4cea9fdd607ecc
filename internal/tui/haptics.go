package tui

import (
	"time"

	"github.com/muurk/tvremote/internal/device"
)

// Haptics turns successful presses into flash pulses for the remote screen.
// It satisfies control.Haptics.
type Haptics struct {
	pulses chan device.Category
}

// NewHaptics creates a haptics sink with a small pulse buffer
func NewHaptics() *Haptics {
	return &Haptics{pulses: make(chan device.Category, 8)}
}

// Trigger queues a pulse. Pulses are dropped while the buffer is full.
func (h *Haptics) Trigger(category device.Category) {
	select {
	case h.pulses <- category:
	default:
	}
}

// Pulses returns the channel the remote screen reads from
func (h *Haptics) Pulses() <-chan device.Category {
	if h == nil {
		return nil
	}
	return h.pulses
}

// flashDuration is how long the flash stays visible
func flashDuration(c device.Category) time.Duration {
	switch c {
	case device.CategoryHeavy:
		return 350 * time.Millisecond
	case device.CategoryMedium:
		return 220 * time.Millisecond
	case device.CategorySelection:
		return 140 * time.Millisecond
	default:
		return 90 * time.Millisecond
	}
}

// flashWidth is the number of cells the flash bar fills
func flashWidth(c device.Category) int {
	switch c {
	case device.CategoryHeavy:
		return 24
	case device.CategoryMedium:
		return 16
	case device.CategorySelection:
		return 10
	case device.CategoryLight:
		return 6
	default:
		return 0
	}
}
