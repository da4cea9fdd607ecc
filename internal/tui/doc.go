// Package tui implements the full-screen terminal remote.
//
// The remote is a Bubble Tea program with two screens:
//   - Devices: discovered TVs with a live scan, plus manual entry
//   - Remote: a button pad for the connected TV
//
// State comes from a remote.Remote. Bus events are forwarded into the
// program as messages, so the screens redraw whenever discovery or control
// state changes. Button presses run as commands and never block the UI.
//
// # Haptic Feedback
//
// A terminal cannot vibrate, so Haptics renders feedback as a short flash
// whose length and width scale with the press category (heavy for power,
// medium for select/home/menu, selection for volume and channel, light for
// the rest). Pass the same *Haptics to the dispatcher and to Run:
//
//	h := tui.NewHaptics()
//	r, err := remote.NewFromConfig(cfg, remote.Deps{Haptics: h, ...})
//	...
//	err = tui.Run(ctx, r, h)
//
// # Framework Components
//
//   - bubbles/spinner: scan indicator
//   - bubbles/textinput: manual "host[:port] vendor" entry
//   - bubbles/help and bubbles/key: key bindings and the help footer
//   - lipgloss: styling and layout
package tui
