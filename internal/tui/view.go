package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tvremote/internal/device"
)

// padLayout is the on-screen arrangement of the button pad
var padLayout = [][]device.Button{
	{device.ButtonPower},
	{device.ButtonUp},
	{device.ButtonLeft, device.ButtonSelect, device.ButtonRight},
	{device.ButtonDown},
	{device.ButtonBack, device.ButtonHome, device.ButtonMenu},
	{device.ButtonVolumeUp, device.ButtonMute, device.ButtonChannelUp},
	{device.ButtonVolumeDown, device.ButtonChannelDown},
	{device.ButtonRewind, device.ButtonPlay, device.ButtonPause, device.ButtonStop, device.ButtonFastForward},
	{device.ButtonDigit1, device.ButtonDigit2, device.ButtonDigit3},
	{device.ButtonDigit4, device.ButtonDigit5, device.ButtonDigit6},
	{device.ButtonDigit7, device.ButtonDigit8, device.ButtonDigit9},
	{device.ButtonDigit0},
}

// View renders the active screen
func (m Model) View() string {
	var body string
	if m.Screen == ScreenRemote {
		body = m.viewRemote()
	} else {
		body = m.viewDevices()
	}

	width := min(max(m.Width, MinTerminalWidth), MaxContentWidth)
	return ContainerStyle.Width(width - 2).Render(body)
}

func (m Model) viewDevices() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppName + " · Devices"))
	b.WriteString("\n")

	if m.State.Scanning {
		b.WriteString(m.Spinner.View() + " Scanning the network...\n\n")
	}

	if len(m.State.Devices) == 0 {
		if !m.State.Scanning {
			b.WriteString(SubtitleStyle.Render("No TVs found. Press r to rescan or a to add one by address."))
			b.WriteString("\n")
		}
	}

	for i, d := range m.State.Devices {
		line := fmt.Sprintf("%s  %s", d.Name, DetailStyle.Render(fmt.Sprintf("%s · %s", d.Vendor.DisplayName(), d.Address())))
		if m.isConnected(d) {
			line += StatusStyle.Render("  ● connected")
		}
		if i == m.Cursor {
			b.WriteString(SelectedMenuItemStyle.Render("→ " + line))
		} else {
			b.WriteString(MenuItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.State.DiscoveryError != "" {
		b.WriteString("\n" + ErrorTextStyle.Render(m.State.DiscoveryError) + "\n")
	}

	if m.ManualMode {
		b.WriteString("\nAddress and vendor:\n")
		b.WriteString(m.Input.View() + "\n")
		if m.InputErr != "" {
			b.WriteString(ErrorTextStyle.Render(m.InputErr) + "\n")
		}
	}

	b.WriteString(m.statusLine())

	if m.ManualMode {
		b.WriteString(HelpStyle.Render(m.Help.View(m.manualKeys)))
	} else {
		b.WriteString(HelpStyle.Render(m.Help.View(m.devicesKeys)))
	}
	return b.String()
}

func (m Model) viewRemote() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppName + " · Remote"))
	b.WriteString("\n")

	if d := m.State.ConnectedDevice; d != nil {
		b.WriteString(d.Name + "\n")
		b.WriteString(DetailStyle.Render(fmt.Sprintf("%s · %s", d.Vendor.DisplayName(), d.Address())))
		b.WriteString("\n")
	} else {
		b.WriteString(SubtitleStyle.Render("Not connected. Press tab to pick a device.") + "\n")
	}

	b.WriteString(m.flashBar() + "\n")

	for _, row := range padLayout {
		keys := make([]string, 0, len(row))
		for _, button := range row {
			style := KeyStyle
			if button == m.LastPressed {
				style = PressedKeyStyle
			}
			keys = append(keys, style.Render(button.Glyph()))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, keys...))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString(HelpStyle.Render(m.Help.View(m.remoteKeys)))
	return b.String()
}

// flashBar renders the haptic pulse, or a blank line of the same height
func (m Model) flashBar() string {
	n := flashWidth(m.Flash)
	if n == 0 {
		return " "
	}
	color := SecondaryColor
	if m.Flash == device.CategoryHeavy {
		color = WarningColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▮", n))
}

func (m Model) statusLine() string {
	switch {
	case m.Err != "":
		return "\n" + ErrorTextStyle.Render("✗ "+m.Err) + "\n"
	case m.Status != "":
		return "\n" + StatusStyle.Render(m.Status) + "\n"
	case m.State.LastError != "":
		return "\n" + ErrorTextStyle.Render("✗ "+m.State.LastError) + "\n"
	}
	return ""
}

func (m Model) isConnected(d *device.Device) bool {
	c := m.State.ConnectedDevice
	return c != nil && c.SameAddress(d)
}
