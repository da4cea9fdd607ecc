package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/muurk/tvremote/internal/device"
)

// devicesKeyMap defines key bindings for the devices screen
type devicesKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Connect key.Binding
	Rescan  key.Binding
	Stop    key.Binding
	Manual  key.Binding
	Remote  key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k devicesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Connect, k.Rescan, k.Manual, k.Remote, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k devicesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Connect},
		{k.Rescan, k.Stop, k.Manual},
		{k.Remote, k.Quit},
	}
}

// manualKeyMap defines key bindings while typing a manual address
type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// remoteKeyMap defines key bindings for the remote screen. Button keys
// are listed for help only; presses are resolved through buttonKeys.
type remoteKeyMap struct {
	Navigate key.Binding
	Select   key.Binding
	Power    key.Binding
	Home     key.Binding
	Menu     key.Binding
	Back     key.Binding
	Volume   key.Binding
	Mute     key.Binding
	Channel  key.Binding
	Playback key.Binding
	Digits   key.Binding
	Devices  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k remoteKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Select, k.Volume, k.Devices, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k remoteKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Navigate, k.Select, k.Back, k.Home, k.Menu},
		{k.Power, k.Volume, k.Mute, k.Channel},
		{k.Playback, k.Digits},
		{k.Devices, k.Help, k.Quit},
	}
}

func newDevicesKeyMap() devicesKeyMap {
	return devicesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop scan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add manually"),
		),
		Remote: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "remote"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newManualKeyMap() manualKeyMap {
	return manualKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func newRemoteKeyMap() remoteKeyMap {
	return remoteKeyMap{
		Navigate: key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "navigate")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok")),
		Power:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "power")),
		Home:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Menu:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Volume:   key.NewBinding(key.WithKeys("+", "=", "-"), key.WithHelp("+/-", "volume")),
		Mute:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "mute")),
		Channel:  key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "channel")),
		Playback: key.NewBinding(key.WithKeys(" ", "p", "s", ",", "."), key.WithHelp("space/p/s/,/.", "play pause stop rew ff")),
		Digits:   key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "digits")),
		Devices:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "devices")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// buttonKeys maps key presses on the remote screen to buttons
var buttonKeys = map[string]device.Button{
	"up":        device.ButtonUp,
	"down":      device.ButtonDown,
	"left":      device.ButtonLeft,
	"right":     device.ButtonRight,
	"enter":     device.ButtonSelect,
	"o":         device.ButtonPower,
	"h":         device.ButtonHome,
	"m":         device.ButtonMenu,
	"esc":       device.ButtonBack,
	"backspace": device.ButtonBack,
	"+":         device.ButtonVolumeUp,
	"=":         device.ButtonVolumeUp,
	"-":         device.ButtonVolumeDown,
	"x":         device.ButtonMute,
	"pgup":      device.ButtonChannelUp,
	"pgdown":    device.ButtonChannelDown,
	" ":         device.ButtonPlay,
	"p":         device.ButtonPause,
	"s":         device.ButtonStop,
	",":         device.ButtonRewind,
	".":         device.ButtonFastForward,
	"0":         device.ButtonDigit0,
	"1":         device.ButtonDigit1,
	"2":         device.ButtonDigit2,
	"3":         device.ButtonDigit3,
	"4":         device.ButtonDigit4,
	"5":         device.ButtonDigit5,
	"6":         device.ButtonDigit6,
	"7":         device.ButtonDigit7,
	"8":         device.ButtonDigit8,
	"9":         device.ButtonDigit9,
}
