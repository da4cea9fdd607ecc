package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/tvremote/internal/control"
	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/event"
	"github.com/muurk/tvremote/internal/remote"
)

// Remote is the subset of remote.Remote the terminal remote drives
type Remote interface {
	StartDiscovery() bool
	StopDiscovery()
	AddDevice(d *device.Device) bool
	Connect(ctx context.Context, d *device.Device) error
	ConnectByID(ctx context.Context, id string) error
	SendCommand(ctx context.Context, button device.Button) error
	State() remote.State
	Subscribe(h event.Handler) func()
}

// Screen identifies the active screen
type Screen string

const (
	ScreenDevices Screen = "devices"
	ScreenRemote  Screen = "remote"
)

// Messages
type eventMsg struct{ event event.Event }
type pulseMsg struct{ category device.Category }
type flashDoneMsg struct{ id int }
type pressedMsg struct {
	button device.Button
	err    error
}
type connectedMsg struct{ err error }

// Model is the top-level Bubble Tea model
type Model struct {
	ctx    context.Context
	remote Remote
	events <-chan event.Event
	pulses <-chan device.Category

	Screen Screen
	State  remote.State

	// Devices screen
	Cursor     int
	ManualMode bool
	Input      textinput.Model
	InputErr   string

	// Remote screen
	LastPressed device.Button
	Flash       device.Category
	flashID     int

	Status  string
	Err     string
	Width   int
	Spinner spinner.Model
	Help    help.Model

	devicesKeys devicesKeyMap
	manualKeys  manualKeyMap
	remoteKeys  remoteKeyMap
}

// NewModel creates the model. events and pulses may be nil.
func NewModel(ctx context.Context, r Remote, events <-chan event.Event, pulses <-chan device.Category) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "192.168.1.20:8060 roku"
	input.CharLimit = 64
	input.Width = 32

	m := Model{
		ctx:         ctx,
		remote:      r,
		events:      events,
		pulses:      pulses,
		State:       r.State(),
		Input:       input,
		Width:       MinTerminalWidth,
		Spinner:     s,
		Help:        help.New(),
		devicesKeys: newDevicesKeyMap(),
		manualKeys:  newManualKeyMap(),
		remoteKeys:  newRemoteKeyMap(),
	}

	m.Screen = ScreenDevices
	if m.State.Connected {
		m.Screen = ScreenRemote
	}
	return m
}

// Init starts listening for events and, on the devices screen, a scan
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.Spinner.Tick,
		waitForEvent(m.events),
		waitForPulse(m.pulses),
	}
	if m.Screen == ScreenDevices {
		cmds = append(cmds, m.startDiscovery)
	}
	return tea.Batch(cmds...)
}

func (m Model) startDiscovery() tea.Msg {
	m.remote.StartDiscovery()
	return nil
}

func waitForEvent(events <-chan event.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{event: e}
	}
}

func waitForPulse(pulses <-chan device.Category) tea.Cmd {
	if pulses == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-pulses
		if !ok {
			return nil
		}
		return pulseMsg{category: c}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.refresh()
		if msg.event.Topic == event.TopicCommandError {
			if e, ok := msg.event.Payload.(event.ErrorEvent); ok {
				m.Err = e.Message
			}
		}
		return m, waitForEvent(m.events)

	case pulseMsg:
		m.flashID++
		m.Flash = msg.category
		id := m.flashID
		return m, tea.Batch(
			tea.Tick(flashDuration(msg.category), func(time.Time) tea.Msg { return flashDoneMsg{id: id} }),
			waitForPulse(m.pulses),
		)

	case flashDoneMsg:
		if msg.id == m.flashID {
			m.Flash = ""
		}
		return m, nil

	case pressedMsg:
		m.LastPressed = msg.button
		if msg.err != nil {
			m.Err = control.ShortMessage(msg.err)
			m.Status = ""
		} else {
			m.Err = ""
			m.Status = "Sent " + msg.button.Glyph()
		}
		return m, nil

	case connectedMsg:
		m.refresh()
		if msg.err != nil {
			m.Err = msg.err.Error()
			return m, nil
		}
		m.Err = ""
		m.Status = ""
		m.Screen = ScreenRemote
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.Screen == ScreenRemote:
			return m.updateRemote(msg)
		case m.ManualMode:
			return m.updateManual(msg)
		default:
			return m.updateDevices(msg)
		}
	}

	return m, nil
}

func (m *Model) refresh() {
	m.State = m.remote.State()
	if m.Cursor >= len(m.State.Devices) {
		m.Cursor = max(len(m.State.Devices)-1, 0)
	}
}

func (m Model) updateDevices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.devicesKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.devicesKeys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}

	case key.Matches(msg, m.devicesKeys.Down):
		if m.Cursor < len(m.State.Devices)-1 {
			m.Cursor++
		}

	case key.Matches(msg, m.devicesKeys.Connect):
		if m.Cursor < len(m.State.Devices) {
			m.Status = "Connecting..."
			return m, m.connect(m.State.Devices[m.Cursor])
		}

	case key.Matches(msg, m.devicesKeys.Rescan):
		m.Err = ""
		return m, m.startDiscovery

	case key.Matches(msg, m.devicesKeys.Stop):
		m.remote.StopDiscovery()
		m.refresh()

	case key.Matches(msg, m.devicesKeys.Manual):
		m.ManualMode = true
		m.InputErr = ""
		m.Input.SetValue("")
		return m, m.Input.Focus()

	case key.Matches(msg, m.devicesKeys.Remote):
		if m.State.Connected {
			m.Screen = ScreenRemote
		}
	}

	return m, nil
}

func (m Model) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.manualKeys.Cancel):
		m.ManualMode = false
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.manualKeys.Confirm):
		d, err := ParseManualEntry(m.Input.Value())
		if err != nil {
			m.InputErr = err.Error()
			return m, nil
		}
		m.ManualMode = false
		m.Input.Blur()
		m.remote.AddDevice(d)
		m.refresh()
		m.Status = "Connecting..."
		return m, m.connect(d)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) updateRemote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.remoteKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.remoteKeys.Devices):
		m.Screen = ScreenDevices
		m.refresh()
		return m, nil
	case key.Matches(msg, m.remoteKeys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}

	if button, ok := buttonKeys[msg.String()]; ok {
		return m, m.press(button)
	}
	return m, nil
}

func (m Model) connect(d *device.Device) tea.Cmd {
	ctx, r := m.ctx, m.remote
	return func() tea.Msg {
		return connectedMsg{err: r.Connect(ctx, d)}
	}
}

func (m Model) press(button device.Button) tea.Cmd {
	ctx, r := m.ctx, m.remote
	return func() tea.Msg {
		return pressedMsg{button: button, err: r.SendCommand(ctx, button)}
	}
}

// ParseManualEntry turns "host[:port] [vendor]" into a manual device.
// The vendor defaults to roku, the most common ECP-style device.
func ParseManualEntry(s string) (*device.Device, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("expected \"host[:port] vendor\"")
	}

	vendor := device.VendorRoku
	if len(fields) == 2 {
		v, err := device.ParseVendor(fields[1])
		if err != nil {
			return nil, err
		}
		vendor = v
	}
	return device.NewManual(fields[0], vendor)
}
