// Package event provides the in-process event bus that presentation layers
// subscribe to for discovery and control state changes.
package event

import (
	"time"

	"github.com/muurk/tvremote/internal/device"
)

// Topics published by the discovery coordinator
const (
	TopicDiscoveryStarted = "discovery.started"
	TopicDeviceDiscovered = "discovery.device"
	TopicDiscoveryError   = "discovery.error"
	TopicDiscoveryStopped = "discovery.stopped"
)

// Topics published by the control dispatcher
const (
	TopicConnected    = "control.connected"
	TopicDisconnected = "control.disconnected"
	TopicCommandSent  = "control.command"
	TopicCommandError = "control.error"
)

// Event is a single notification on the bus
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// DeviceEvent carries a device that was discovered, connected or disconnected
type DeviceEvent struct {
	Device *device.Device `json:"device"`
}

// ErrorEvent carries a failure that was written to a last-error slot
type ErrorEvent struct {
	// Scope names the failing unit (an SSDP search target, a DNS-SD
	// namespace, or a button)
	Scope   string `json:"scope,omitempty"`
	Message string `json:"message"`
}

// CommandEvent describes a button press that reached the TV
type CommandEvent struct {
	Device   *device.Device  `json:"device"`
	Button   device.Button   `json:"button"`
	Token    string          `json:"token"`
	Category device.Category `json:"category"`
}

// StoppedEvent summarises a finished discovery session
type StoppedEvent struct {
	Devices  int           `json:"devices"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}
