// Package remote is the callable surface presentation layers use: discovery
// control, connection management, button presses and a state snapshot.
//
// State changes are announced on the event bus; presentation layers
// subscribe with Subscribe and read State when notified.
package remote

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/config"
	"github.com/muurk/tvremote/internal/control"
	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/discovery"
	"github.com/muurk/tvremote/internal/event"
	"github.com/muurk/tvremote/internal/metrics"
	"github.com/muurk/tvremote/internal/store"
)

// ErrDeviceNotFound is returned by ConnectByID for an ID not in the discovered set
var ErrDeviceNotFound = errors.New("device not found")

// State is a point-in-time snapshot of discovery and control
type State struct {
	Scanning        bool             `json:"scanning"`
	Devices         []*device.Device `json:"devices"`
	DiscoveryError  string           `json:"discovery_error,omitempty"`
	Connected       bool             `json:"connected"`
	ConnectedDevice *device.Device   `json:"connected_device,omitempty"`
	LastError       string           `json:"last_error,omitempty"`
}

// Remote ties the discovery coordinator and the control dispatcher together
type Remote struct {
	coord *discovery.Coordinator
	disp  *control.Dispatcher
	bus   *event.Bus
}

// New wraps existing components
func New(coord *discovery.Coordinator, disp *control.Dispatcher, bus *event.Bus) *Remote {
	return &Remote{coord: coord, disp: disp, bus: bus}
}

// Deps are the collaborators that are not derived from configuration
type Deps struct {
	Store   store.Store
	Haptics control.Haptics
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewFromConfig builds the scanners, coordinator and dispatcher described
// by cfg.
func NewFromConfig(cfg *config.Config, deps Deps) (*Remote, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := event.NewBus(logger.Named("events"))

	ssdp := discovery.NewSSDPScanner()
	ssdp.Targets = cfg.Discovery.SSDPTargets
	ssdp.Window = cfg.Discovery.SSDPWindow
	ssdp.SetLogger(logger.Named("ssdp"))
	if cfg.Discovery.Describe {
		ssdp.Describer = discovery.NewUPnPDescriber()
	}

	browser, err := discovery.NewBrowser(cfg.Discovery.MDNSBackend)
	if err != nil {
		return nil, err
	}
	mdns := discovery.NewServiceScanner(browser)
	mdns.SetLogger(logger.Named("mdns"))

	coord := discovery.NewCoordinator(bus, logger.Named("discovery"), ssdp, mdns)
	coord.Timeout = cfg.Discovery.ScanTimeout
	coord.Metrics = deps.Metrics

	disp := control.NewDispatcher(control.Config{
		Store:   deps.Store,
		Haptics: deps.Haptics,
		Bus:     bus,
		Metrics: deps.Metrics,
		Logger:  logger.Named("control"),
		Options: control.Options{
			HTTPTimeout:    cfg.Control.HTTPTimeout,
			WSReadyTimeout: cfg.Control.WSReadyTimeout,
			SamsungPort:    cfg.Control.SamsungPort,
			ROAPPort:       cfg.Control.ROAPPort,
			AppName:        cfg.Control.AppName,
		},
	})

	return New(coord, disp, bus), nil
}

// StartDiscovery starts a scan; it reports false if one was already running
func (r *Remote) StartDiscovery() bool {
	return r.coord.Start()
}

// StopDiscovery stops the running scan, if any
func (r *Remote) StopDiscovery() {
	r.coord.Stop()
}

// DiscoveryDone is closed when the latest scan has finished and released its sockets
func (r *Remote) DiscoveryDone() <-chan struct{} {
	return r.coord.Done()
}

// Devices returns the discovered set
func (r *Remote) Devices() []*device.Device {
	return r.coord.Devices()
}

// AddDevice inserts a manually entered device into the discovered set
func (r *Remote) AddDevice(d *device.Device) bool {
	return r.coord.AddDevice(d)
}

// Connect makes d the connected device
func (r *Remote) Connect(ctx context.Context, d *device.Device) error {
	return r.disp.Connect(ctx, d)
}

// ConnectByID connects a device from the discovered set
func (r *Remote) ConnectByID(ctx context.Context, id string) error {
	d, ok := r.coord.Device(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return r.disp.Connect(ctx, d)
}

// Disconnect releases the connected device
func (r *Remote) Disconnect() {
	r.disp.Disconnect()
}

// Forget disconnects and clears the persisted last device
func (r *Remote) Forget() error {
	return r.disp.Forget()
}

// Restore reconnects the persisted last device, if any
func (r *Remote) Restore(ctx context.Context) (bool, error) {
	return r.disp.Restore(ctx)
}

// SendCommand presses button on the connected device
func (r *Remote) SendCommand(ctx context.Context, button device.Button) error {
	return r.disp.SendCommand(ctx, button)
}

// State returns a snapshot of the current state
func (r *Remote) State() State {
	return State{
		Scanning:        r.coord.Scanning(),
		Devices:         r.coord.Devices(),
		DiscoveryError:  r.coord.LastError(),
		Connected:       r.disp.Connected(),
		ConnectedDevice: r.disp.ConnectedDevice(),
		LastError:       r.disp.LastError(),
	}
}

// Subscribe registers h for every event and returns a function removing it
func (r *Remote) Subscribe(h event.Handler) func() {
	return r.bus.SubscribeAll(h)
}

// Bus exposes the event bus
func (r *Remote) Bus() *event.Bus {
	return r.bus
}
