package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/event"
	"github.com/muurk/tvremote/internal/keymap"
	"github.com/muurk/tvremote/internal/metrics"
	"github.com/muurk/tvremote/internal/store"
)

// Haptics is triggered after every command the TV accepted
type Haptics interface {
	Trigger(category device.Category)
}

// HapticsFunc adapts a function to Haptics
type HapticsFunc func(category device.Category)

// Trigger implements Haptics
func (f HapticsFunc) Trigger(category device.Category) {
	f(category)
}

// Config holds the dispatcher's collaborators. Only Store is required.
type Config struct {
	Store    store.Store
	Haptics  Haptics
	Bus      *event.Bus
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Registry Registry
	Options  Options
}

// Dispatcher owns the control session: the connected device, its transport
// and the last error.
type Dispatcher struct {
	store    store.Store
	haptics  Haptics
	bus      *event.Bus
	metrics  *metrics.Metrics
	logger   *zap.Logger
	registry Registry
	opts     Options

	mu        sync.Mutex
	device    *device.Device
	transport Transport
	lastErr   string
}

// NewDispatcher creates a dispatcher with no connected device
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}
	return &Dispatcher{
		store:    cfg.Store,
		haptics:  cfg.Haptics,
		bus:      cfg.Bus,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		registry: cfg.Registry,
		opts:     cfg.Options.withDefaults(),
	}
}

// Connect makes d the connected device, replacing any previous one, and
// persists it as the last device. Vendors with a persistent socket start
// connecting in the background; a failure there surfaces on the next send.
func (c *Dispatcher) Connect(ctx context.Context, d *device.Device) error {
	if d == nil {
		return fmt.Errorf("connect: nil device")
	}

	d = d.Clone()
	now := time.Now()
	d.LastConnected = &now

	// Unknown vendors can still be selected; every send fails.
	tr, _ := c.registry.Build(d, c.opts)

	c.mu.Lock()
	old := c.transport
	c.device = d
	c.transport = tr
	c.lastErr = ""
	c.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			c.logger.Debug("closing previous transport failed", zap.Error(err))
		}
	}

	c.logger.Info("connected",
		zap.String("name", d.Name),
		zap.String("address", d.Address()),
		zap.String("vendor", string(d.Vendor)),
	)

	if err := c.store.Save(d); err != nil {
		c.logger.Warn("failed to persist last device", zap.Error(err))
		c.setLastError(fmt.Sprintf("failed to save device: %v", err))
	}

	if opener, ok := tr.(Opener); ok {
		go func() {
			if err := opener.Open(context.WithoutCancel(ctx)); err != nil {
				c.logger.Debug("eager connect failed", zap.String("address", d.Address()), zap.Error(err))
			}
		}()
	}

	c.publish(event.TopicConnected, event.DeviceEvent{Device: d.Clone()})
	return nil
}

// Disconnect closes any open socket and clears the connected device. The
// persisted last device is kept; use Forget to remove it as well.
func (c *Dispatcher) Disconnect() {
	c.mu.Lock()
	d := c.device
	tr := c.transport
	c.device = nil
	c.transport = nil
	c.mu.Unlock()

	if tr != nil {
		if err := tr.Close(); err != nil {
			c.logger.Debug("closing transport failed", zap.Error(err))
		}
	}
	if d != nil {
		c.logger.Info("disconnected", zap.String("address", d.Address()))
		c.publish(event.TopicDisconnected, event.DeviceEvent{Device: d.Clone()})
	}
}

// Forget disconnects and clears the persisted last device
func (c *Dispatcher) Forget() error {
	c.Disconnect()
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear last device: %w", err)
	}
	return nil
}

// Restore connects the persisted last device, if any, and reports whether
// one was found.
func (c *Dispatcher) Restore(ctx context.Context) (bool, error) {
	d, err := c.store.Load()
	if err != nil {
		return false, fmt.Errorf("failed to load last device: %w", err)
	}
	if d == nil {
		return false, nil
	}
	d.Source = device.SourceStore
	return true, c.Connect(ctx, d)
}

// SendCommand delivers button to the connected device with a single
// attempt. Failures are recorded as the last error.
func (c *Dispatcher) SendCommand(ctx context.Context, button device.Button) error {
	c.mu.Lock()
	d := c.device
	tr := c.transport
	c.mu.Unlock()

	if d == nil {
		return c.fail(nil, button, ErrNoDevice)
	}
	if tr == nil {
		return c.fail(d, button, ErrUnknownVendor)
	}

	token := keymap.Command(button, d.Vendor)
	if token == keymap.NoMapping {
		return c.fail(d, button, fmt.Errorf("%w %s on %s", ErrNoMapping, button, d.Vendor.DisplayName()))
	}

	start := time.Now()
	err := tr.Send(ctx, token)
	c.metrics.CommandDispatched(string(d.Vendor), err, time.Since(start))
	if err != nil {
		return c.fail(d, button, err)
	}

	c.logger.Debug("command sent",
		zap.String("button", string(button)),
		zap.String("token", token),
		zap.String("address", d.Address()),
	)

	category := button.Category()
	if c.haptics != nil {
		c.haptics.Trigger(category)
	}
	c.publish(event.TopicCommandSent, event.CommandEvent{
		Device:   d.Clone(),
		Button:   button,
		Token:    token,
		Category: category,
	})
	return nil
}

func (c *Dispatcher) fail(d *device.Device, button device.Button, err error) error {
	msg := ShortMessage(err)
	c.setLastError(msg)

	fields := []zap.Field{zap.String("button", string(button)), zap.Error(err)}
	if d != nil {
		fields = append(fields, zap.String("address", d.Address()))
	}
	c.logger.Warn("command failed", fields...)

	c.publish(event.TopicCommandError, event.ErrorEvent{Scope: string(button), Message: msg})
	return err
}

func (c *Dispatcher) setLastError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}

// ConnectedDevice returns a copy of the connected device, or nil
func (c *Dispatcher) ConnectedDevice() *device.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.Clone()
}

// Connected reports whether a device is connected
func (c *Dispatcher) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device != nil
}

// LastError returns the most recent failure message, or ""
func (c *Dispatcher) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Dispatcher) publish(topic string, payload any) {
	if c.bus == nil {
		return
	}
	_ = c.bus.Publish(context.Background(), event.Event{
		Topic:   topic,
		Source:  "control",
		Payload: payload,
	})
}
