package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/event"
	"github.com/muurk/tvremote/internal/metrics"
)

// DefaultScanTimeout is the upper bound on a discovery session
const DefaultScanTimeout = 30 * time.Second

type session struct {
	gen     uint64
	cancel  context.CancelFunc
	timer   *time.Timer
	started time.Time
	done    chan struct{}
}

// Coordinator runs the scanners and owns the discovered device set.
//
// The set never holds two devices with the same address. Event handlers
// subscribed to discovery topics run while the coordinator delivers the
// event and must not call Stop.
type Coordinator struct {
	// Timeout bounds each session; zero means DefaultScanTimeout
	Timeout time.Duration

	// Metrics is optional
	Metrics *metrics.Metrics

	scanners []Scanner
	bus      *event.Bus
	logger   *zap.Logger

	// emitMu is held while a candidate is inserted and announced. Stop
	// takes it exclusively so nothing is announced after Stop returns.
	emitMu sync.RWMutex

	mu      sync.Mutex
	devices []*device.Device
	lastErr string
	gen     uint64
	current *session
	last    *session
}

// NewCoordinator creates an idle coordinator. bus may be nil.
func NewCoordinator(bus *event.Bus, logger *zap.Logger, scanners ...Scanner) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		Timeout:  DefaultScanTimeout,
		scanners: scanners,
		bus:      bus,
		logger:   logger,
	}
}

// Start begins a discovery session. It is a no-op returning false when a
// session is already running; otherwise the discovered set and last error
// are cleared and every scanner is started.
func (c *Coordinator) Start() bool {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return false
	}

	c.devices = nil
	c.lastErr = ""
	c.gen++

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		gen:     c.gen,
		cancel:  cancel,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	s.timer = time.AfterFunc(timeout, func() {
		c.logger.Info("discovery timed out", zap.Duration("timeout", timeout))
		c.stop(s, true)
	})
	c.current = s
	c.last = s
	c.mu.Unlock()

	c.Metrics.ScanStarted()
	c.logger.Info("discovery started", zap.Int("scanners", len(c.scanners)))
	c.publish(event.TopicDiscoveryStarted, nil)

	var wg sync.WaitGroup
	for _, sc := range c.scanners {
		wg.Add(1)
		go func(sc Scanner) {
			defer wg.Done()
			sc.Scan(ctx,
				func(d *device.Device) { c.insert(s.gen, d) },
				func(scope string, err error) { c.fail(s.gen, sc.Name(), scope, err) },
			)
		}(sc)
	}

	go func() {
		wg.Wait()
		// Scanners that finish early end the session.
		c.stop(s, false)
		close(s.done)
	}()

	return true
}

// Stop ends the current session. It is safe to call at any time; the
// discovered set is kept.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s != nil {
		c.stop(s, false)
	}
}

func (c *Coordinator) stop(s *session, timedOut bool) {
	c.mu.Lock()
	if c.current != s {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.gen++
	s.cancel()
	s.timer.Stop()
	count := len(c.devices)
	c.mu.Unlock()

	// Wait for any in-flight announcement to finish.
	c.emitMu.Lock()
	c.emitMu.Unlock()

	took := time.Since(s.started)
	c.logger.Info("discovery stopped",
		zap.Int("devices", count),
		zap.Duration("duration", took),
		zap.Bool("timed_out", timedOut),
	)
	c.publish(event.TopicDiscoveryStopped, event.StoppedEvent{
		Devices:  count,
		Duration: took,
		TimedOut: timedOut,
	})
}

// Done returns a channel that is closed once the most recent session has
// ended and its scanners have released their sockets. This can be later
// than Stop returning. Before the first Start the channel is already closed.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.last.done
}

// Wait blocks until the most recent session, if any, has released its scanners
func (c *Coordinator) Wait() {
	<-c.Done()
}

// AddDevice inserts d unless a device with the same address is already
// present. It reports whether d was added.
func (c *Coordinator) AddDevice(d *device.Device) bool {
	c.emitMu.RLock()
	defer c.emitMu.RUnlock()

	c.mu.Lock()
	added := c.appendLocked(d)
	c.mu.Unlock()

	if added {
		c.announce(d)
	}
	return added
}

// insert is the scanner callback path. Candidates from a session that has
// since been stopped are dropped.
func (c *Coordinator) insert(gen uint64, d *device.Device) {
	c.emitMu.RLock()
	defer c.emitMu.RUnlock()

	c.mu.Lock()
	if gen != c.gen || c.current == nil {
		c.mu.Unlock()
		return
	}
	added := c.appendLocked(d)
	c.mu.Unlock()

	if added {
		c.announce(d)
	}
}

func (c *Coordinator) appendLocked(d *device.Device) bool {
	if d == nil {
		return false
	}
	for _, existing := range c.devices {
		if existing.SameAddress(d) {
			return false
		}
	}
	c.devices = append(c.devices, d)
	return true
}

func (c *Coordinator) announce(d *device.Device) {
	c.logger.Info("device discovered",
		zap.String("name", d.Name),
		zap.String("address", d.Address()),
		zap.String("vendor", string(d.Vendor)),
		zap.String("source", string(d.Source)),
	)
	c.Metrics.DeviceDiscovered(string(d.Source), string(d.Vendor))
	c.publish(event.TopicDeviceDiscovered, event.DeviceEvent{Device: d.Clone()})
}

func (c *Coordinator) fail(gen uint64, scanner, scope string, err error) {
	c.emitMu.RLock()
	defer c.emitMu.RUnlock()

	msg := fmt.Sprintf("%s %s: %v", scanner, scope, err)

	c.mu.Lock()
	if gen != c.gen || c.current == nil {
		c.mu.Unlock()
		return
	}
	c.lastErr = msg
	c.mu.Unlock()

	c.Metrics.DiscoveryFailed(scanner)
	c.publish(event.TopicDiscoveryError, event.ErrorEvent{Scope: scope, Message: msg})
}

// Devices returns a copy of the discovered set in insertion order
func (c *Coordinator) Devices() []*device.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*device.Device, len(c.devices))
	for i, d := range c.devices {
		out[i] = d.Clone()
	}
	return out
}

// Device returns the discovered device with the given ID
func (c *Coordinator) Device(id string) (*device.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.devices {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return nil, false
}

// Scanning reports whether a session is running
func (c *Coordinator) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// LastError returns the most recent scanner failure of the current or last
// session, or "" if there was none.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Coordinator) publish(topic string, payload any) {
	if c.bus == nil {
		return
	}
	_ = c.bus.Publish(context.Background(), event.Event{
		Topic:   topic,
		Source:  "discovery",
		Payload: payload,
	})
}
