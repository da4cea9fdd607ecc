package control

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
)

const (
	// DefaultHTTPTimeout bounds every one-shot HTTP exchange
	DefaultHTTPTimeout = 5 * time.Second

	// DefaultWSReadyTimeout bounds the wait for a WebSocket to become ready
	DefaultWSReadyTimeout = 500 * time.Millisecond

	// DefaultSamsungPort is the Samsung remote-control WebSocket port
	DefaultSamsungPort = 8001

	// DefaultROAPPort is the LG ROAP HTTP port
	DefaultROAPPort = 8080

	// DefaultAppName is announced to TVs that show the controlling app
	DefaultAppName = "tvremote"
)

// Transport delivers vendor tokens to one device.
//
// Send is not safe for overlapping calls from the caller's side; callers
// issue one command at a time.
type Transport interface {
	Send(ctx context.Context, token string) error
	Close() error
}

// Opener is implemented by transports that keep a persistent connection and
// can establish it ahead of the first Send.
type Opener interface {
	Open(ctx context.Context) error
}

// Options configures the transports built by a Registry
type Options struct {
	HTTPClient     *http.Client
	HTTPTimeout    time.Duration
	WSReadyTimeout time.Duration
	SamsungPort    int
	ROAPPort       int
	AppName        string
	Dialer         *websocket.Dialer
	Logger         *zap.Logger
}

// DefaultOptions returns the production settings
func DefaultOptions() Options {
	return Options{
		HTTPTimeout:    DefaultHTTPTimeout,
		WSReadyTimeout: DefaultWSReadyTimeout,
		SamsungPort:    DefaultSamsungPort,
		ROAPPort:       DefaultROAPPort,
		AppName:        DefaultAppName,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = def.HTTPTimeout
	}
	if o.WSReadyTimeout <= 0 {
		o.WSReadyTimeout = def.WSReadyTimeout
	}
	if o.SamsungPort <= 0 {
		o.SamsungPort = def.SamsungPort
	}
	if o.ROAPPort <= 0 {
		o.ROAPPort = def.ROAPPort
	}
	if o.AppName == "" {
		o.AppName = def.AppName
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Dialer == nil {
		o.Dialer = &websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// TransportFactory builds the transport for a device
type TransportFactory func(d *device.Device, opts Options) Transport

// Registry selects a transport strategy per vendor
type Registry map[device.Vendor]TransportFactory

// DefaultRegistry returns the built-in strategies for every known vendor
func DefaultRegistry() Registry {
	return Registry{
		device.VendorRoku:    NewRokuTransport,
		device.VendorSamsung: NewSamsungTransport,
		device.VendorLG:      NewLGTransport,
		device.VendorAppleTV: NewAppleTVTransport,
	}
}

// Build returns the transport for d, or ErrUnknownVendor when no strategy
// is registered for its vendor.
func (r Registry) Build(d *device.Device, opts Options) (Transport, error) {
	factory, ok := r[d.Vendor]
	if !ok {
		return nil, ErrUnknownVendor
	}
	return factory(d, opts.withDefaults()), nil
}
