package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/logging"
)

const (
	// ServiceDomain is the mDNS domain browsed
	ServiceDomain = "local."

	// DefaultResolveTimeout bounds the transient connection used to resolve an endpoint
	DefaultResolveTimeout = 2 * time.Second
)

// Namespace maps a DNS-SD service type to the vendor that advertises it
type Namespace struct {
	Service string
	Vendor  device.Vendor
}

// DefaultNamespaces are browsed when no namespaces are configured
var DefaultNamespaces = []Namespace{
	{"_roku-ecp._tcp", device.VendorRoku},
	{"_samsungmsf._tcp", device.VendorSamsung},
	{"_samsung-multiscreen._tcp", device.VendorSamsung},
	{"_lg-smart-device._tcp", device.VendorLG},
	{"_webos._tcp", device.VendorLG},
	{"_airplay._tcp", device.VendorAppleTV},
	{"_touch-able._tcp", device.VendorAppleTV},
}

// VendorForService returns the vendor mapped to a service type
func VendorForService(service string) device.Vendor {
	for _, ns := range DefaultNamespaces {
		if ns.Service == service {
			return ns.Vendor
		}
	}
	return device.VendorUnknown
}

// Endpoint is a service instance reported by a Browser
type Endpoint struct {
	Instance string
	HostName string
	Port     int
	IPv4     []net.IP
	IPv6     []net.IP
	Text     []string
}

// Browser abstracts the mDNS implementation. Browse reports endpoints for
// service until ctx is cancelled and returns an error only if the browse
// could not be started or failed outright.
type Browser interface {
	Browse(ctx context.Context, service string, found func(Endpoint)) error
}

// ResolveFunc turns an endpoint into a concrete host and port
type ResolveFunc func(ctx context.Context, ep Endpoint) (host string, port int, err error)

// ServiceScanner performs browse-based discovery over a set of namespaces
type ServiceScanner struct {
	Browser    Browser
	Namespaces []Namespace

	// Resolve defaults to DialResolve
	Resolve ResolveFunc

	logger *zap.Logger
}

// NewServiceScanner creates a scanner over the default namespaces
func NewServiceScanner(browser Browser) *ServiceScanner {
	return &ServiceScanner{
		Browser:    browser,
		Namespaces: append([]Namespace(nil), DefaultNamespaces...),
		Resolve:    DialResolve,
		logger:     logging.Named("mdns"),
	}
}

// SetLogger replaces the scanner's logger
func (s *ServiceScanner) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Name implements Scanner
func (s *ServiceScanner) Name() string {
	return "mdns"
}

// Scan browses every namespace concurrently until ctx is cancelled. A browse
// failure is reported for its namespace only.
func (s *ServiceScanner) Scan(ctx context.Context, found FoundFunc, failed FailedFunc) {
	var wg sync.WaitGroup
	for _, ns := range s.Namespaces {
		wg.Add(1)
		go func(ns Namespace) {
			defer wg.Done()
			err := s.Browser.Browse(ctx, ns.Service, func(ep Endpoint) {
				d, err := s.resolveEndpoint(ctx, ns, ep)
				if err != nil {
					s.log().Debug("dropping unresolved endpoint",
						zap.String("service", ns.Service),
						zap.String("instance", ep.Instance),
						zap.Error(err),
					)
					return
				}
				found(d)
			})
			if err != nil && ctx.Err() == nil {
				s.log().Warn("mDNS browse failed", zap.String("service", ns.Service), zap.Error(err))
				if failed != nil {
					failed(ns.Service, err)
				}
			}
		}(ns)
	}
	wg.Wait()
}

func (s *ServiceScanner) resolveEndpoint(ctx context.Context, ns Namespace, ep Endpoint) (*device.Device, error) {
	resolve := s.Resolve
	if resolve == nil {
		resolve = DialResolve
	}
	host, port, err := resolve(ctx, ep)
	if err != nil {
		return nil, err
	}

	name := ep.Instance
	if name == "" {
		name = ns.Vendor.DefaultName()
	}
	d := &device.Device{
		Name:   name,
		Host:   host,
		Port:   port,
		Vendor: ns.Vendor,
		Source: device.SourceMDNS,
	}
	d.ID = device.StableID(ns.Service + "/" + ep.Instance + "/" + d.Address())
	return d, nil
}

func (s *ServiceScanner) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// candidateHost picks the address to dial: IPv4 first, then IPv6, then the
// advertised host name.
func candidateHost(ep Endpoint) (string, error) {
	for _, ip := range ep.IPv4 {
		if ip != nil && !ip.IsUnspecified() {
			return ip.String(), nil
		}
	}
	for _, ip := range ep.IPv6 {
		if ip != nil && !ip.IsUnspecified() {
			return ip.String(), nil
		}
	}
	if ep.HostName != "" {
		return ep.HostName, nil
	}
	return "", fmt.Errorf("endpoint %q has no address", ep.Instance)
}

// DialResolve opens a transient TCP connection to the endpoint, reads back
// the remote address once connected and closes the connection.
func DialResolve(ctx context.Context, ep Endpoint) (string, int, error) {
	host, err := candidateHost(ep)
	if err != nil {
		return "", 0, err
	}
	if ep.Port <= 0 {
		return "", 0, fmt.Errorf("endpoint %q has no port", ep.Instance)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultResolveTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(ep.Port)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve endpoint: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return "", 0, fmt.Errorf("unexpected remote address %s", conn.RemoteAddr())
	}
	return addr.IP.String(), addr.Port, nil
}
