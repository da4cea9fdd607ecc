package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/hashicorp/mdns"
)

const (
	// BackendZeroconf selects ZeroconfBrowser
	BackendZeroconf = "zeroconf"

	// BackendHashicorp selects HashicorpBrowser
	BackendHashicorp = "hashicorp"
)

// NewBrowser returns the browser for a backend name
func NewBrowser(backend string) (Browser, error) {
	switch strings.ToLower(backend) {
	case "", BackendZeroconf:
		return NewZeroconfBrowser(), nil
	case BackendHashicorp:
		return NewHashicorpBrowser(), nil
	default:
		return nil, fmt.Errorf("unknown mDNS backend %q", backend)
	}
}

// ZeroconfBrowser browses continuously with grandcat/zeroconf
type ZeroconfBrowser struct {
	// start begins browsing into entries and closes entries once ctx is
	// done. Nil uses a fresh zeroconf.Resolver per call.
	start func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// NewZeroconfBrowser creates a zeroconf-backed browser
func NewZeroconfBrowser() *ZeroconfBrowser {
	return &ZeroconfBrowser{}
}

// Browse implements Browser. It returns once the resolver has shut down.
func (b *ZeroconfBrowser) Browse(ctx context.Context, service string, found func(Endpoint)) error {
	start := b.start
	if start == nil {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return fmt.Errorf("failed to create mDNS resolver: %w", err)
		}
		start = resolver.Browse
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// The resolver blocks on every send, so keep receiving until it
		// closes the channel, even after cancellation.
		for entry := range entries {
			if entry != nil && ctx.Err() == nil {
				found(endpointFromZeroconf(entry))
			}
		}
	}()

	if err := start(ctx, service, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

func endpointFromZeroconf(entry *zeroconf.ServiceEntry) Endpoint {
	return Endpoint{
		Instance: entry.Instance,
		HostName: strings.TrimSuffix(entry.HostName, "."),
		Port:     entry.Port,
		IPv4:     entry.AddrIPv4,
		IPv6:     entry.AddrIPv6,
		Text:     entry.Text,
	}
}

// HashicorpBrowser repeatedly queries with hashicorp/mdns until cancelled
type HashicorpBrowser struct {
	// Round is the duration of a single query
	Round time.Duration

	// Interval is the pause between query rounds
	Interval time.Duration
}

// NewHashicorpBrowser creates a hashicorp/mdns-backed browser
func NewHashicorpBrowser() *HashicorpBrowser {
	return &HashicorpBrowser{
		Round:    3 * time.Second,
		Interval: time.Second,
	}
}

// Browse implements Browser. Each instance is reported once per call.
func (b *HashicorpBrowser) Browse(ctx context.Context, service string, found func(Endpoint)) error {
	seen := make(map[string]bool)
	for ctx.Err() == nil {
		if err := b.queryRound(ctx, service, seen, found); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
		case <-time.After(b.Interval):
		}
	}
	return nil
}

func (b *HashicorpBrowser) queryRound(ctx context.Context, service string, seen map[string]bool, found func(Endpoint)) error {
	entries := make(chan *mdns.ServiceEntry, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			if entry == nil || seen[entry.Name] || ctx.Err() != nil {
				continue
			}
			seen[entry.Name] = true
			found(endpointFromHashicorp(entry, service))
		}
	}()

	params := mdns.DefaultParams(service)
	params.Timeout = b.Round
	params.Entries = entries
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	wg.Wait()

	if err != nil {
		return fmt.Errorf("mDNS query failed: %w", err)
	}
	return nil
}

func endpointFromHashicorp(entry *mdns.ServiceEntry, service string) Endpoint {
	ep := Endpoint{
		Instance: instanceName(entry.Name, service),
		HostName: strings.TrimSuffix(entry.Host, "."),
		Port:     entry.Port,
		Text:     entry.InfoFields,
	}
	if entry.AddrV4 != nil {
		ep.IPv4 = append(ep.IPv4, entry.AddrV4)
	}
	if entry.AddrV6 != nil {
		ep.IPv6 = append(ep.IPv6, entry.AddrV6)
	}
	return ep
}

// instanceName strips the service and domain suffix from a full DNS-SD name
// ("Living Room._airplay._tcp.local." becomes "Living Room").
func instanceName(full, service string) string {
	if i := strings.Index(full, "."+service); i > 0 {
		return strings.ReplaceAll(full[:i], `\ `, " ")
	}
	return strings.TrimSuffix(full, ".")
}
