package device

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source records how a device record was produced
type Source string

const (
	SourceSSDP   Source = "ssdp"
	SourceMDNS   Source = "mdns"
	SourceManual Source = "manual"
	SourceStore  Source = "store"
)

// Device represents a TV on the local network
type Device struct {
	// ID is a stable unique identifier (UUID string)
	ID string `json:"id" yaml:"id"`

	// Name is the display name (e.g., "Living Room Roku")
	Name string `json:"name" yaml:"name"`

	// Host is the IP address or hostname of the TV
	Host string `json:"host" yaml:"host"`

	// Port is the control port announced by discovery (e.g., 8060 for Roku)
	Port int `json:"port" yaml:"port"`

	// Vendor selects the control protocol
	Vendor Vendor `json:"vendor" yaml:"vendor"`

	// Model and Serial are filled in when discovery can learn them
	Model  string `json:"model,omitempty" yaml:"model,omitempty"`
	Serial string `json:"serial,omitempty" yaml:"serial,omitempty"`

	// Source is the discovery mechanism that produced the record
	Source Source `json:"source,omitempty" yaml:"source,omitempty"`

	// LastConnected is set whenever the device becomes the connected device
	LastConnected *time.Time `json:"last_connected,omitempty" yaml:"last_connected,omitempty"`
}

// New creates a manually entered device with a random ID.
// An empty name is replaced by the vendor's generic label.
func New(name, host string, port int, vendor Vendor) *Device {
	if name == "" {
		name = vendor.DefaultName()
	}
	return &Device{
		ID:     uuid.NewString(),
		Name:   name,
		Host:   host,
		Port:   port,
		Vendor: vendor,
		Source: SourceManual,
	}
}

// NewManual creates a manually entered device from "host", "host:port" or
// "[v6addr]:port". A missing port falls back to the vendor's default.
func NewManual(addr string, vendor Vendor) (*Device, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("empty address")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// No port, possibly a bare IPv6 literal
		host = strings.Trim(addr, "[]")
		portStr = ""
	}
	if host == "" {
		return nil, fmt.Errorf("invalid address %q: missing host", addr)
	}

	port := vendor.DefaultPort()
	if portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q", portStr)
		}
	}

	return New("", host, port, vendor), nil
}

// StableID derives a deterministic identifier from a discovery key such as
// an SSDP USN or a DNS-SD instance name. The same key always yields the same ID.
func StableID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Address returns the "host:port" pair that identifies the device on the network
func (d *Device) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// SameAddress reports whether both devices share a network address
func (d *Device) SameAddress(other *Device) bool {
	if d == nil || other == nil {
		return false
	}
	return d.Address() == other.Address()
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s", d.Name, d.Vendor, d.Address())
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + d.Address()
}

// Clone returns a deep copy of the device
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	c := *d
	if d.LastConnected != nil {
		t := *d.LastConnected
		c.LastConnected = &t
	}
	return &c
}
