package discovery

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/logging"
)

const (
	// SSDPMulticastAddr is the standard SSDP multicast group and port
	SSDPMulticastAddr = "239.255.255.250:1900"

	// DefaultSSDPWindow is how long each search target listens for replies
	DefaultSSDPWindow = 5 * time.Second

	// TargetRokuECP is the search target answered by Roku devices
	TargetRokuECP = "roku:ecp"

	// TargetDIAL is the generic DIAL multiscreen target (Samsung, LG and others)
	TargetDIAL = "urn:dial-multiscreen-org:service:dial:1"

	// TargetMediaRenderer is the generic UPnP media renderer target
	TargetMediaRenderer = "urn:schemas-upnp-org:device:MediaRenderer:1"

	ssdpMX        = 3
	ssdpTTL       = 2
	ssdpReadBytes = 2048
)

// DefaultSSDPTargets are searched when no targets are configured
var DefaultSSDPTargets = []string{TargetRokuECP, TargetDIAL, TargetMediaRenderer}

// ErrNoLocation is returned by ParseResponse when a reply carries no usable LOCATION
var ErrNoLocation = errors.New("ssdp response has no usable LOCATION")

// SSDPScanner performs active discovery with SSDP M-SEARCH requests
type SSDPScanner struct {
	// Targets are the ST values searched, one socket each
	Targets []string

	// Window is the listen time per target
	Window time.Duration

	// MulticastAddr is where M-SEARCH datagrams are sent
	MulticastAddr string

	// Describer, when set, enriches candidates from their UPnP description
	Describer Describer

	logger *zap.Logger
}

// NewSSDPScanner creates a scanner with the default targets and window
func NewSSDPScanner() *SSDPScanner {
	return &SSDPScanner{
		Targets:       append([]string(nil), DefaultSSDPTargets...),
		Window:        DefaultSSDPWindow,
		MulticastAddr: SSDPMulticastAddr,
		logger:        logging.Named("ssdp"),
	}
}

// SetLogger replaces the scanner's logger
func (s *SSDPScanner) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Name implements Scanner
func (s *SSDPScanner) Name() string {
	return "ssdp"
}

// Scan searches every target concurrently and reports candidates as replies
// arrive. A socket failure on one target is reported through failed and does
// not affect the others.
func (s *SSDPScanner) Scan(ctx context.Context, found FoundFunc, failed FailedFunc) {
	var wg sync.WaitGroup
	for _, target := range s.Targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			if err := s.searchTarget(ctx, target, found); err != nil {
				s.log().Warn("SSDP search failed", zap.String("target", target), zap.Error(err))
				if failed != nil {
					failed(target, err)
				}
			}
		}(target)
	}
	wg.Wait()
}

func (s *SSDPScanner) searchTarget(ctx context.Context, target string, found FoundFunc) error {
	dst, err := net.ResolveUDPAddr("udp4", s.multicastAddr())
	if err != nil {
		return fmt.Errorf("failed to resolve SSDP address: %w", err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("failed to open SSDP socket: %w", err)
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(ssdpTTL); err != nil {
		s.log().Debug("could not set multicast TTL", zap.Error(err))
	}

	if _, err := conn.WriteTo(BuildSearchRequest(target), dst); err != nil {
		return fmt.Errorf("failed to send M-SEARCH: %w", err)
	}
	s.log().Debug("M-SEARCH sent", zap.String("target", target))

	window := s.Window
	if window <= 0 {
		window = DefaultSSDPWindow
	}
	if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	// Unblock ReadFrom when the session is cancelled.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	seen := make(map[string]bool)
	buf := make([]byte, ssdpReadBytes)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read SSDP reply: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		logging.LogRawBytes(s.log(), "SSDP response", buf[:n])

		resp, err := ParseResponse(buf[:n])
		if err != nil {
			s.log().Debug("dropping SSDP response", zap.Stringer("from", from), zap.Error(err))
			continue
		}

		d := resp.Device()
		if seen[d.Address()] {
			continue
		}
		seen[d.Address()] = true

		if s.Describer != nil {
			if err := s.Describer.Describe(ctx, resp.Location, d); err != nil {
				s.log().Debug("device description unavailable",
					zap.String("location", resp.Location.String()),
					zap.Error(err),
				)
			}
		}
		found(d)
	}
}

func (s *SSDPScanner) multicastAddr() string {
	if s.MulticastAddr == "" {
		return SSDPMulticastAddr
	}
	return s.MulticastAddr
}

func (s *SSDPScanner) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// BuildSearchRequest returns the M-SEARCH datagram for target
func BuildSearchRequest(target string) []byte {
	var b bytes.Buffer
	b.WriteString("M-SEARCH * HTTP/1.1\r\n")
	b.WriteString("HOST: " + SSDPMulticastAddr + "\r\n")
	b.WriteString("MAN: \"ssdp:discover\"\r\n")
	b.WriteString("MX: " + strconv.Itoa(ssdpMX) + "\r\n")
	b.WriteString("ST: " + target + "\r\n")
	b.WriteString("\r\n")
	return b.Bytes()
}

// Response is a parsed SSDP search reply
type Response struct {
	// Headers holds every header with its name uppercased
	Headers map[string]string

	Location *url.URL
	ST       string
	Server   string
	USN      string
}

// ParseResponse parses a CRLF-delimited SSDP reply. Header names are
// matched case-insensitively. A missing or unparseable LOCATION yields
// ErrNoLocation.
func ParseResponse(data []byte) (*Response, error) {
	headers := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			// status line or blank separator
			continue
		}
		headers[strings.ToUpper(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	loc := headers["LOCATION"]
	if loc == "" {
		return nil, ErrNoLocation
	}
	u, err := url.Parse(loc)
	if err != nil || u.Hostname() == "" {
		return nil, ErrNoLocation
	}
	if p := u.Port(); p != "" {
		if _, err := strconv.Atoi(p); err != nil {
			return nil, ErrNoLocation
		}
	}

	return &Response{
		Headers:  headers,
		Location: u,
		ST:       headers["ST"],
		Server:   headers["SERVER"],
		USN:      headers["USN"],
	}, nil
}

// Port returns the LOCATION port, defaulting to 80
func (r *Response) Port() int {
	if p, err := strconv.Atoi(r.Location.Port()); err == nil {
		return p
	}
	return 80
}

type hint struct {
	substr string
	vendor device.Vendor
}

var usnHints = []hint{
	{"roku", device.VendorRoku},
	{"samsung", device.VendorSamsung},
	{"lge", device.VendorLG},
}

var stHints = []hint{
	{"roku", device.VendorRoku},
	{"samsung", device.VendorSamsung},
	{"lge", device.VendorLG},
	{"webos", device.VendorLG},
}

var serverHints = []hint{
	{"samsung", device.VendorSamsung},
	{"tizen", device.VendorSamsung},
	{"webos", device.VendorLG},
	{"lge", device.VendorLG},
	{"lg smart", device.VendorLG},
	{"roku", device.VendorRoku},
	{"airtunes", device.VendorAppleTV},
	{"apple", device.VendorAppleTV},
}

func matchHint(value string, hints []hint) (device.Vendor, bool) {
	value = strings.ToLower(value)
	if value == "" {
		return device.VendorUnknown, false
	}
	for _, h := range hints {
		if strings.Contains(value, h.substr) {
			return h.vendor, true
		}
	}
	return device.VendorUnknown, false
}

func isGenericTarget(st string) bool {
	st = strings.ToLower(st)
	return strings.Contains(st, "dial-multiscreen") || strings.Contains(st, "mediarenderer")
}

// Vendor classifies the reply. A vendor token in USN wins outright;
// otherwise ST decides, with generic DIAL and media renderer targets
// refined by SERVER.
func (r *Response) Vendor() device.Vendor {
	if v, ok := matchHint(r.USN, usnHints); ok {
		return v
	}
	if v, ok := matchHint(r.ST, stHints); ok {
		return v
	}
	if isGenericTarget(r.ST) || r.ST == "" {
		if v, ok := matchHint(r.Server, serverHints); ok {
			return v
		}
	}
	return device.VendorUnknown
}

// Device builds a discovery candidate from the reply
func (r *Response) Device() *device.Device {
	vendor := r.Vendor()
	d := &device.Device{
		Name:   vendor.DefaultName(),
		Host:   r.Location.Hostname(),
		Port:   r.Port(),
		Vendor: vendor,
		Source: device.SourceSSDP,
	}
	key := r.USN
	if key == "" {
		key = "ssdp:" + d.Address()
	}
	d.ID = device.StableID(key)
	return d
}
