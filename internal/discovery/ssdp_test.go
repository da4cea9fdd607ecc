package discovery

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tvremote/internal/device"
)

func TestBuildSearchRequest(t *testing.T) {
	want := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 3\r\n" +
		"ST: roku:ecp\r\n" +
		"\r\n"

	if got := string(BuildSearchRequest(TargetRokuECP)); got != want {
		t.Errorf("BuildSearchRequest() = %q, want %q", got, want)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name: "roku reply",
			payload: "HTTP/1.1 200 OK\r\n" +
				"Cache-Control: max-age=3600\r\n" +
				"ST: roku:ecp\r\n" +
				"Location: http://192.168.1.20:8060/\r\n" +
				"USN: uuid:roku:ecp:X00400ABCDEF\r\n\r\n",
			wantHost: "192.168.1.20",
			wantPort: 8060,
		},
		{
			name:     "lowercase header names",
			payload:  "HTTP/1.1 200 OK\r\nlocation: http://10.0.0.7:7676/dmr\r\nst: upnp:rootdevice\r\n\r\n",
			wantHost: "10.0.0.7",
			wantPort: 7676,
		},
		{
			name:     "port defaults to 80",
			payload:  "HTTP/1.1 200 OK\r\nLOCATION: http://10.0.0.8/desc.xml\r\n\r\n",
			wantHost: "10.0.0.8",
			wantPort: 80,
		},
		{
			name:    "missing location",
			payload: "HTTP/1.1 200 OK\r\nST: roku:ecp\r\n\r\n",
			wantErr: true,
		},
		{
			name:    "unparseable location",
			payload: "HTTP/1.1 200 OK\r\nLOCATION: ::not a url\r\n\r\n",
			wantErr: true,
		},
		{
			name:    "location without host",
			payload: "HTTP/1.1 200 OK\r\nLOCATION: /desc.xml\r\n\r\n",
			wantErr: true,
		},
		{
			name:    "garbage",
			payload: "\x00\x01\x02",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseResponse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse() error = %v", err)
			}
			if resp.Location.Hostname() != tt.wantHost {
				t.Errorf("host = %q, want %q", resp.Location.Hostname(), tt.wantHost)
			}
			if resp.Port() != tt.wantPort {
				t.Errorf("port = %d, want %d", resp.Port(), tt.wantPort)
			}
		})
	}
}

func TestResponseVendor(t *testing.T) {
	tests := []struct {
		name   string
		st     string
		server string
		usn    string
		want   device.Vendor
	}{
		{"roku target", "roku:ecp", "", "", device.VendorRoku},
		{"dial refined to samsung", TargetDIAL, "Linux/4.1 UPnP/1.0 Samsung-Tizen/1.0", "", device.VendorSamsung},
		{"dial refined to lg", TargetDIAL, "WebOS/4.0.0 UPnP/1.0", "", device.VendorLG},
		{"renderer refined to lg", TargetMediaRenderer, "Linux/3.10 UPnP/1.0 LG Smart TV", "", device.VendorLG},
		{"dial without server hint", TargetDIAL, "Linux UPnP/1.0 Portable SDK", "", device.VendorUnknown},
		{"usn wins over server", TargetDIAL, "Samsung-Tizen", "uuid:roku:ecp:1234", device.VendorRoku},
		{"usn lge", TargetMediaRenderer, "", "uuid:abcd-lge-1234::urn:dial", device.VendorLG},
		{"server ignored for specific target", "urn:schemas-upnp-org:service:ContentDirectory:1", "Samsung", "", device.VendorUnknown},
		{"unrecognised", "upnp:rootdevice", "", "", device.VendorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{ST: tt.st, Server: tt.server, USN: tt.usn}
			if got := r.Vendor(); got != tt.want {
				t.Errorf("Vendor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResponseDevice(t *testing.T) {
	resp, err := ParseResponse([]byte("HTTP/1.1 200 OK\r\nST: roku:ecp\r\nLOCATION: http://192.168.1.20:8060/\r\nUSN: uuid:roku:ecp:X1\r\n\r\n"))
	require.NoError(t, err)

	d := resp.Device()
	assert.Equal(t, device.VendorRoku, d.Vendor)
	assert.Equal(t, "Roku Device", d.Name)
	assert.Equal(t, "192.168.1.20:8060", d.Address())
	assert.Equal(t, device.SourceSSDP, d.Source)
	assert.Equal(t, device.StableID("uuid:roku:ecp:X1"), d.ID)
}

func TestResponseDevice_UnknownStillSurfaced(t *testing.T) {
	resp, err := ParseResponse([]byte("HTTP/1.1 200 OK\r\nST: upnp:rootdevice\r\nLOCATION: http://10.0.0.9:1400/xml\r\n\r\n"))
	require.NoError(t, err)

	d := resp.Device()
	assert.Equal(t, device.VendorUnknown, d.Vendor)
	assert.Equal(t, "TV Device", d.Name)
	assert.NotEmpty(t, d.ID)
}

// startResponder answers every M-SEARCH for target with reply.
func startResponder(t *testing.T, target string, replies ...string) net.PacketConn {
	t.Helper()
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if !bytes.Contains(buf[:n], []byte("ST: "+target+"\r\n")) {
				continue
			}
			for _, r := range replies {
				_, _ = conn.WriteTo([]byte(r), from)
			}
		}
	}()
	return conn
}

func TestSSDPScanner_Scan(t *testing.T) {
	roku := "HTTP/1.1 200 OK\r\nST: roku:ecp\r\nLOCATION: http://127.0.0.1:8060/\r\nUSN: uuid:roku:ecp:A\r\n\r\n"
	noLocation := "HTTP/1.1 200 OK\r\nST: roku:ecp\r\n\r\n"
	responder := startResponder(t, TargetRokuECP, roku, noLocation, roku)

	s := NewSSDPScanner()
	s.Targets = []string{TargetRokuECP}
	s.Window = 300 * time.Millisecond
	s.MulticastAddr = responder.LocalAddr().String()

	var mu sync.Mutex
	var found []*device.Device
	var failures []string

	start := time.Now()
	s.Scan(context.Background(),
		func(d *device.Device) {
			mu.Lock()
			defer mu.Unlock()
			found = append(found, d)
		},
		func(scope string, err error) {
			mu.Lock()
			defer mu.Unlock()
			failures = append(failures, scope)
		},
	)

	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	assert.Empty(t, failures)
	require.Len(t, found, 1, "duplicate and LOCATION-less replies should be dropped")
	assert.Equal(t, device.VendorRoku, found[0].Vendor)
	assert.Equal(t, "127.0.0.1:8060", found[0].Address())
}

func TestSSDPScanner_CancelClosesPromptly(t *testing.T) {
	responder := startResponder(t, "none")

	s := NewSSDPScanner()
	s.Window = 10 * time.Second
	s.MulticastAddr = responder.LocalAddr().String()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	s.Scan(ctx, func(*device.Device) {}, nil)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSSDPScanner_FailureIsPerTarget(t *testing.T) {
	s := NewSSDPScanner()
	s.Window = 50 * time.Millisecond
	s.MulticastAddr = "invalid-address"

	var mu sync.Mutex
	var scopes []string
	s.Scan(context.Background(), func(*device.Device) {}, func(scope string, err error) {
		mu.Lock()
		defer mu.Unlock()
		scopes = append(scopes, scope)
	})

	assert.ElementsMatch(t, DefaultSSDPTargets, scopes)
}

const rokuDescription = `<?xml version="1.0" encoding="UTF-8" ?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <device>
    <deviceType>urn:roku-com:device:player:1-0</deviceType>
    <friendlyName>Living Room Roku</friendlyName>
    <manufacturer>Roku</manufacturer>
    <modelName>Roku Ultra</modelName>
    <serialNumber>X00400ABCDEF</serialNumber>
    <UDN>uuid:29600009-5406-1005-8080-1234567890ab</UDN>
  </device>
</root>`

func TestUPnPDescriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(rokuDescription))
	}))
	defer srv.Close()

	loc, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)

	d := &device.Device{Name: "Roku Device", Vendor: device.VendorRoku}
	require.NoError(t, NewUPnPDescriber().Describe(context.Background(), loc, d))

	assert.Equal(t, "Living Room Roku", d.Name)
	assert.Equal(t, "Roku Ultra", d.Model)
	assert.Equal(t, "X00400ABCDEF", d.Serial)
}

func TestUPnPDescriber_FailureLeavesDevice(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	loc, _ := url.Parse(srv.URL + "/missing.xml")
	d := &device.Device{Name: "Roku Device"}

	err := NewUPnPDescriber().Describe(context.Background(), loc, d)
	assert.Error(t, err)
	assert.Equal(t, "Roku Device", d.Name)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to fetch device description"))
}
