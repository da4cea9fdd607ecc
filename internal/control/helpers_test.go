package control

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/muurk/tvremote/internal/device"
)

// recordedRequest is a request captured by a fake TV
type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeHTTPTV answers every request with status and records it
type fakeHTTPTV struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	requests []recordedRequest
}

func newFakeHTTPTV(t *testing.T, status int) *fakeHTTPTV {
	t.Helper()
	tv := &fakeHTTPTV{status: status}
	tv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		tv.mu.Lock()
		tv.requests = append(tv.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		status := tv.status
		tv.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(tv.Close)
	return tv
}

func (tv *fakeHTTPTV) Requests() []recordedRequest {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return append([]recordedRequest(nil), tv.requests...)
}

// fakeWSTV accepts WebSocket connections and records text frames
type fakeWSTV struct {
	*httptest.Server

	connections atomic.Int32
	messages    chan string
	queries     chan url.Values
	closed      chan struct{}
}

func newFakeWSTV(t *testing.T) *fakeWSTV {
	t.Helper()
	tv := &fakeWSTV{
		messages: make(chan string, 16),
		queries:  make(chan url.Values, 16),
		closed:   make(chan struct{}, 16),
	}
	upgrader := websocket.Upgrader{}
	tv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		tv.connections.Add(1)
		tv.queries <- r.URL.Query()
		go func() {
			defer conn.Close()
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					tv.closed <- struct{}{}
					return
				}
				tv.messages <- string(data)
			}
		}()
	}))
	t.Cleanup(tv.Close)
	return tv
}

// hostPort splits a test server URL into host and port
func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("bad server URL: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("bad server host: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func deviceAt(t *testing.T, rawURL string, vendor device.Vendor) *device.Device {
	host, port := hostPort(t, rawURL)
	return device.New("Test TV", host, port, vendor)
}

// closedPort returns a loopback port with nothing listening on it
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}
