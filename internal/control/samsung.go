package control

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/logging"
)

type samsungCommand struct {
	Method string        `json:"method"`
	Params samsungParams `json:"params"`
}

type samsungParams struct {
	Cmd          string `json:"Cmd"`
	DataOfCmd    string `json:"DataOfCmd"`
	Option       string `json:"Option"`
	TypeOfRemote string `json:"TypeOfRemote"`
}

// SamsungCommand returns the remote-control payload for token
func SamsungCommand(token string) ([]byte, error) {
	return json.Marshal(samsungCommand{
		Method: "ms.remote.control",
		Params: samsungParams{
			Cmd:          "Click",
			DataOfCmd:    token,
			Option:       "false",
			TypeOfRemote: "SendRemoteKey",
		},
	})
}

// SamsungURL returns the remote-control channel URL for a TV
func SamsungURL(host string, port int, appName string) string {
	name := base64.StdEncoding.EncodeToString([]byte(appName))
	return fmt.Sprintf("ws://%s/api/v2/channels/samsung.remote.control?name=%s",
		net.JoinHostPort(host, strconv.Itoa(port)), url.QueryEscape(name))
}

// samsungTransport keeps one WebSocket open across sends
type samsungTransport struct {
	url  string
	host string
	opts Options

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewSamsungTransport creates a lazily connected Samsung transport
func NewSamsungTransport(d *device.Device, opts Options) Transport {
	return &samsungTransport{
		url:  SamsungURL(d.Host, opts.SamsungPort, opts.AppName),
		host: d.Host,
		opts: opts,
	}
}

// Open dials the socket if it is not already live
func (t *samsungTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.connLocked(ctx)
	return err
}

func (t *samsungTransport) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if t.closed {
		return nil, ErrTransportClosed
	}
	if t.conn != nil {
		return t.conn, nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.WSReadyTimeout)
	defer cancel()

	conn, resp, err := t.opts.Dialer.DialContext(ctx, t.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("websocket handshake rejected: %d", resp.StatusCode))
		}
		return nil, NewNetworkError("websocket connect failed", t.host, err)
	}

	t.opts.Logger.Info("Samsung socket connected", zap.String("url", t.url))
	t.conn = conn
	go t.readLoop(conn)
	return conn, nil
}

// readLoop drains frames the TV pushes so control frames are processed, and
// forgets the socket once the TV closes it.
func (t *samsungTransport) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			_ = conn.Close()
			t.opts.Logger.Debug("Samsung socket closed", zap.Error(err))
			return
		}
		logging.LogWebSocketMessage(t.opts.Logger, t.host, "received", msgType, data)
	}
}

func (t *samsungTransport) Send(ctx context.Context, token string) error {
	payload, err := SamsungCommand(token)
	if err != nil {
		return NewProtocolError("failed to encode command", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.connLocked(ctx)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(t.opts.HTTPTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		// Drop the broken socket; the next send dials again.
		_ = conn.Close()
		t.conn = nil
		return NewNetworkError("websocket send failed", t.host, err)
	}
	logging.LogWebSocketMessage(t.opts.Logger, t.host, "sent", websocket.TextMessage, payload)
	return nil
}

// Close releases the socket. The transport cannot be reused afterwards.
func (t *samsungTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.conn == nil {
		return nil
	}
	conn := t.conn
	t.conn = nil

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}
