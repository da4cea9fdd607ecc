package control

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/logging"
)

// ROAPContentType is sent with ROAP command bodies
const ROAPContentType = "application/atom+xml"

type roapCommand struct {
	XMLName xml.Name `xml:"command"`
	Name    string   `xml:"name"`
}

// ROAPCommand returns the XML body for token
func ROAPCommand(token string) ([]byte, error) {
	return xml.Marshal(roapCommand{Name: token})
}

type lgButton struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// lgTransport posts ROAP commands and falls back to a transient WebSocket
// when the HTTP endpoint cannot be reached.
type lgTransport struct {
	roapURL     string
	fallbackURL string
	host        string
	opts        Options
}

// NewLGTransport creates an LG transport
func NewLGTransport(d *device.Device, opts Options) Transport {
	return &lgTransport{
		roapURL:     fmt.Sprintf("http://%s/roap/api/command", net.JoinHostPort(d.Host, strconv.Itoa(opts.ROAPPort))),
		fallbackURL: "ws://" + d.Address(),
		host:        d.Host,
		opts:        opts,
	}
}

func (t *lgTransport) Send(ctx context.Context, token string) error {
	err := t.sendROAP(ctx, token)
	if err == nil || !IsTransportError(err) {
		return err
	}

	t.opts.Logger.Debug("ROAP unreachable, falling back to websocket",
		zap.String("host", t.host),
		zap.Error(err),
	)
	return t.sendWebSocket(ctx, token)
}

func (t *lgTransport) sendROAP(ctx context.Context, token string) error {
	body, err := ROAPCommand(token)
	if err != nil {
		return NewProtocolError("failed to encode command", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.roapURL, bytes.NewReader(body))
	if err != nil {
		return NewProtocolError("failed to create ROAP request", err)
	}
	req.Header.Set("Content-Type", ROAPContentType)

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError("ROAP request failed", t.host, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
	return nil
}

func (t *lgTransport) sendWebSocket(ctx context.Context, token string) error {
	dialCtx, cancel := context.WithTimeout(ctx, t.opts.HTTPTimeout)
	defer cancel()

	conn, resp, err := t.opts.Dialer.DialContext(dialCtx, t.fallbackURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return NewHTTPError(resp.StatusCode, fmt.Sprintf("websocket handshake rejected: %d", resp.StatusCode))
		}
		return NewNetworkError("websocket connect failed", t.host, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(t.opts.HTTPTimeout))
	if err := conn.WriteJSON(lgButton{Type: "button", Name: token}); err != nil {
		return NewNetworkError("websocket send failed", t.host, err)
	}
	logging.LogWebSocketMessage(t.opts.Logger, t.host, "sent", websocket.TextMessage, []byte(token))

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

func (t *lgTransport) Close() error {
	return nil
}
