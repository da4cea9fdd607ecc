package control

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/device"
)

// keypressTransport posts one stateless HTTP request per button
type keypressTransport struct {
	baseURL string
	host    string
	prefix  string
	accept  []int
	opts    Options
}

// NewRokuTransport posts to the Roku External Control Protocol:
// POST /keypress/{token}, success only on 200.
func NewRokuTransport(d *device.Device, opts Options) Transport {
	return &keypressTransport{
		baseURL: d.BaseURL(),
		host:    d.Host,
		prefix:  "/keypress/",
		accept:  []int{http.StatusOK},
		opts:    opts,
	}
}

// NewAppleTVTransport posts to the DACP control interface:
// POST /ctrl-int/1/{token}, success on 200 or 204.
func NewAppleTVTransport(d *device.Device, opts Options) Transport {
	return &keypressTransport{
		baseURL: d.BaseURL(),
		host:    d.Host,
		prefix:  "/ctrl-int/1/",
		accept:  []int{http.StatusOK, http.StatusNoContent},
		opts:    opts,
	}
}

func (t *keypressTransport) Send(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, t.opts.HTTPTimeout)
	defer cancel()

	endpoint := t.baseURL + t.prefix + url.PathEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return NewProtocolError("failed to create keypress request", err)
	}

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError("keypress request failed", t.host, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	t.opts.Logger.Debug("keypress sent",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
	)

	if !slices.Contains(t.accept, resp.StatusCode) {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
	return nil
}

func (t *keypressTransport) Close() error {
	return nil
}
