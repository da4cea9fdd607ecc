package control

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tvremote/internal/device"
)

func testOptions() Options {
	return DefaultOptions().withDefaults()
}

func TestRegistry_Build(t *testing.T) {
	reg := DefaultRegistry()

	for _, v := range device.Vendors {
		d := device.New("", "10.0.0.5", 8060, v)
		tr, err := reg.Build(d, Options{})
		if !v.Known() {
			assert.ErrorIs(t, err, ErrUnknownVendor)
			assert.Nil(t, tr)
			continue
		}
		require.NoError(t, err, v)
		assert.NotNil(t, tr, v)
	}
}

func TestRokuTransport(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"200 ok", http.StatusOK, false},
		{"204 is not success for ECP", http.StatusNoContent, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv := newFakeHTTPTV(t, tt.status)
			tr := NewRokuTransport(deviceAt(t, tv.URL, device.VendorRoku), testOptions())

			err := tr.Send(context.Background(), "VolumeUp")
			if tt.wantErr {
				var devErr *DeviceError
				require.ErrorAs(t, err, &devErr)
				assert.Equal(t, ErrTypeHTTP, devErr.Type)
				assert.Equal(t, tt.status, devErr.StatusCode)
			} else {
				require.NoError(t, err)
			}

			reqs := tv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].Method)
			assert.Equal(t, "/keypress/VolumeUp", reqs[0].Path)
		})
	}
}

func TestAppleTVTransport(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		tv := newFakeHTTPTV(t, status)
		tr := NewAppleTVTransport(deviceAt(t, tv.URL, device.VendorAppleTV), testOptions())

		require.NoError(t, tr.Send(context.Background(), "topmenu"), "status %d", status)
		reqs := tv.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/ctrl-int/1/topmenu", reqs[0].Path)
	}

	tv := newFakeHTTPTV(t, http.StatusForbidden)
	tr := NewAppleTVTransport(deviceAt(t, tv.URL, device.VendorAppleTV), testOptions())
	assert.Error(t, tr.Send(context.Background(), "play"))
}

func TestKeypressTransport_Unreachable(t *testing.T) {
	d := device.New("", "127.0.0.1", closedPort(t), device.VendorRoku)
	tr := NewRokuTransport(d, testOptions())

	err := tr.Send(context.Background(), "Home")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestKeypressTransport_Timeout(t *testing.T) {
	block := make(chan struct{})
	tv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer tv.Close()
	defer close(block)

	opts := testOptions()
	opts.HTTPTimeout = 100 * time.Millisecond
	tr := NewRokuTransport(deviceAt(t, tv.URL, device.VendorRoku), opts)

	err := tr.Send(context.Background(), "Up")
	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, ErrTypeTimeout, devErr.Type)
}

func TestSamsungCommand(t *testing.T) {
	payload, err := SamsungCommand("KEY_VOLUP")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"method": "ms.remote.control",
		"params": {
			"Cmd": "Click",
			"DataOfCmd": "KEY_VOLUP",
			"Option": "false",
			"TypeOfRemote": "SendRemoteKey"
		}
	}`, string(payload))
}

func TestSamsungURL(t *testing.T) {
	got := SamsungURL("192.168.1.40", 8001, "tvremote")
	assert.Equal(t, "ws://192.168.1.40:8001/api/v2/channels/samsung.remote.control?name=dHZyZW1vdGU%3D", got)
}

func TestSamsungTransport_ReusesSocket(t *testing.T) {
	tv := newFakeWSTV(t)
	host, port := hostPort(t, tv.URL)

	opts := testOptions()
	opts.SamsungPort = port
	tr := NewSamsungTransport(device.New("", host, 55000, device.VendorSamsung), opts)
	defer tr.Close()

	for _, token := range []string{"KEY_UP", "KEY_ENTER"} {
		require.NoError(t, tr.Send(context.Background(), token))
		select {
		case msg := <-tv.messages:
			assert.Contains(t, msg, token)
		case <-time.After(2 * time.Second):
			t.Fatal("TV did not receive command")
		}
	}
	assert.Equal(t, int32(1), tv.connections.Load(), "socket should be reused")

	query := <-tv.queries
	name, err := base64.StdEncoding.DecodeString(query.Get("name"))
	require.NoError(t, err)
	assert.Equal(t, "tvremote", string(name))
}

func TestSamsungTransport_OpenAndClose(t *testing.T) {
	tv := newFakeWSTV(t)
	host, port := hostPort(t, tv.URL)

	opts := testOptions()
	opts.SamsungPort = port
	tr := NewSamsungTransport(device.New("", host, port, device.VendorSamsung), opts)

	opener, ok := tr.(Opener)
	require.True(t, ok)
	require.NoError(t, opener.Open(context.Background()))
	require.NoError(t, opener.Open(context.Background()))
	assert.Equal(t, int32(1), tv.connections.Load())

	require.NoError(t, tr.Close())
	select {
	case <-tv.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("socket was not closed")
	}

	assert.ErrorIs(t, tr.Send(context.Background(), "KEY_UP"), ErrTransportClosed)
}

func TestSamsungTransport_Unreachable(t *testing.T) {
	opts := testOptions()
	opts.SamsungPort = closedPort(t)
	tr := NewSamsungTransport(device.New("", "127.0.0.1", 0, device.VendorSamsung), opts)

	err := tr.Send(context.Background(), "KEY_UP")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestROAPCommand(t *testing.T) {
	body, err := ROAPCommand("VOLUMEUP")
	require.NoError(t, err)
	assert.Equal(t, "<command><name>VOLUMEUP</name></command>", string(body))
}

func TestLGTransport_ROAP(t *testing.T) {
	roap := newFakeHTTPTV(t, http.StatusOK)
	host, roapPort := hostPort(t, roap.URL)
	fallback := newFakeWSTV(t)
	_, wsPort := hostPort(t, fallback.URL)

	opts := testOptions()
	opts.ROAPPort = roapPort
	tr := NewLGTransport(device.New("", host, wsPort, device.VendorLG), opts)

	require.NoError(t, tr.Send(context.Background(), "MUTE"))

	reqs := roap.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/roap/api/command", reqs[0].Path)
	assert.Equal(t, ROAPContentType, reqs[0].ContentType)
	assert.Equal(t, "<command><name>MUTE</name></command>", reqs[0].Body)
	assert.Equal(t, int32(0), fallback.connections.Load(), "fallback must not be used")
}

func TestLGTransport_HTTPErrorDoesNotFallBack(t *testing.T) {
	roap := newFakeHTTPTV(t, http.StatusBadRequest)
	host, roapPort := hostPort(t, roap.URL)
	fallback := newFakeWSTV(t)
	_, wsPort := hostPort(t, fallback.URL)

	opts := testOptions()
	opts.ROAPPort = roapPort
	tr := NewLGTransport(device.New("", host, wsPort, device.VendorLG), opts)

	err := tr.Send(context.Background(), "MUTE")
	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, http.StatusBadRequest, devErr.StatusCode)
	assert.Equal(t, int32(0), fallback.connections.Load())
}

func TestLGTransport_FallsBackOnTransportError(t *testing.T) {
	fallback := newFakeWSTV(t)
	host, wsPort := hostPort(t, fallback.URL)

	opts := testOptions()
	opts.ROAPPort = closedPort(t)
	tr := NewLGTransport(device.New("", host, wsPort, device.VendorLG), opts)

	require.NoError(t, tr.Send(context.Background(), "HOME"))

	select {
	case msg := <-fallback.messages:
		assert.JSONEq(t, `{"type":"button","name":"HOME"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("fallback socket received nothing")
	}
	assert.Equal(t, int32(1), fallback.connections.Load())
}

func TestLGTransport_BothPathsFail(t *testing.T) {
	opts := testOptions()
	opts.ROAPPort = closedPort(t)
	tr := NewLGTransport(device.New("", "127.0.0.1", closedPort(t), device.VendorLG), opts)

	err := tr.Send(context.Background(), "HOME")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownVendor))
}
