package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tvremote/internal/logging"
)

// execute runs the root command with args, resetting flag variables that
// persist between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath, logLevel = "", ""
	scanTimeout, jsonOutput = 0, false
	connectVendor, connectName = "roku", ""
	sendDelay, buttonsVendor, serveListen = 0, "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(logging.LogLevelEnvVar, "")
}

type rokuRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *rokuRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()
}

func (r *rokuRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestCLI_ConnectSendStatusForget(t *testing.T) {
	isolate(t)

	rec := &rokuRecorder{}
	tv := httptest.NewServer(rec)
	defer tv.Close()
	u, err := url.Parse(tv.URL)
	require.NoError(t, err)

	out, err := execute(t, "connect", u.Host, "--vendor", "roku", "--name", "Den Roku")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected to Den Roku (roku) at "+u.Host)

	out, err = execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Den Roku")
	assert.Contains(t, out, u.Host)
	assert.Contains(t, out, "last_device.yaml")

	out, err = execute(t, "send", "home", "vol+", "7")
	require.NoError(t, err)
	assert.Equal(t, "✓ HOME\n✓ VOL+\n✓ 7\n", out)
	assert.Equal(t, []string{"/keypress/Home", "/keypress/VolumeUp", "/keypress/Lit_7"}, rec.seen())

	_, err = execute(t, "send", "eject")
	assert.ErrorContains(t, err, "unknown button")

	out, err = execute(t, "forget")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot")

	_, err = execute(t, "send", "home")
	assert.ErrorIs(t, err, errNoDevice)

	out, err = execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No TV remembered.")
}

func TestCLI_SendFailure(t *testing.T) {
	isolate(t)

	tv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer tv.Close()
	u, _ := url.Parse(tv.URL)

	_, err := execute(t, "connect", u.Host)
	require.NoError(t, err)

	_, err = execute(t, "send", "up")
	assert.EqualError(t, err, "up: TV rejected command (HTTP 503)")
}

func TestCLI_ConnectValidation(t *testing.T) {
	isolate(t)

	_, err := execute(t, "connect", "10.0.0.1", "--vendor", "philips")
	assert.ErrorContains(t, err, "unknown vendor")

	_, err = execute(t, "connect", "10.0.0.1:99999")
	assert.ErrorContains(t, err, "invalid port")

	_, err = execute(t, "connect")
	assert.Error(t, err)
}

func TestCLI_StatusJSON(t *testing.T) {
	isolate(t)

	_, err := execute(t, "connect", "192.168.1.40", "--vendor", "lg")
	require.NoError(t, err)

	out, err := execute(t, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"host": "192.168.1.40"`)
	assert.Contains(t, out, `"vendor": "lg"`)
	assert.Contains(t, out, `"port": 3000`)
}

func TestCLI_Buttons(t *testing.T) {
	isolate(t)

	out, err := execute(t, "buttons", "--vendor", "lg")
	require.NoError(t, err)
	assert.Contains(t, out, "VOLUMEUP")
	assert.Contains(t, out, "LG")
	assert.NotContains(t, out, "KEY_VOLUP")

	out, err = execute(t, "buttons")
	require.NoError(t, err)
	for _, token := range []string{"VolumeUp", "KEY_VOLUP", "VOLUMEUP", "volumeup"} {
		assert.Contains(t, out, token)
	}
	assert.Equal(t, 10, strings.Count(out, "digit"))

	_, err = execute(t, "buttons", "--vendor", "philips")
	assert.Error(t, err)
}

func TestCLI_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("TVREMOTE_DISCOVERY_MDNS_BACKEND", "bonjour")

	_, err := execute(t, "status")
	assert.ErrorContains(t, err, "invalid config")
}

func TestCLI_Version(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tvremote "))
}
