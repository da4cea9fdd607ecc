package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDispatched(t *testing.T) {
	m := New()

	m.CommandDispatched("roku", nil, 20*time.Millisecond)
	m.CommandDispatched("roku", nil, 30*time.Millisecond)
	m.CommandDispatched("roku", errors.New("refused"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("roku", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("roku", "failure")))
}

func TestDiscoveryCounters(t *testing.T) {
	m := New()

	m.ScanStarted()
	m.DeviceDiscovered("ssdp", "roku")
	m.DeviceDiscovered("mdns", "samsung")
	m.DiscoveryFailed("ssdp")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DevicesDiscovered.WithLabelValues("ssdp", "roku")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiscoveryErrors.WithLabelValues("ssdp")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ScanStarted()
		m.DeviceDiscovered("ssdp", "roku")
		m.DiscoveryFailed("mdns")
		m.CommandDispatched("lg", nil, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ScanStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tvremote_scans_total 1"))
}
