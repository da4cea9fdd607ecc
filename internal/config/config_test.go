package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "tvremote") {
		t.Errorf("GetConfigDir() = %v, should contain 'tvremote'", configDir)
	}

	switch runtime.GOOS {
	case "darwin", "linux":
		if os.Getenv("XDG_CONFIG_HOME") == "" && !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honoured on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/tvremote", got)
}

func TestGetConfigDir_HomeFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Windows uses LOCALAPPDATA")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tvremote"), got)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(configPath))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Discovery.ScanTimeout)
	assert.Equal(t, 5*time.Second, cfg.Discovery.SSDPWindow)
	assert.Len(t, cfg.Discovery.SSDPTargets, 3)
	assert.Equal(t, "zeroconf", cfg.Discovery.MDNSBackend)
	assert.True(t, cfg.Discovery.Describe)
	assert.Equal(t, 5*time.Second, cfg.Control.HTTPTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Control.WSReadyTimeout)
	assert.Equal(t, 8001, cfg.Control.SamsungPort)
	assert.Equal(t, 8080, cfg.Control.ROAPPort)
	assert.Equal(t, "tvremote", cfg.Control.AppName)
	assert.Equal(t, ":7420", cfg.Server.Listen)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `log_level: debug
discovery:
  scan_timeout: 12s
  mdns_backend: hashicorp
  ssdp_targets:
    - roku:ecp
control:
  samsung_port: 8002
server:
  listen: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12*time.Second, cfg.Discovery.ScanTimeout)
	assert.Equal(t, "hashicorp", cfg.Discovery.MDNSBackend)
	assert.Equal(t, []string{"roku:ecp"}, cfg.Discovery.SSDPTargets)
	assert.Equal(t, 8002, cfg.Control.SamsungPort)
	assert.Equal(t, 8080, cfg.Control.ROAPPort, "unset keys keep their default")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TVREMOTE_DISCOVERY_SCAN_TIMEOUT", "10s")
	t.Setenv("TVREMOTE_CONTROL_ROAP_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Discovery.ScanTimeout)
	assert.Equal(t, 9090, cfg.Control.ROAPPort)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad backend", "discovery:\n  mdns_backend: avahi\n", "MDNSBackend"},
		{"zero timeout", "discovery:\n  scan_timeout: 0s\n", "ScanTimeout"},
		{"port out of range", "control:\n  samsung_port: 70000\n", "SamsungPort"},
		{"bad log level", "log_level: loud\n", "LogLevel"},
		{"empty app name", "control:\n  app_name: \"\"\n", "AppName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir, err := EnsureConfigDir()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
