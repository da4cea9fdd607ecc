// Package config loads tvremote settings.
//
// Settings are layered, highest precedence first:
//
//  1. TVREMOTE_* environment variables (TVREMOTE_DISCOVERY_SCAN_TIMEOUT=10s)
//  2. The config file (--config, or config.yaml in the config directory)
//  3. Built-in defaults
//
// The loaded Config is validated before it is returned.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/tvremote/config.yaml or $HOME/.config/tvremote/config.yaml
//   - macOS: $HOME/.config/tvremote/config.yaml
//   - Windows: %LOCALAPPDATA%\tvremote\config.yaml
//
// A missing file is not an error.
//
// # Example
//
//	log_level: info
//	discovery:
//	  scan_timeout: 20s
//	  mdns_backend: hashicorp
//	control:
//	  samsung_port: 8002
package config
