// Package logging provides structured logging for tvremote.
//
// This package wraps a global zap logger. Logging is silent by default so the
// CLI and terminal remote stay clean; set TVREMOTE_LOG_LEVEL (or pass
// --log-level) to enable it. Output goes to stderr.
//
// # Log Levels
//
//   - Debug: raw SSDP datagrams, WebSocket payloads, dropped responses
//   - Info: scan start/stop, connections, commands sent
//   - Warn: per-target or per-namespace discovery failures, command failures
//   - Error: startup failures
//
// # Subsystem Loggers
//
// Long-lived components take a *zap.Logger at construction time. Callers
// usually pass a named child of the global logger:
//
//	coord := discovery.NewCoordinator(ssdp, mdns, bus, logging.Named("discovery"))
//
// # Specialized Logging
//
//	logging.LogWebSocketMessage(log, remoteAddr, "sent", websocket.TextMessage, payload)
//	logging.LogRawBytes(log, "SSDP response", datagram)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
package logging
