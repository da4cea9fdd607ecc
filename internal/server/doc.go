// Package server exposes a remote.Remote as a local HTTP API.
//
// The API lets other programs on the machine (scripts, home automation,
// a browser page) drive the same discovery and control session the CLI
// uses. It is served by `tvremote serve` and binds :7420 by default.
//
// # Routes
//
//	GET  /api/state               snapshot of discovery and control state
//	GET  /api/devices             discovered devices in insertion order
//	POST /api/discovery/start     start a scan (no-op while one is running)
//	POST /api/discovery/stop      stop the running scan
//	POST /api/connect             {"id": "..."} or {"host": "...", "port": 8060, "vendor": "roku"}
//	POST /api/disconnect          release the connected device
//	POST /api/forget              disconnect and clear the remembered device
//	GET  /api/buttons[?vendor=]   buttons with glyph, category and token
//	POST /api/buttons/{button}    press a button on the connected device
//	GET  /api/events              WebSocket stream of events (JSON)
//	GET  /api/version             build information
//	GET  /metrics                 Prometheus metrics
//
// Errors are returned as application/problem+json. A press with no
// connected device answers 409, an unmappable press 422, and a TV that
// fails to answer 502 (504 on timeout).
//
// # Event Stream
//
// Each stream starts with a "state" message carrying the current snapshot,
// followed by every bus event as it is published:
//
//	{"topic":"discovery.device","source":"discovery","timestamp":"...","payload":{"device":{...}}}
//
// The server pings idle clients; slow clients lose events rather than
// blocking publishers.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    Listen:  cfg.Server.Listen,
//	    Remote:  r,
//	    Metrics: m,
//	    Logger:  logging.Named("server"),
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start() // blocks until SIGINT/SIGTERM
package server
