// Package control sends remote-control commands to the connected TV.
//
// The Dispatcher holds at most one connected device. Each button press is
// translated to a vendor token by package keymap and handed to the
// transport registered for the device's vendor:
//
//   - roku: POST /keypress/{token} (200 only)
//   - samsung: persistent WebSocket on the remote-control channel
//   - lg: ROAP XML POST on port 8080, WebSocket fallback on transport errors
//   - appletv: POST /ctrl-int/1/{token} (200 or 204)
//
// Commands are attempted once. Failures are classified into DeviceError
// values and the short form is kept as the dispatcher's last error.
//
// Callers must issue commands one at a time.
package control
