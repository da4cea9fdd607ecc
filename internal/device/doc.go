// Package device defines the data model shared by discovery and control.
//
// A Device is a TV reachable on the local network. Its identity for
// de-duplication purposes is its network address (host and port), not its
// name or ID: two records with the same address describe the same TV even if
// they were produced by different discovery protocols.
//
// # Vendors
//
// Every device carries a Vendor, a closed enumeration of the control
// protocols this project speaks:
//   - VendorRoku: stateless HTTP keypress API (ECP)
//   - VendorSamsung: persistent WebSocket carrying JSON remote-key messages
//   - VendorLG: HTTP/XML command API with a WebSocket fallback
//   - VendorAppleTV: legacy HTTP control interface
//   - VendorUnknown: discovered but not controllable until reclassified
//
// # Buttons
//
// Button enumerates the abstract remote buttons. Category groups them for
// feedback purposes (see Button.Category).
package device
