package device

import (
	"fmt"
	"strings"
)

// Vendor identifies the control protocol family of a TV
type Vendor string

const (
	// VendorRoku speaks the External Control Protocol (HTTP keypress)
	VendorRoku Vendor = "roku"

	// VendorSamsung speaks JSON over a persistent WebSocket
	VendorSamsung Vendor = "samsung"

	// VendorLG speaks the ROAP HTTP/XML API with a WebSocket fallback
	VendorLG Vendor = "lg"

	// VendorAppleTV speaks the legacy ctrl-int HTTP interface
	VendorAppleTV Vendor = "appletv"

	// VendorUnknown is used for devices that could not be classified
	VendorUnknown Vendor = "unknown"
)

// Vendors lists every known vendor in a stable order, VendorUnknown last
var Vendors = []Vendor{VendorRoku, VendorSamsung, VendorLG, VendorAppleTV, VendorUnknown}

// String returns the vendor identifier
func (v Vendor) String() string {
	return string(v)
}

// DisplayName returns the brand name used in generated device names
func (v Vendor) DisplayName() string {
	switch v {
	case VendorRoku:
		return "Roku"
	case VendorSamsung:
		return "Samsung"
	case VendorLG:
		return "LG"
	case VendorAppleTV:
		return "Apple TV"
	default:
		return "TV"
	}
}

// DefaultName is the generic label given to a device when no friendlier
// name is known, e.g. "Roku Device".
func (v Vendor) DefaultName() string {
	return v.DisplayName() + " Device"
}

// DefaultPort is the control port assumed for a manually entered device
// when the user gives only a host.
func (v Vendor) DefaultPort() int {
	switch v {
	case VendorRoku:
		return 8060
	case VendorSamsung:
		return 8001
	case VendorLG:
		return 3000
	case VendorAppleTV:
		return 3689
	default:
		return 80
	}
}

// Known reports whether v is one of the enumerated vendors other than VendorUnknown
func (v Vendor) Known() bool {
	switch v {
	case VendorRoku, VendorSamsung, VendorLG, VendorAppleTV:
		return true
	}
	return false
}

// ParseVendor converts a user-supplied string into a Vendor.
// Matching is case-insensitive and accepts a few common aliases.
func ParseVendor(s string) (Vendor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "roku", "ecp":
		return VendorRoku, nil
	case "samsung", "tizen":
		return VendorSamsung, nil
	case "lg", "webos", "ssap":
		return VendorLG, nil
	case "appletv", "apple", "apple-tv", "dacp":
		return VendorAppleTV, nil
	case "unknown", "":
		return VendorUnknown, nil
	default:
		return VendorUnknown, fmt.Errorf("unknown vendor %q (expected one of roku, samsung, lg, appletv)", s)
	}
}
