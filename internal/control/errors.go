package control

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrNoDevice is returned by SendCommand when nothing is connected
	ErrNoDevice = errors.New("no device connected")

	// ErrUnknownVendor is returned for devices whose vendor has no transport
	ErrUnknownVendor = errors.New("unknown device type")

	// ErrNoMapping is returned for buttons the connected vendor cannot represent
	ErrNoMapping = errors.New("no mapping for button")

	// ErrTransportClosed is returned by a transport used after Close
	ErrTransportClosed = errors.New("transport closed")
)

// ErrorType represents the category of a device communication failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the TV did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the TV refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the TV's host name could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates the TV answered with an unexpected status code
	ErrTypeHTTP
	// ErrTypeProtocol indicates a malformed exchange (bad handshake, encode failure)
	ErrTypeProtocol
	// ErrTypeUnreachable indicates no route to the TV (powered off, other subnet)
	ErrTypeUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeUnreachable:
		return "Unreachable"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a TV
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Host       string    // TV host (for context)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// dialFailures are the socket errors a TV produces when it is off, asleep,
// or has network remote control disabled.
var dialFailures = []struct {
	errno   syscall.Errno
	typ     ErrorType
	message string
}{
	{syscall.ECONNREFUSED, ErrTypeConnectionRefused, "TV refused connection"},
	{syscall.EHOSTUNREACH, ErrTypeUnreachable, "TV unreachable"},
	{syscall.ENETUNREACH, ErrTypeUnreachable, "No route to the TV's network"},
	{syscall.ECONNRESET, ErrTypeNetwork, "TV reset the connection"},
}

// ClassifyNetworkError turns a failed request or dial into a DeviceError.
// The whole error chain is inspected, so url.Error and net.OpError
// wrappers are seen through.
func ClassifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}
	devErr := &DeviceError{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err, Host: host}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		devErr.Type = ErrTypeTimeout
		devErr.Message = "Request timed out"
		return devErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		devErr.Type = ErrTypeDNS
		devErr.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		return devErr
	}

	for _, f := range dialFailures {
		if errors.Is(err, f.errno) {
			devErr.Type = f.typ
			devErr.Message = f.message
			return devErr
		}
	}
	return devErr
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message, host string, err error) *DeviceError {
	classified := ClassifyNetworkError(err, host)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: message,
		Host:    host,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewProtocolError creates an error for a malformed exchange
func NewProtocolError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeProtocol,
		Message: message,
		Err:     err,
	}
}

// IsTransportError reports whether err is a failure to reach the TV at all,
// as opposed to the TV answering with an error.
func IsTransportError(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	switch devErr.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeUnreachable:
		return true
	}
	return false
}

// ShortMessage returns a concise, user-friendly message for the last-error slot
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "TV not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "TV refused connection - is remote control enabled?"
	case ErrTypeDNS:
		return "Cannot resolve TV hostname"
	case ErrTypeUnreachable:
		return "TV unreachable - check network connection"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("TV rejected command (HTTP %d)", devErr.StatusCode)
	default:
		return devErr.Message
	}
}

// TroubleshootingHint returns longer advice for an error, used by the CLI
func TroubleshootingHint(err error) string {
	switch {
	case errors.Is(err, ErrNoDevice):
		return "Connect to a TV first: tvremote scan, then tvremote connect <host>."
	case errors.Is(err, ErrUnknownVendor):
		return "The TV's vendor could not be detected. Reconnect with --vendor roku|samsung|lg|appletv."
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return ""
	}

	switch devErr.Type {
	case ErrTypeTimeout, ErrTypeNetwork, ErrTypeUnreachable:
		return "Check that the TV is powered on and on the same network as this computer."
	case ErrTypeConnectionRefused:
		return "The TV is reachable but not accepting remote commands. Enable network remote control in the TV settings."
	case ErrTypeDNS:
		return "Use the TV's IP address instead of its hostname."
	case ErrTypeHTTP:
		return "The TV did not accept the key. It may not support this button."
	}
	return ""
}
