package discovery

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/huin/goupnp"

	"github.com/muurk/tvremote/internal/device"
)

// DefaultDescribeTimeout bounds a single UPnP description fetch
const DefaultDescribeTimeout = 2 * time.Second

// Describer fills in friendlier details for an SSDP candidate from the
// document at its LOCATION URL.
type Describer interface {
	Describe(ctx context.Context, location *url.URL, d *device.Device) error
}

// UPnPDescriber reads the UPnP root device description
type UPnPDescriber struct {
	Timeout time.Duration
}

// NewUPnPDescriber creates a describer with the default timeout
func NewUPnPDescriber() *UPnPDescriber {
	return &UPnPDescriber{Timeout: DefaultDescribeTimeout}
}

// Describe replaces the name, model and serial of d with the values from the
// description document. d is left untouched when the fetch fails.
func (u *UPnPDescriber) Describe(ctx context.Context, location *url.URL, d *device.Device) error {
	timeout := u.Timeout
	if timeout <= 0 {
		timeout = DefaultDescribeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	root, err := goupnp.DeviceByURLCtx(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to fetch device description: %w", err)
	}

	if root.Device.FriendlyName != "" {
		d.Name = root.Device.FriendlyName
	}
	if root.Device.ModelName != "" {
		d.Model = root.Device.ModelName
	}
	if root.Device.SerialNumber != "" {
		d.Serial = root.Device.SerialNumber
	}
	return nil
}
