package discovery

import (
	"context"

	"github.com/muurk/tvremote/internal/device"
)

// FoundFunc receives a discovered candidate. It may be called from several
// goroutines at once.
type FoundFunc func(d *device.Device)

// FailedFunc receives a failure scoped to one search target or namespace.
type FailedFunc func(scope string, err error)

// Scanner is a discovery mechanism driven by the Coordinator.
//
// Scan blocks until the scanner has nothing more to report or ctx is
// cancelled, and must release every socket it opened before returning.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, found FoundFunc, failed FailedFunc)
}
