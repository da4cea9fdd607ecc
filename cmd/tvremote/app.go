package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/tvremote/internal/control"
	"github.com/muurk/tvremote/internal/logging"
	"github.com/muurk/tvremote/internal/metrics"
	"github.com/muurk/tvremote/internal/remote"
	"github.com/muurk/tvremote/internal/store"
)

// errNoDevice is returned by commands that need a remembered device
var errNoDevice = errors.New("no device connected; run 'tvremote scan' then 'tvremote connect <host>' or use 'tvremote remote'")

// app holds the components shared by every command
type app struct {
	store   *store.FileStore
	metrics *metrics.Metrics
	remote  *remote.Remote
}

// newApp builds the remote from the loaded config. haptics may be nil.
func newApp(haptics control.Haptics) (*app, error) {
	fs, err := store.DefaultFileStore()
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	r, err := remote.NewFromConfig(cfg, remote.Deps{
		Store:   fs,
		Haptics: haptics,
		Metrics: m,
		Logger:  logging.GetLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up remote: %w", err)
	}

	return &app{store: fs, metrics: m, remote: r}, nil
}

// restore reconnects the remembered device, failing when there is none
func (a *app) restore(ctx context.Context) error {
	ok, err := a.remote.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore last device: %w", err)
	}
	if !ok {
		return errNoDevice
	}
	return nil
}
