package main

import (
	"errors"

	"github.com/fako1024/btmon"
	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/btmon/internal/bluez"
	"github.com/fako1024/btmon/internal/config"
)

// backend bundles the platform adapters used for a single run
type backend struct {
	central bt.Central
	classic bt.ClassicSource

	closers []func() error
}

type backendFactory func(cfg config.Config, logger btmon.Logger) (*backend, error)

// Close releases all adapters in reverse order of creation
func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newBackend(cfg config.Config, logger btmon.Logger) (*backend, error) {
	be := &backend{}

	adapter, err := bluez.New(
		bluez.WithAdapter(cfg.Adapter),
		bluez.WithBusAddress(cfg.DBusAddress),
		bluez.WithLogger(logger),
	)
	if err != nil {
		if cfg.Backend == config.BackendBlueZ {
			return nil, err
		}
		logger.Warnf("classic devices unavailable: %s", err)
	} else {
		be.classic = adapter
		be.closers = append(be.closers, adapter.Close)
	}

	switch cfg.Backend {
	case config.BackendGATT:
		central, err := newGATTCentral(logger)
		if err != nil {
			return nil, errors.Join(err, be.Close())
		}
		be.central = central
		be.closers = append(be.closers, central.Close)
	default:
		be.central = adapter
	}

	return be, nil
}
