package bluez

import (
	"context"

	"github.com/fako1024/btmon/bt"
)

var _ bt.ClassicSource = (*Adapter)(nil)

// PairedDevices returns all paired devices that are currently connected. BlueZ
// only exposes a single battery percentage (org.bluez.Battery1), per-component
// readings are therefore always reported as unavailable.
func (a *Adapter) PairedDevices(ctx context.Context) ([]bt.ClassicDevice, error) {
	objs, err := a.bus.managedObjects(ctx)
	if err != nil {
		return nil, err
	}

	adapter := a.adapterPath
	if adapter == "" && a.adapterName != "" {
		if adapter, _, err = a.resolveAdapter(objs); err != nil {
			return nil, err
		}
	}

	all := pairedDevices(objs, adapter)
	a.logger.Debugf("found %d paired device(s)", len(all))

	res := make([]bt.ClassicDevice, 0, len(all))
	for _, dev := range all {
		if !dev.Connected {
			continue
		}
		res = append(res, dev)
	}
	return res, nil
}
